package middleware

import (
	"errors"
	"net/http"

	"github.com/Astemirdum/lending-service/pkg/auth"
	"github.com/Astemirdum/lending-service/pkg/openid"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// AuthContext trusts the identity headers set by the auth gateway in front of the service.
func AuthContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		rawID := req.Header.Get(auth.XUserIDHeader)
		if rawID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "user-id is empty")
		}
		userID, err := uuid.Parse(rawID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "user-id is invalid")
		}
		userRole := req.Header.Get(auth.XUserRoleHeader)
		if userRole == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "user-role is empty")
		}
		ctx := auth.SetAuthContext(req.Context(), userID, userRole)
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

// NewAuthContext takes the identity from an HMAC signed bearer token when secret is set:
// the subject is the user id and the realm or account roles give the role. Requests
// without a token fall back to AuthContext.
func NewAuthContext(secret string) echo.MiddlewareFunc {
	if secret == "" {
		return AuthContext
	}
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		headers := AuthContext(next)
		return func(c echo.Context) error {
			req := c.Request()
			raw, err := openid.GetToken(req)
			if errors.Is(err, openid.ErrNoToken) {
				return headers(c)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			claims, err := openid.ParseToken(raw, key)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid")
			}
			userID, err := uuid.Parse(claims.GetUserID())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token subject is invalid")
			}
			role := claims.FirstRole(auth.RoleAdmin, auth.RoleTeacher)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no lending role")
			}
			c.SetRequest(req.WithContext(auth.SetAuthContext(req.Context(), userID, role)))
			return next(c)
		}
	}
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	log = log.Named("echo")
	c := middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
	return c
}
