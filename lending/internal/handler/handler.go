package handler

import (
	"net/http"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	_ "github.com/Astemirdum/lending-service/lending/swagger"
	md "github.com/Astemirdum/lending-service/pkg/middleware"
	"github.com/Astemirdum/lending-service/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	loanSvc         LoanService
	notificationSvc NotificationService
	scanner         Scanner
	log             *zap.Logger
	jwtSecret       string
}

type Option func(h *Handler)

// WithJWTSecret enables bearer token identities signed with secret.
func WithJWTSecret(secret string) Option {
	return func(h *Handler) {
		h.jwtSecret = secret
	}
}

func New(loanSvc LoanService, notificationSvc NotificationService, scanner Scanner, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		loanSvc:         loanSvc,
		notificationSvc: notificationSvc,
		scanner:         scanner,
		log:             log.Named("handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.NewAuthContext(h.jwtSecret),
	)

	api.POST("/loans", h.Checkout)
	api.GET("/loans/overdue", h.ListOverdue)
	api.GET("/loans/:loanId", h.GetLoan)
	api.PATCH("/loans/:loanId", h.UpdateLoan)
	api.DELETE("/loans/:loanId", h.DeleteLoan)
	api.POST("/loans/:loanId/return", h.ReturnLoan)
	api.GET("/students/:studentId/loans", h.ListStudentLoans)

	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.PATCH("/notifications/:id/read", h.MarkNotificationRead)

	api.POST("/overdue/scan", h.Scan)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the domain error taxonomy onto status codes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrOutOfStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
