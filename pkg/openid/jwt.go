package openid

import (
	"fmt"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const (
	AuthorizationHeader = "Authorization"
	CookieName          = "access_token"

	bearer = "Bearer "
)

var ErrNoToken = errors.New("no bearer token")

type JwtHelper struct {
	claims       jwt.MapClaims
	realmRoles   []string
	accountRoles []string
	scopes       []string
}

func NewJwtHelper(claims jwt.MapClaims) *JwtHelper {
	return &JwtHelper{
		claims:       claims,
		realmRoles:   parseRealmRoles(claims),
		accountRoles: parseAccountRoles(claims),
		scopes:       parseScopes(claims),
	}
}

// GetToken reads the bearer token from the Authorization header, then from the cookie.
func GetToken(r *http.Request) (string, error) {
	if authorization := r.Header.Get(AuthorizationHeader); authorization != "" {
		if !strings.HasPrefix(authorization, bearer) {
			return "", errors.New("invalid Authorization header")
		}
		return strings.TrimPrefix(authorization, bearer), nil
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", ErrNoToken
	}
	return cookie.Value, nil
}

// ParseToken verifies an HMAC signed token and returns its claims.
func ParseToken(raw string, secret []byte) (*JwtHelper, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "jwt.Parse")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return NewJwtHelper(claims), nil
}

// GetUserID is the subject, or the session id for tokens that carry no subject.
func (j *JwtHelper) GetUserID() string {
	if sub, ok := j.claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if sid, ok := j.claims["sid"].(string); ok {
		return sid
	}
	return ""
}

func (j *JwtHelper) GetName() string {
	if name, ok := j.claims["name"].(string); ok {
		return name
	}
	return ""
}

func (j *JwtHelper) GetEmail() string {
	if email, ok := j.claims["email"].(string); ok {
		return email
	}
	return ""
}

func (j *JwtHelper) GetUser() (sid, name, email string) {
	return j.GetUserID(), j.GetName(), j.GetEmail()
}

func (j *JwtHelper) IsUserInRealmRole(role string) bool {
	return contains(j.realmRoles, role)
}

func (j *JwtHelper) IsUserInAccountRole(role string) bool {
	return contains(j.accountRoles, role)
}

func (j *JwtHelper) TokenHasScope(scope string) bool {
	return contains(j.scopes, scope)
}

// FirstRole returns the first of roles granted to the user in the realm or the account.
func (j *JwtHelper) FirstRole(roles ...string) string {
	for _, role := range roles {
		if j.IsUserInRealmRole(role) || j.IsUserInAccountRole(role) {
			return role
		}
	}
	return ""
}

func parseRealmRoles(claims jwt.MapClaims) []string {
	access, ok := claims["realm_access"].(map[string]interface{})
	if !ok {
		return make([]string, 0)
	}
	return stringSlice(access["roles"])
}

func parseAccountRoles(claims jwt.MapClaims) []string {
	resources, ok := claims["resource_access"].(map[string]interface{})
	if !ok {
		return nil
	}
	account, ok := resources["account"].(map[string]interface{})
	if !ok {
		return nil
	}
	return stringSlice(account["roles"])
}

func parseScopes(claims jwt.MapClaims) []string {
	scopeStr, err := parseString(claims, "scope")
	if err != nil || scopeStr == "" {
		return make([]string, 0)
	}
	return strings.Split(scopeStr, " ")
}

func parseString(claims jwt.MapClaims, key string) (string, error) {
	raw, ok := claims[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("key %s is invalid", key)
	}
	return s, nil
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return make([]string, 0)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func contains(arr []string, s string) bool {
	for i := range arr {
		if arr[i] == s {
			return true
		}
	}

	return false
}
