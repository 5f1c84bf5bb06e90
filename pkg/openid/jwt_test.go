package openid

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestParseToken(t *testing.T) {
	t.Parallel()
	raw := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
		"sub":   "5b0c7f5e-4d1a-4f6e-9f1e-0a1b2c3d4e5f",
		"name":  "Ms. Smith",
		"email": "smith@school.test",
		"scope": "openid profile",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"offline_access", "teacher"},
		},
		"resource_access": map[string]interface{}{
			"account": map[string]interface{}{"roles": []interface{}{"manage-account"}},
		},
	})

	h, err := ParseToken(raw, secret)
	require.NoError(t, err)
	sid, name, email := h.GetUser()
	require.Equal(t, "5b0c7f5e-4d1a-4f6e-9f1e-0a1b2c3d4e5f", sid)
	require.Equal(t, "Ms. Smith", name)
	require.Equal(t, "smith@school.test", email)
	require.True(t, h.IsUserInRealmRole("teacher"))
	require.True(t, h.IsUserInAccountRole("manage-account"))
	require.True(t, h.TokenHasScope("profile"))
	require.Equal(t, "teacher", h.FirstRole("admin", "teacher"))
	require.Equal(t, "", h.FirstRole("admin"))
}

func TestParseToken_Rejected(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "wrong secret",
			raw:  sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "x"}),
		},
		{
			name: "expired",
			raw:  sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Minute).Unix()}),
		},
		{
			name: "none algorithm",
			raw:  sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "x"}),
		},
		{
			name: "garbage",
			raw:  "not.a.token",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseToken(tt.raw, secret)
			require.Error(t, err)
		})
	}
}

func TestGetToken(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetToken(r)
	require.ErrorIs(t, err, ErrNoToken)

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
	tok, err := GetToken(r)
	require.NoError(t, err)
	require.Equal(t, "from-cookie", tok)

	r.Header.Set(AuthorizationHeader, "Bearer from-header")
	tok, err = GetToken(r)
	require.NoError(t, err)
	require.Equal(t, "from-header", tok)

	r.Header.Set(AuthorizationHeader, "Basic abc")
	_, err = GetToken(r)
	require.Error(t, err)
}
