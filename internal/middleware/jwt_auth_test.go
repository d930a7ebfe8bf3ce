package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func signed(t *testing.T, key string, claims *models.JwtCustomClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func claimsFor(userID string, expires time.Time) *models.JwtCustomClaims {
	return &models.JwtCustomClaims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
	}
}

func serve(mw echo.MiddlewareFunc, header string) (int, models.Caller, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var caller models.Caller
	var found bool
	err := mw(func(c echo.Context) error {
		caller, found = CallerFrom(c)
		return c.NoContent(http.StatusNoContent)
	})(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, caller, found
}

func TestRequireAuth(t *testing.T) {
	verify := JWTVerifier(secret)
	valid := signed(t, secret, claimsFor("u1", time.Now().Add(time.Hour)))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + valid, http.StatusUnauthorized},
		{"wrong key", "Bearer " + signed(t, "other", claimsFor("u1", time.Now().Add(time.Hour))), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, secret, claimsFor("u1", time.Now().Add(-time.Hour))), http.StatusUnauthorized},
		{"no user", "Bearer " + signed(t, secret, claimsFor("", time.Now().Add(time.Hour))), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, caller, found := serve(RequireAuth(verify), tt.header)
			assert.Equal(t, tt.want, code)
			if tt.want == http.StatusNoContent {
				assert.True(t, found)
				assert.Equal(t, "u1", caller.UserID)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	verify := JWTVerifier(secret)

	code, _, found := serve(OptionalAuth(verify), "")
	assert.Equal(t, http.StatusNoContent, code)
	assert.False(t, found)

	admin := claimsFor("root", time.Now().Add(time.Hour))
	admin.IsAdmin = true
	code, caller, found := serve(OptionalAuth(verify), "Bearer "+signed(t, secret, admin))
	assert.Equal(t, http.StatusNoContent, code)
	require.True(t, found)
	assert.True(t, caller.IsAdmin)

	code, _, _ = serve(OptionalAuth(verify), "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
}
