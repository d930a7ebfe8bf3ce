package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/quillpress/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

var errNoToken = errors.New("missing authorization header")

// TokenVerifier turns a bearer token into the verified caller.
type TokenVerifier func(ctx context.Context, token string) (models.Caller, error)

// JWTVerifier verifies HMAC signed tokens carrying JwtCustomClaims.
func JWTVerifier(secret string) TokenVerifier {
	return func(_ context.Context, tokenString string) (models.Caller, error) {
		claims := &models.JwtCustomClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			return models.Caller{}, err
		}
		if !token.Valid || claims.UserID == "" {
			return models.Caller{}, errors.New("invalid token")
		}
		return models.Caller{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the context otherwise.
func RequireAuth(verify TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			caller, err := verify(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// OptionalAuth stores the caller when a valid token is presented and lets
// anonymous requests through. A presented but invalid token is rejected.
func OptionalAuth(verify TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if errors.Is(err, errNoToken) {
				return next(c)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			caller, err := verify(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// CallerFrom returns the caller stored by RequireAuth or OptionalAuth.
func CallerFrom(c echo.Context) (models.Caller, bool) {
	caller, ok := c.Get(callerKey).(models.Caller)
	return caller, ok
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errNoToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("authorization header must be in Bearer format")
	}
	return parts[1], nil
}
