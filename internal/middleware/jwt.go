package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"elafcatalog/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Claims carried by catalog API tokens.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// KeySource resolves token verification keys.
type KeySource struct {
	Keyfunc jwt.Keyfunc
	Methods []string
	close   func()
}

// Close stops the background JWKS refresh, if any.
func (k *KeySource) Close() {
	if k.close != nil {
		k.close()
	}
}

// NewKeySource verifies tokens against a JWKS endpoint when jwksURL is set and
// against the HMAC secret otherwise.
func NewKeySource(secret, jwksURL string, logger *zap.Logger) (*KeySource, error) {
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("jwks refresh failed", zap.String("url", jwksURL), zap.Error(err))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("load jwks from %s: %w", jwksURL, err)
		}
		return &KeySource{
			Keyfunc: jwks.Keyfunc,
			Methods: []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "EdDSA"},
			close:   jwks.EndBackground,
		}, nil
	}

	if secret == "" {
		return nil, errors.New("either auth.jwt_secret or auth.jwks_url must be set")
	}
	key := []byte(secret)
	return &KeySource{
		Keyfunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		Methods: []string{jwt.SigningMethodHS256.Alg()},
	}, nil
}

// JWTMiddleware handles JWT token validation and places the tenant of the
// caller on the request.
func JWTMiddleware(keys *KeySource) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods(keys.Methods), jwt.WithExpirationRequired())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims := &Claims{}
			token, err := parser.ParseWithClaims(tokenString, claims, keys.Keyfunc)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			if !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token not valid")
			}

			tenantID, err := common.ValidateUUID(claims.TenantID, "tenant_id")
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid tenant_id in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(string(common.TenantIDKey), tenantID)

			return next(c)
		}
	}
}
