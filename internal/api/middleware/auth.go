package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cloudmart/catalog-service/internal/errors"
	"github.com/cloudmart/catalog-service/internal/models"
	"github.com/cloudmart/catalog-service/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

type claimsContextKey struct{}

var ClaimsContextKey = claimsContextKey{}

// AuthMiddleware guards catalog mutations with an HS256 bearer token.
type AuthMiddleware struct {
	jwtKey []byte
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {

	return &AuthMiddleware{jwtKey: jwtKey}

}

// Enabled is false when no signing key is configured; mutations are then open.
func (m *AuthMiddleware) Enabled() bool {
	return len(m.jwtKey) > 0
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		// Token is of format : "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")

		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &models.Claims{}

		token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
			return m.jwtKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

		if err != nil || !token.Valid {
			logger.Warn("JWT validation failed", slog.Any("error", err))
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)

		requestScopedLogger := logger.With(slog.String("subject", claims.Subject))
		ctx = WithLogger(ctx, requestScopedLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.Claims)
	return claims, ok
}
