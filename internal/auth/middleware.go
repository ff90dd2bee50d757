package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

const bearerPrefix = "Bearer "

type ctxKey struct{}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID   int64
	Username string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware requires "Authorization: Bearer <token>" on every request.
// A missing token is 401, anything that fails verification is 403.
func Middleware(secretKey []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, ErrTokenRequired) {
					respond.Error(w, r, http.StatusUnauthorized, "token required")
					return
				}
				respond.Error(w, r, http.StatusForbidden, "invalid or expired token")
				return
			}

			claims, err := ParseToken(token, secretKey)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				respond.Error(w, r, http.StatusForbidden, "invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken tolerates the server trimming "Bearer " down to "Bearer".
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == strings.TrimSpace(bearerPrefix) {
		return "", ErrTokenRequired
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrTokenRequired
	}
	return token, nil
}
