package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/bcart01v/atlas-cinema-guru/pkg/errors"
	"github.com/bcart01v/atlas-cinema-guru/pkg/httputil"
	"github.com/bcart01v/atlas-cinema-guru/pkg/logger"
)

type contextKeyType string

const identityKey contextKeyType = "identity"

// Claims is the identity extracted from a verified bearer token. Email is
// the identity every library operation is scoped to.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// TokenValidator verifies a raw bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a verifiable bearer token carrying an email
// and stores the identity in the request context. It never lets a request
// through to the handler without an identity.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, r)
				return
			}

			claims, err := validate(token)
			if err != nil || claims == nil || strings.TrimSpace(claims.Email) == "" {
				logger.FromContext(r.Context()).DebugContext(r.Context(), "token rejected",
					slog.Any("error", err),
				)
				writeUnauthorized(w, r)
				return
			}

			email := strings.ToLower(strings.TrimSpace(claims.Email))
			ctx := context.WithValue(r.Context(), identityKey, email)
			ctx = logger.WithUserEmail(ctx, email)
			if l := logger.FromContext(ctx); l != slog.Default() {
				ctx = logger.NewContext(ctx, l.With(slog.String("user_email", email)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext returns the authenticated identity, or "" when the
// request did not pass through Auth.
func EmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(identityKey).(string); ok {
		return email
	}
	return ""
}

// ContextWithEmail stores an identity in ctx the same way Auth does.
func ContextWithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, identityKey, email)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, r, apperrors.Unauthorized("Unauthorized"), nil)
}
