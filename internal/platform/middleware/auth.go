package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "simohu/pkg/domain-errors"
	"simohu/pkg/platform/httputil"
)

// TokenValidator validates bearer tokens issued at login.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is what handlers learn about the caller.
type Claims struct {
	Login       string
	AccountType string
}

type contextKeyLogin struct{}
type contextKeyAccountType struct{}

// GetLogin retrieves the authenticated login from the context.
func GetLogin(ctx context.Context) string {
	login, ok := ctx.Value(contextKeyLogin{}).(string)
	if !ok {
		return ""
	}
	return login
}

func GetAccountType(ctx context.Context) string {
	t, ok := ctx.Value(contextKeyAccountType{}).(string)
	if !ok {
		return ""
	}
	return t
}

// WithClaims injects claims into a context. Useful for handler unit tests that
// skip the middleware chain.
func WithClaims(ctx context.Context, c Claims) context.Context {
	ctx = context.WithValue(ctx, contextKeyLogin{}, c.Login)
	return context.WithValue(ctx, contextKeyAccountType{}, c.AccountType)
}

// RequireAuth rejects requests without a valid "Bearer" token.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, *claims)))
		})
	}
}
