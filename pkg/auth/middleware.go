package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

var (
	ErrMissingBearerToken = errors.New("authorization header is required")
	ErrInvalidAuthFormat  = errors.New("invalid authorization format")
)

type principalKey struct{}

// ContextWithPrincipal сохраняет вызывающую сторону в контексте
func ContextWithPrincipal(ctx context.Context, p *interfaces.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext возвращает вызывающую сторону или nil
func PrincipalFromContext(ctx context.Context) *interfaces.Principal {
	p, _ := ctx.Value(principalKey{}).(*interfaces.Principal)
	return p
}

// BearerToken извлекает токен из заголовка Authorization
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingBearerToken
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidAuthFormat
	}
	return parts[1], nil
}

// AuthMiddleware промежуточное ПО для проверки bearer-токенов
func AuthMiddleware(authenticator interfaces.AuthPort, logger interfaces.LoggerPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := BearerToken(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			principal, err := authenticator.Authenticate(r.Context(), tokenStr)
			if err != nil {
				logger.WarnWithContext(r.Context(), "Invalid bearer token",
					interfaces.LogField{Key: "error", Value: err.Error()})
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole проверяет наличие определенной роли
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !principal.HasRole(role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
