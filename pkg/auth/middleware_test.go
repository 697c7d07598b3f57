package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

type stubAuthenticator struct {
	principals map[string]*interfaces.Principal
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*interfaces.Principal, error) {
	if p, ok := s.principals[token]; ok {
		return p, nil
	}
	return nil, errors.New("unknown token")
}

type nopLogger struct{ interfaces.LoggerPort }

func (nopLogger) WarnWithContext(context.Context, string, ...interface{}) {}

func protected(role string) http.Handler {
	authn := &stubAuthenticator{principals: map[string]*interfaces.Principal{
		"writer": {Subject: "catalog", Roles: []string{"products:write"}},
		"reader": {Subject: "report", Roles: []string{"products:read"}},
	}}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		_, _ = w.Write([]byte(p.Subject))
	})
	return AuthMiddleware(authn, nopLogger{})(RequireRole(role)(final))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"missing role", "Bearer reader", http.StatusForbidden, ""},
		{"ok", "Bearer writer", http.StatusOK, "catalog"},
		{"lowercase scheme", "bearer writer", http.StatusOK, "catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/shopify/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected("products:write").ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := BearerToken(req)
	assert.ErrorIs(t, err, ErrMissingBearerToken)

	req.Header.Set("Authorization", "Bearer a b")
	_, err = BearerToken(req)
	assert.ErrorIs(t, err, ErrInvalidAuthFormat)

	req.Header.Set("Authorization", "Bearer token-1")
	token, err := BearerToken(req)
	assert.NoError(t, err)
	assert.Equal(t, "token-1", token)
}
