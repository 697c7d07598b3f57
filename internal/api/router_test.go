package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/shopify-product-service/internal/adapters/cache"
	"github.com/athebyme/shopify-product-service/internal/adapters/logger"
	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

type stubCreator struct{ calls int }

func (s *stubCreator) CreateProduct(context.Context, *models.ProductSpec, models.ShopCredentials) (*models.ProductFragment, error) {
	s.calls++
	return &models.ProductFragment{ID: "gid://shopify/Product/1", Title: "T"}, nil
}

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (*interfaces.Principal, error) {
	if token != "good" {
		return nil, assert.AnError
	}
	return &interfaces.Principal{Subject: "svc", Roles: []string{"product-writer"}}, nil
}

func baseOptions(creator *stubCreator) RouterOptions {
	return RouterOptions{
		ProductService:     creator,
		Logger:             logger.NewNopLogger(),
		Version:            "test",
		CORSAllowedOrigins: []string{"*"},
		RequestTimeout:     time.Minute,
		MaxBodyBytes:       1 << 20,
	}
}

func TestHealthRoutes(t *testing.T) {
	r := SetupRouter(baseOptions(&stubCreator{}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductRouteWithoutCredentials(t *testing.T) {
	creator := &stubCreator{}
	r := SetupRouter(baseOptions(creator))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/shopify/products", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, creator.calls)
}

func TestProductRouteRequiresBearerWhenAuthEnabled(t *testing.T) {
	opts := baseOptions(&stubCreator{})
	opts.Authenticator = stubAuth{}
	opts.RequiredRole = "product-writer"
	r := SetupRouter(opts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shopify/products", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/shopify/products", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductRouteRateLimited(t *testing.T) {
	opts := baseOptions(&stubCreator{})
	opts.RateLimitCache = cache.NewMemoryCache(time.Minute)
	opts.RateLimitRequests = 1
	opts.RateLimitWindow = time.Minute
	r := SetupRouter(opts)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shopify/products", strings.NewReader(`{}`))
		req.Header.Set("X-Shopify-Shop-Domain", "router-test.myshopify.com")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	require.NotEqual(t, http.StatusTooManyRequests, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestMetricsRoute(t *testing.T) {
	opts := baseOptions(&stubCreator{})
	opts.MetricsEnabled = true
	r := SetupRouter(opts)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
