package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/athebyme/shopify-product-service/docs"
	"github.com/athebyme/shopify-product-service/internal/api/handlers"
	"github.com/athebyme/shopify-product-service/internal/api/middleware"
	"github.com/athebyme/shopify-product-service/pkg/auth"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// RouterOptions зависимости и настройки HTTP маршрутизатора
type RouterOptions struct {
	ProductService     handlers.ProductCreator
	Logger             interfaces.LoggerPort
	Version            string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	MaxBodyBytes       int64

	// Authenticator nil отключает проверку bearer-токена
	Authenticator interfaces.AuthPort
	RequiredRole  string

	// RateLimitCache nil отключает ограничение частоты
	RateLimitCache    interfaces.CachePort
	RateLimitRequests int
	RateLimitWindow   time.Duration

	MetricsEnabled bool
	HealthChecks   map[string]handlers.HealthCheck
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.ShopDomain)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Recoverer(opts.Logger))
	r.Use(middleware.CORS(opts.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	if opts.MetricsEnabled {
		r.Use(middleware.Metrics)
	}

	health := handlers.NewHealthHandler(opts.Version, opts.HealthChecks)
	r.Get("/health", health.Health)
	r.Head("/health", health.Head)

	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		if opts.MaxBodyBytes > 0 {
			r.Use(chimiddleware.RequestSize(opts.MaxBodyBytes))
		}
		if opts.Authenticator != nil {
			r.Use(auth.AuthMiddleware(opts.Authenticator, opts.Logger))
			if opts.RequiredRole != "" {
				r.Use(auth.RequireRole(opts.RequiredRole))
			}
		}
		if opts.RateLimitCache != nil {
			r.Use(middleware.RateLimiter(opts.RateLimitCache, opts.RateLimitRequests, opts.RateLimitWindow, opts.Logger))
		}

		productHandler := handlers.NewProductHandler(opts.ProductService, opts.Logger)

		r.Route("/shopify", func(r chi.Router) {
			r.Post("/products", productHandler.CreateProduct)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}
