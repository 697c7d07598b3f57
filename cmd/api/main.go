package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/athebyme/shopify-product-service/config"
	"github.com/athebyme/shopify-product-service/internal/adapters/cache"
	"github.com/athebyme/shopify-product-service/internal/adapters/logger"
	"github.com/athebyme/shopify-product-service/internal/adapters/messaging"
	"github.com/athebyme/shopify-product-service/internal/adapters/shopify"
	"github.com/athebyme/shopify-product-service/internal/api"
	"github.com/athebyme/shopify-product-service/internal/api/handlers"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
	"github.com/athebyme/shopify-product-service/internal/security"
	"github.com/athebyme/shopify-product-service/pkg/auth"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Сервис завершился с ошибкой", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Сервер корректно завершил работу")
}

func run(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) error {
	cacheClient, err := newCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации кэша: %w", err)
	}
	defer closeWithLog(log, "кэш", cacheClient.Close)
	log.Info("Кэш инициализирован", interfaces.LogField{Key: "redis", Value: cfg.Redis.Enabled})

	authenticator, err := newAuthenticator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации аутентификации: %w", err)
	}
	log.Info("Аутентификация настроена", interfaces.LogField{Key: "mode", Value: cfg.Security.AuthMode})

	var publisher services.EventPublisher
	if cfg.Kafka.Enabled {
		bus, err := messaging.NewKafkaMessaging(cfg.GetKafkaOptions(cfg.AppName), log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации Kafka: %w", err)
		}
		defer closeWithLog(log, "Kafka", bus.Close)
		publisher = messaging.NewEventPublisher(bus, cfg.Kafka.EventTopic)
		log.Info("Публикация событий в Kafka включена",
			interfaces.LogField{Key: "topic", Value: cfg.Kafka.EventTopic})
	}

	client := shopify.NewClient(cfg.Shopify, nil, log)
	productService := services.NewProductService(client, publisher, log)
	log.Info("Сервис товаров инициализирован",
		interfaces.LogField{Key: "shopify_api_version", Value: cfg.Shopify.APIVersion})

	opts := api.RouterOptions{
		ProductService:     productService,
		Logger:             log,
		Version:            cfg.Version,
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout,
		MaxBodyBytes:       int64(cfg.Server.BodyLimit) << 20,
		Authenticator:      authenticator,
		RequiredRole:       cfg.Security.RequiredRole,
		MetricsEnabled:     cfg.Metrics.Enabled,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimitCache = cacheClient
		opts.RateLimitRequests = cfg.RateLimit.Requests
		opts.RateLimitWindow = cfg.RateLimit.Window
	}
	if cfg.Redis.Enabled {
		opts.HealthChecks = map[string]handlers.HealthCheck{"redis": handlers.CacheHealthCheck(cacheClient)}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.SetupRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ошибка при graceful shutdown: %w", err)
		}
		log.Info("HTTP сервер остановлен")
		return nil
	})

	return g.Wait()
}

// newCache возвращает Redis, если он включен, иначе кэш в памяти процесса
func newCache(ctx context.Context, cfg *config.Config) (interfaces.CachePort, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(time.Minute), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return cache.NewRedisCache(connectCtx, cfg.GetRedisOptions())
}

// newAuthenticator возвращает nil, если аутентификация выключена
func newAuthenticator(ctx context.Context, cfg *config.Config) (interfaces.AuthPort, error) {
	switch cfg.Security.AuthMode {
	case config.AuthModeJWT:
		publicKey, err := os.ReadFile(cfg.Security.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения публичного ключа: %w", err)
		}
		verifier, err := security.NewJWTVerifier(publicKey, cfg.Security.JWTIssuer)
		if err != nil {
			return nil, err
		}
		return verifier, nil

	case config.AuthModeKeycloak:
		discoveryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := auth.NewKeycloakClient(discoveryCtx, cfg.Security.Keycloak.GetKeycloakConfig())
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, nil
	}
}

func closeWithLog(log interfaces.LoggerPort, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Error("Ошибка при закрытии зависимости",
			interfaces.LogField{Key: "dependency", Value: name},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}
