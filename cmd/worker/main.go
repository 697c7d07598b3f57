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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/athebyme/shopify-product-service/config"
	"github.com/athebyme/shopify-product-service/internal/adapters/logger"
	"github.com/athebyme/shopify-product-service/internal/adapters/messaging"
	"github.com/athebyme/shopify-product-service/internal/adapters/shopify"
	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
	"github.com/athebyme/shopify-product-service/internal/worker"
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

	log.Info("Инициализация воркера",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Воркер завершился с ошибкой", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Воркер корректно завершил работу")
}

func run(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) error {
	shop := models.ShopCredentials{Domain: cfg.Worker.ShopDomain, AccessToken: cfg.Worker.AccessToken}
	if err := services.CheckCredentials(shop); err != nil {
		return fmt.Errorf("не заданы SHOPIFY_SHOP_DOMAIN и SHOPIFY_ACCESS_TOKEN: %w", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("воркеру требуется kafka.brokers")
	}

	bus, err := messaging.NewKafkaMessaging(cfg.GetKafkaOptions(cfg.AppName+"-worker"), log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации Kafka: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Error("Ошибка при закрытии Kafka", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()
	log.Info("Система обмена сообщениями инициализирована")

	publisher := messaging.NewEventPublisher(bus, cfg.Kafka.EventTopic)
	client := shopify.NewClient(cfg.Shopify, nil, log)
	productService := services.NewProductService(client, publisher, log)
	handler := worker.NewCommandHandler(productService, publisher, shop, log.WithShop(shop.Domain))

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		server := metricsServer(cfg)
		g.Go(func() error {
			log.Info("Запуск HTTP сервера для метрик", interfaces.LogField{Key: "addr", Value: server.Addr})
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ошибка запуска HTTP сервера для метрик: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		unsubscribe, err := bus.Subscribe(gctx, cfg.Kafka.CommandTopic, handler.Handle)
		if err != nil {
			return fmt.Errorf("ошибка подписки на команды: %w", err)
		}
		log.Info("Подписка на команды создания товаров установлена",
			interfaces.LogField{Key: "topic", Value: cfg.Kafka.CommandTopic})

		<-gctx.Done()
		log.Info("Отмена подписки на команды создания товаров")
		return unsubscribe()
	})

	log.Info("Воркер запущен и готов к обработке сообщений")
	return g.Wait()
}

func metricsServer(cfg *config.Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
