package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Режимы аутентификации входящих запросов
const (
	AuthModeNone     = "none"
	AuthModeJWT      = "jwt"
	AuthModeKeycloak = "keycloak"
)

// ShopifyConfig настройки клиента Shopify Admin API
type ShopifyConfig struct {
	APIVersion string
	Timeout    time.Duration
}

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration
		BodyLimit       int // максимальный размер запроса в МБ
	}

	Shopify ShopifyConfig

	Redis struct {
		Enabled         bool
		Host            string
		Port            int
		Password        string
		DB              int
		PoolSize        int           // размер пула соединений
		MinIdleConns    int           // минимальное количество неактивных соединений
		ConnectTimeout  time.Duration // таймаут соединения
		ReadTimeout     time.Duration // таймаут чтения
		WriteTimeout    time.Duration // таймаут записи
		PoolTimeout     time.Duration // таймаут ожидания соединения из пула
		IdleTimeout     time.Duration // таймаут неактивного соединения
		IdleCheckFreq   time.Duration // частота проверки неактивных соединений
		MaxRetries      int           // максимальное количество повторных попыток
		MinRetryBackoff time.Duration // минимальное время между повторными попытками
		MaxRetryBackoff time.Duration // максимальное время между повторными попытками
	}

	RateLimit struct {
		Enabled  bool
		Requests int           // запросов на магазин за окно
		Window   time.Duration // длина окна
	}

	Kafka struct {
		Enabled           bool
		Brokers           []string
		GroupID           string
		CommandTopic      string
		EventTopic        string
		AutoOffsetReset   string
		SessionTimeout    time.Duration
		PollTimeout       time.Duration
		WriteTimeout      time.Duration
		EnableIdempotence bool
		CompressionType   string
	}

	Metrics struct {
		Enabled     bool
		ServiceName string
		Endpoint    string
		Port        int
	}

	Security struct {
		AuthMode         string
		JWTPublicKeyPath string
		JWTIssuer        string
		RequiredRole     string
		CORSAllowOrigins []string
		Keycloak         KeycloakConfig
	}

	Worker struct {
		ShopDomain  string
		AccessToken string
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	v := viper.New()

	// Настройка Viper
	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Чтение конфигурационного файла
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction сообщает, запущен ли сервис в production окружении
func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("некорректный порт сервера: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Shopify.APIVersion) == "" {
		return errors.New("не задана версия Shopify API")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rateLimit.requests и rateLimit.window должны быть положительными")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("не заданы брокеры Kafka")
	}

	switch c.Security.AuthMode {
	case AuthModeNone, "":
	case AuthModeJWT:
		if c.Security.JWTPublicKeyPath == "" {
			return errors.New("для режима jwt требуется security.jwtPublicKeyPath")
		}
	case AuthModeKeycloak:
		if err := c.Security.Keycloak.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("неизвестный режим аутентификации: %q", c.Security.AuthMode)
	}
	return nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "shopify-product-service")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "90s")
	v.SetDefault("server.shutdownTimeout", "15s")
	v.SetDefault("server.requestTimeout", "60s")
	v.SetDefault("server.bodyLimit", 10) // 10 МБ

	// Настройки Shopify
	v.SetDefault("shopify.apiVersion", "2025-07")
	v.SetDefault("shopify.timeout", "30s")

	// Настройки Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.connectTimeout", "1s")
	v.SetDefault("redis.readTimeout", "1s")
	v.SetDefault("redis.writeTimeout", "1s")
	v.SetDefault("redis.poolTimeout", "4s")
	v.SetDefault("redis.idleTimeout", "300s")
	v.SetDefault("redis.idleCheckFreq", "60s")
	v.SetDefault("redis.maxRetries", 3)
	v.SetDefault("redis.minRetryBackoff", "8ms")
	v.SetDefault("redis.maxRetryBackoff", "512ms")

	// Ограничение частоты запросов
	v.SetDefault("rateLimit.enabled", false)
	v.SetDefault("rateLimit.requests", 40)
	v.SetDefault("rateLimit.window", "1m")

	// Настройки Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "shopify-product-service")
	v.SetDefault("kafka.commandTopic", "shopify.product.commands")
	v.SetDefault("kafka.eventTopic", "shopify.product.events")
	v.SetDefault("kafka.autoOffsetReset", "latest")
	v.SetDefault("kafka.sessionTimeout", "10s")
	v.SetDefault("kafka.pollTimeout", "100ms")
	v.SetDefault("kafka.writeTimeout", "10s")
	v.SetDefault("kafka.enableIdempotence", true)
	v.SetDefault("kafka.compressionType", "snappy")

	// Настройки метрик
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.serviceName", "shopify-product-service")
	v.SetDefault("metrics.endpoint", "/metrics")
	v.SetDefault("metrics.port", 9090)

	// Настройки безопасности
	v.SetDefault("security.authMode", AuthModeNone)
	v.SetDefault("security.jwtPublicKeyPath", "")
	v.SetDefault("security.jwtIssuer", "shopify-product-service")
	v.SetDefault("security.requiredRole", "")
	v.SetDefault("security.corsAllowOrigins", []string{"*"})
	v.SetDefault("security.keycloak.serverURL", "")
	v.SetDefault("security.keycloak.realm", "")
	v.SetDefault("security.keycloak.clientID", "")

	// Настройки воркера
	v.SetDefault("worker.shopDomain", "")
	v.SetDefault("worker.accessToken", "")
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	bindings := map[string]string{
		// Основные настройки
		"appName":  "APP_NAME",
		"version":  "APP_VERSION",
		"logLevel": "LOG_LEVEL",
		"env":      "APP_ENV",

		// Настройки сервера
		"server.host":            "SERVER_HOST",
		"server.port":            "SERVER_PORT",
		"server.readTimeout":     "SERVER_READ_TIMEOUT",
		"server.writeTimeout":    "SERVER_WRITE_TIMEOUT",
		"server.shutdownTimeout": "SERVER_SHUTDOWN_TIMEOUT",
		"server.requestTimeout":  "SERVER_REQUEST_TIMEOUT",
		"server.bodyLimit":       "SERVER_BODY_LIMIT",

		// Настройки Shopify
		"shopify.apiVersion": "SHOPIFY_API_VERSION",
		"shopify.timeout":    "SHOPIFY_TIMEOUT",

		// Настройки Redis
		"redis.enabled":      "REDIS_ENABLED",
		"redis.host":         "REDIS_HOST",
		"redis.port":         "REDIS_PORT",
		"redis.password":     "REDIS_PASSWORD",
		"redis.db":           "REDIS_DB",
		"redis.poolSize":     "REDIS_POOL_SIZE",
		"redis.minIdleConns": "REDIS_MIN_IDLE_CONNS",
		"redis.maxRetries":   "REDIS_MAX_RETRIES",

		// Ограничение частоты запросов
		"rateLimit.enabled":  "RATE_LIMIT_ENABLED",
		"rateLimit.requests": "RATE_LIMIT_REQUESTS",
		"rateLimit.window":   "RATE_LIMIT_WINDOW",

		// Настройки Kafka
		"kafka.enabled":         "KAFKA_ENABLED",
		"kafka.brokers":         "KAFKA_BROKERS",
		"kafka.groupID":         "KAFKA_GROUP_ID",
		"kafka.commandTopic":    "KAFKA_COMMAND_TOPIC",
		"kafka.eventTopic":      "KAFKA_EVENT_TOPIC",
		"kafka.autoOffsetReset": "KAFKA_AUTO_OFFSET_RESET",

		// Настройки метрик
		"metrics.enabled":  "METRICS_ENABLED",
		"metrics.endpoint": "METRICS_ENDPOINT",
		"metrics.port":     "METRICS_PORT",

		// Настройки безопасности
		"security.authMode":           "AUTH_MODE",
		"security.jwtPublicKeyPath":   "JWT_PUBLIC_KEY_PATH",
		"security.jwtIssuer":          "JWT_ISSUER",
		"security.requiredRole":       "AUTH_REQUIRED_ROLE",
		"security.corsAllowOrigins":   "CORS_ALLOW_ORIGINS",
		"security.keycloak.serverURL": "KEYCLOAK_SERVER_URL",
		"security.keycloak.realm":     "KEYCLOAK_REALM",
		"security.keycloak.clientID":  "KEYCLOAK_CLIENT_ID",

		// Настройки воркера
		"worker.shopDomain":  "SHOPIFY_SHOP_DOMAIN",
		"worker.accessToken": "SHOPIFY_ACCESS_TOKEN",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}
