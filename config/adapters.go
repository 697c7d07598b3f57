package config

import (
	"github.com/athebyme/shopify-product-service/internal/adapters/cache"
	"github.com/athebyme/shopify-product-service/internal/adapters/messaging"
)

// GetRedisOptions возвращает параметры для cache.NewRedisCache
func (c *Config) GetRedisOptions() cache.RedisOptions {
	return cache.RedisOptions{
		Host:            c.Redis.Host,
		Port:            c.Redis.Port,
		Password:        c.Redis.Password,
		DB:              c.Redis.DB,
		PoolSize:        c.Redis.PoolSize,
		MinIdleConns:    c.Redis.MinIdleConns,
		DialTimeout:     c.Redis.ConnectTimeout,
		ReadTimeout:     c.Redis.ReadTimeout,
		WriteTimeout:    c.Redis.WriteTimeout,
		PoolTimeout:     c.Redis.PoolTimeout,
		IdleTimeout:     c.Redis.IdleTimeout,
		IdleCheckFreq:   c.Redis.IdleCheckFreq,
		MaxRetries:      c.Redis.MaxRetries,
		MinRetryBackoff: c.Redis.MinRetryBackoff,
		MaxRetryBackoff: c.Redis.MaxRetryBackoff,
	}
}

// GetKafkaOptions возвращает параметры для messaging.NewKafkaMessaging
func (c *Config) GetKafkaOptions(clientID string) messaging.KafkaOptions {
	return messaging.KafkaOptions{
		Brokers:           c.Kafka.Brokers,
		GroupID:           c.Kafka.GroupID,
		ClientID:          clientID,
		AutoOffsetReset:   c.Kafka.AutoOffsetReset,
		SessionTimeout:    c.Kafka.SessionTimeout,
		PollTimeout:       c.Kafka.PollTimeout,
		WriteTimeout:      c.Kafka.WriteTimeout,
		EnableIdempotence: c.Kafka.EnableIdempotence,
		CompressionType:   c.Kafka.CompressionType,
	}
}
