package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// метрики HTTP сервера
var (
	HTTPDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_durations_seconds",
		Help:    "Длительность HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Общее количество HTTP запросов",
	}, []string{"path", "method", "status"})

	HTTPActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_requests",
		Help: "Количество активных HTTP запросов",
	})

	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_operations_total",
		Help: "Количество операций с кэшем",
	}, []string{"operation", "status"})
)

// метрики обращений к Shopify Admin API
var (
	ShopifyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopify_requests_total",
		Help: "Количество GraphQL запросов к Shopify",
	}, []string{"operation", "outcome"})

	ShopifyRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopify_request_duration_seconds",
		Help:    "Длительность GraphQL запросов к Shopify",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// метрики оркестрации создания товара
var (
	OrchestrationStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "product_orchestration_step_duration_seconds",
		Help:    "Длительность шагов создания товара",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	Orchestrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_orchestrations_total",
		Help: "Количество завершенных оркестраций по результату",
	}, []string{"outcome"})
)

// метрики воркера
var (
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_processed_total",
		Help: "Общее количество обработанных сообщений",
	}, []string{"topic", "status"})

	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_message_processing_duration_seconds",
		Help:    "Время обработки сообщений",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_workers",
		Help: "Количество активных воркеров",
	})
)
