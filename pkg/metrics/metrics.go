package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример PromQL: rate(http_requests_total{service="product-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// MongoDB
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "collection"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// KafkaBreakerState - состояние circuit breaker продьюсера: 0 closed, 1 half-open, 2 open
var KafkaBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "kafka_circuit_breaker_state",
		Help: "Current state of the Kafka producer circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"service", "topic"},
)

// =============================================================================
// Каталог
// =============================================================================

var CatalogProductsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "catalog_products_created_total",
		Help: "Total number of products created",
	},
)

var CatalogProductsDeleted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "catalog_products_deleted_total",
		Help: "Total number of products deleted",
	},
)

// CatalogProductsTotal обновляется планировщиком при прогреве кеша
var CatalogProductsTotal = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "catalog_products_total",
		Help: "Estimated number of products in the catalog",
	},
)

// CatalogRatings - оценки товаров; mode: append, update
var CatalogRatings = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "catalog_product_rating_star",
		Help:    "Distribution of submitted product star ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
	[]string{"mode"},
)

// CatalogFilterSearches - поиск по фильтрам; criterion: query, price, ... , none
var CatalogFilterSearches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_filter_searches_total",
		Help: "Total number of faceted filter searches by winning criterion",
	},
	[]string{"criterion"},
)
