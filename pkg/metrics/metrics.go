package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	GatewayCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_call_latency_ms",
			Help:    "Payment gateway call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"endpoint", "status"},
	)

	HabitCompletionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completion_count",
			Help: "Total number of recorded habit completions",
		},
		[]string{"category"},
	)

	PenaltyCreatedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "penalty_created_count",
			Help: "Total number of penalties created by the missed-habit sweep",
		},
	)

	AchievementUnlockCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "achievement_unlock_count",
			Help: "Total number of achievement unlocks",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func RecordGatewayCallLatency(endpoint, status string, duration time.Duration) {
	GatewayCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

func IncrementHabitCompletion(category string) {
	HabitCompletionCount.WithLabelValues(category).Inc()
}

func AddPenaltiesCreated(n int) {
	PenaltyCreatedCount.Add(float64(n))
}

func AddAchievementUnlocks(n int) {
	AchievementUnlockCount.Add(float64(n))
}
