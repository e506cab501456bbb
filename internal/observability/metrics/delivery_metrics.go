package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics tracks the quote document-delivery pipeline.
type DeliveryMetrics struct {
	deliveryAttempts *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
	quoteTransitions *prometheus.CounterVec
}

var (
	deliveryMetricsOnce sync.Once
	deliveryMetrics     *DeliveryMetrics
)

func Delivery() *DeliveryMetrics {
	return DeliveryWithConfig(Config{})
}

func DeliveryWithConfig(cfg Config) *DeliveryMetrics {
	deliveryMetricsOnce.Do(func() {
		deliveryMetrics = newDeliveryMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return deliveryMetrics
}

func ResetDeliveryMetricsForTest() {
	deliveryMetricsOnce = sync.Once{}
	deliveryMetrics = nil
}

func newDeliveryMetrics(registerer prometheus.Registerer, cfg Config) *DeliveryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "jamescrm"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	deliveryAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "jamescrm_delivery_attempts_total",
			Help:        "Delivery attempts by final log status.",
			ConstLabels: constLabels,
		},
		[]string{"status"}, // sent | failed
	)

	deliveryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "jamescrm_delivery_duration_seconds",
			Help:        "Wall time spent dispatching a message through the mail transport.",
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)

	quoteTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "jamescrm_quote_transitions_total",
			Help:        "Committed quote status transitions.",
			ConstLabels: constLabels,
		},
		[]string{"to_status"}, // sent | approved | rejected
	)

	registerer.MustRegister(deliveryAttempts, deliveryDuration, quoteTransitions)

	return &DeliveryMetrics{
		deliveryAttempts: deliveryAttempts,
		deliveryDuration: deliveryDuration,
		quoteTransitions: quoteTransitions,
	}
}

// ObserveAttempt records one delivery attempt and its transport duration.
func (m *DeliveryMetrics) ObserveAttempt(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.deliveryAttempts.WithLabelValues(status).Inc()
	m.deliveryDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveTransition records one committed quote status transition.
func (m *DeliveryMetrics) ObserveTransition(toStatus string) {
	if m == nil {
		return
	}
	m.quoteTransitions.WithLabelValues(toStatus).Inc()
}
