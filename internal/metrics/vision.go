package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vision provider and OCR Prometheus metrics.
var (
	VisionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_requests_total",
			Help:      "Total number of vision provider requests",
		},
		[]string{"provider", "model", "operation", "status"},
	)

	VisionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vision_request_duration_seconds",
			Help:      "Vision provider request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"provider", "model", "operation"},
	)

	VisionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_tokens_total",
			Help:      "Total vision tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	VisionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_errors_total",
			Help:      "Total vision provider errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	VisionBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vision_budget_tokens_remaining",
			Help:      "Remaining vision token budget",
		},
		[]string{"provider", "period"},
	)

	VisionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_cache_total",
			Help:      "Description cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	VisionFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_fallback_total",
			Help:      "Descriptions replaced by the generic fallback",
		},
		[]string{"reason"}, // "unconfigured" / "error"
	)

	OCRRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_requests_total",
			Help:      "Total OCR recognitions by outcome",
		},
		[]string{"status"}, // "success" / "empty" / "error" / "timeout"
	)

	OCRDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ocr_duration_seconds",
			Help:      "OCR recognition duration in seconds, grayscale conversion included",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

var visionMetricsRegistered bool

// RegisterVisionMetrics registers vision and OCR metrics. Must be called once from main.
func RegisterVisionMetrics() {
	if visionMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		VisionRequestsTotal,
		VisionRequestDuration,
		VisionTokensTotal,
		VisionErrorsTotal,
		VisionBudgetTokensRemaining,
		VisionCacheTotal,
		VisionFallbackTotal,
		OCRRequestsTotal,
		OCRDuration,
	)
	visionMetricsRegistered = true
}
