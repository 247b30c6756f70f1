package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and upload Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total searches by outcome",
		},
		[]string{"outcome"}, // "hit" / "empty" / "invalid" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, record listing included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	SearchCandidatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_candidates_total",
			Help:      "Total records handed to the relevance engine",
		},
	)

	SearchLogErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_log_errors_total",
			Help:      "Search log writes that failed",
		},
	)

	UploadFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_files_total",
			Help:      "Uploaded files by outcome",
		},
		[]string{"outcome"}, // "completed" / "failed" / "rejected"
	)

	UploadBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_batch_duration_seconds",
			Help:      "Upload batch duration in seconds, processing included",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and upload metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		SearchRequestsTotal,
		SearchDuration,
		SearchResults,
		SearchCandidatesTotal,
		SearchLogErrorsTotal,
		UploadFilesTotal,
		UploadBatchDuration,
	)
	searchMetricsRegistered = true
}
