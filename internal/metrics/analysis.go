package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis and EDGAR client Prometheus metrics.
var (
	AnalysisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgardesk",
			Name:      "analysis_requests_total",
			Help:      "Total number of chat-completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	AnalysisRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgardesk",
			Name:      "analysis_request_duration_seconds",
			Help:      "Chat-completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	AnalysisTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgardesk",
			Name:      "analysis_tokens_total",
			Help:      "Total completion tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	AnalysisErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgardesk",
			Name:      "analysis_errors_total",
			Help:      "Total chat-completion errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	AnalysisBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edgardesk",
			Name:      "analysis_budget_tokens_remaining",
			Help:      "Remaining token budget",
		},
		[]string{"provider", "period"},
	)

	EdgarRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgardesk",
			Name:      "edgar_requests_total",
			Help:      "Total requests issued against EDGAR",
		},
		[]string{"endpoint", "status"},
	)

	EdgarRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgardesk",
			Name:      "edgar_request_duration_seconds",
			Help:      "EDGAR request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	DocumentCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgardesk",
			Name:      "document_cache_total",
			Help:      "Filing document cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers analysis and EDGAR metrics. Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(AnalysisRequestsTotal)
	prometheus.MustRegister(AnalysisRequestDuration)
	prometheus.MustRegister(AnalysisTokensTotal)
	prometheus.MustRegister(AnalysisErrorsTotal)
	prometheus.MustRegister(AnalysisBudgetTokensRemaining)
	prometheus.MustRegister(EdgarRequestsTotal)
	prometheus.MustRegister(EdgarRequestDuration)
	prometheus.MustRegister(DocumentCacheTotal)
	domainMetricsRegistered = true
}
