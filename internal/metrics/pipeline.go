package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chat completion and pipeline Prometheus metrics.
var (
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twinrag",
			Name:      "chat_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	ChatRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "twinrag",
			Name:      "chat_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	ChatTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twinrag",
			Name:      "chat_tokens_total",
			Help:      "Total chat completion tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	// PipelineStageTotal counts optional-stage outcomes so silent fallbacks
	// stay visible in dashboards.
	PipelineStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twinrag",
			Name:      "pipeline_stage_total",
			Help:      "Pipeline stage outcomes",
		},
		[]string{"stage", "outcome"}, // stage: enhance/retrieve/generate/format
	)

	GenerationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "twinrag",
			Name:      "generation_fallbacks_total",
			Help:      "Times the secondary chat provider was attempted",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers chat and pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(ChatRequestDuration)
	prometheus.MustRegister(ChatTokensTotal)
	prometheus.MustRegister(PipelineStageTotal)
	prometheus.MustRegister(GenerationFallbacksTotal)
	pipelineMetricsRegistered = true
}
