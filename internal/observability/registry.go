package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics.
// Components receive it by injection rather than touching the global
// Prometheus collectors directly.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Analysis pipeline metrics
	IncrementAnalysisRuns(outcome string)
	RecordAnalysisDuration(duration time.Duration)
	IncrementMomentsScored()
	IncrementPlacementTier(tier string)

	// Video intelligence collaborator metrics
	IncrementSearchRequests(outcome string)
	RecordSearchLatency(duration time.Duration)

	// Recommendation collaborator metrics
	IncrementRecommendationRequests(outcome string)
	RecordRecommendationLatency(duration time.Duration)

	// Collaborator response cache metrics
	IncrementCollaboratorCache(result string)
}

// PrometheusRegistry implements MetricsRegistry on the package-level
// Prometheus collectors.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementAnalysisRuns(outcome string) {
	AnalysisRuns.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordAnalysisDuration(duration time.Duration) {
	AnalysisDuration.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementMomentsScored() {
	MomentsScored.Inc()
}

func (r *PrometheusRegistry) IncrementPlacementTier(tier string) {
	PlacementTiers.WithLabelValues(tier).Inc()
}

func (r *PrometheusRegistry) IncrementSearchRequests(outcome string) {
	SearchRequests.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordSearchLatency(duration time.Duration) {
	SearchLatency.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementRecommendationRequests(outcome string) {
	RecommendationRequests.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordRecommendationLatency(duration time.Duration) {
	RecommendationLatency.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementCollaboratorCache(result string) {
	CollaboratorCache.WithLabelValues(result).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing.
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementAnalysisRuns(outcome string)                                 {}
func (r *NoOpRegistry) RecordAnalysisDuration(duration time.Duration)                        {}
func (r *NoOpRegistry) IncrementMomentsScored()                                              {}
func (r *NoOpRegistry) IncrementPlacementTier(tier string)                                   {}
func (r *NoOpRegistry) IncrementSearchRequests(outcome string)                               {}
func (r *NoOpRegistry) RecordSearchLatency(duration time.Duration)                           {}
func (r *NoOpRegistry) IncrementRecommendationRequests(outcome string)                       {}
func (r *NoOpRegistry) RecordRecommendationLatency(duration time.Duration)                   {}
func (r *NoOpRegistry) IncrementCollaboratorCache(result string)                             {}
