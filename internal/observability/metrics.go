package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momentmatch_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "momentmatch_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// analysis runs by outcome (completed, failed, cached, conflict)
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momentmatch_analysis_runs_total",
			Help: "Total video analysis runs by outcome",
		},
		[]string{"outcome"},
	)

	// end-to-end analysis duration
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "momentmatch_analysis_duration_seconds",
			Help:    "Duration of full video analysis runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// accepted moments per analysis run
	MomentsScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "momentmatch_moments_scored_total",
			Help: "Total moments scored across all analysis runs",
		},
	)

	// placement tier distribution of scored moments
	PlacementTiers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momentmatch_placement_tiers_total",
			Help: "Scored moments by placement tier",
		},
		[]string{"tier"},
	)

	// video search requests to the intelligence provider, by outcome
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momentmatch_video_search_total",
			Help: "Total semantic search requests to the video index",
		},
		[]string{"outcome"},
	)

	// latency of video-intelligence provider calls
	SearchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "momentmatch_video_search_duration_seconds",
			Help:    "Duration of video index search requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// recommendation lookups by outcome (success, fallback, failure)
	RecommendationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momentmatch_recommendation_requests_total",
			Help: "Total product recommendation lookups",
		},
		[]string{"outcome"},
	)

	// latency of recommendation collaborator calls
	RecommendationLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "momentmatch_recommendation_duration_seconds",
			Help:    "Duration of product recommendation lookups",
			Buckets: prometheus.DefBuckets,
		},
	)

	// cache hits/misses for collaborator response caching
	CollaboratorCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momentmatch_collaborator_cache_total",
			Help: "Collaborator response cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		AnalysisRuns,
		AnalysisDuration,
		MomentsScored,
		PlacementTiers,
		SearchRequests,
		SearchLatency,
		RecommendationRequests,
		RecommendationLatency,
		CollaboratorCache,
	)
}
