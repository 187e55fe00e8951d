// Package api exposes the HTTP surface of the monetization service: analysis
// runs, result readback, uploads and index browsing.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/analysis"
	"github.com/momentmatch/momentmatch/internal/config"
	"github.com/momentmatch/momentmatch/internal/models"
	"github.com/momentmatch/momentmatch/internal/observability"
	"github.com/momentmatch/momentmatch/internal/videoindex"
)

// Analyzer runs and reads back video analyses.
type Analyzer interface {
	Analyze(ctx context.Context, indexID, videoID string) (*analysis.Result, error)
	Results(ctx context.Context, videoID string) (*analysis.Result, error)
}

// IndexClient is the slice of the video intelligence client the HTTP layer
// uses for uploads and index browsing.
type IndexClient interface {
	ListIndexes(ctx context.Context) ([]videoindex.Index, error)
	CreateIndex(ctx context.Context, name string) (*videoindex.Index, error)
	ListVideos(ctx context.Context, indexID string) ([]videoindex.IndexedVideo, error)
	GetVideo(ctx context.Context, indexID, videoID string) (*videoindex.IndexedVideo, error)
	CreateUploadTask(ctx context.Context, indexID, videoURL string) (*videoindex.UploadTask, error)
	GetTaskStatus(ctx context.Context, taskID string) (*videoindex.UploadTask, error)
}

// VideoStore is the persistence surface the HTTP layer needs directly.
type VideoStore interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	InsertVideo(ctx context.Context, v *models.Video) error
	UpdateVideoStatus(ctx context.Context, id string, status models.VideoStatus) error
}

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger   *zap.Logger
	Store    VideoStore
	Index    IndexClient
	Analyzer Analyzer
	Metrics  observability.MetricsRegistry
	Config   config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store VideoStore, index IndexClient, analyzer Analyzer, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	return &Server{
		Logger:   logger,
		Store:    store,
		Index:    index,
		Analyzer: analyzer,
		Metrics:  metrics,
		Config:   cfg,
	}
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r *mux.Router) {
	r.HandleFunc("/analyze", s.AnalyzeHandler).Methods("POST")
	r.HandleFunc("/upload", s.UploadHandler).Methods("POST")
	r.HandleFunc("/videos/{videoId}/status", s.VideoStatusHandler).Methods("GET")
	r.HandleFunc("/moments/{videoId}", s.MomentsHandler).Methods("GET")
	r.HandleFunc("/indexes", s.ListIndexesHandler).Methods("GET")
	r.HandleFunc("/indexes/{indexId}/videos", s.ListIndexVideosHandler).Methods("GET")
	r.HandleFunc("/indexes/{indexId}/videos/{videoId}", s.GetIndexVideoHandler).Methods("GET")
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
}

// track records request count and latency for one endpoint. Call the
// returned func with the final status code.
func (s *Server) track(endpoint, method string) func(status int) {
	start := time.Now()
	return func(status int) {
		s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
