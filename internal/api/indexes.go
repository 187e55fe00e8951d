package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/middleware"
)

// ListIndexesHandler lists the provider indexes visible to the configured
// API key.
func (s *Server) ListIndexesHandler(w http.ResponseWriter, r *http.Request) {
	done := s.track("indexes", r.Method)
	logger := middleware.LoggerFromRequest(r, s.Logger)

	indexes, err := s.Index.ListIndexes(r.Context())
	if err != nil {
		logger.Error("list indexes", zap.Error(err))
		done(http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "failed to list indexes", err.Error())
		return
	}
	done(http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]any{"indexes": indexes})
}

// ListIndexVideosHandler lists the videos in one provider index.
func (s *Server) ListIndexVideosHandler(w http.ResponseWriter, r *http.Request) {
	done := s.track("index_videos", r.Method)
	logger := middleware.LoggerFromRequest(r, s.Logger)
	indexID := mux.Vars(r)["indexId"]

	videos, err := s.Index.ListVideos(r.Context(), indexID)
	if err != nil {
		logger.Error("list index videos", zap.String("index_id", indexID), zap.Error(err))
		done(http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "failed to list videos", err.Error())
		return
	}
	done(http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// GetIndexVideoHandler fetches one indexed video, including its streaming
// URL once transcoding finishes.
func (s *Server) GetIndexVideoHandler(w http.ResponseWriter, r *http.Request) {
	done := s.track("index_video", r.Method)
	logger := middleware.LoggerFromRequest(r, s.Logger)
	vars := mux.Vars(r)

	video, err := s.Index.GetVideo(r.Context(), vars["indexId"], vars["videoId"])
	if err != nil {
		logger.Error("get index video",
			zap.String("index_id", vars["indexId"]),
			zap.String("video_id", vars["videoId"]),
			zap.Error(err))
		done(http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "failed to fetch video", err.Error())
		return
	}
	done(http.StatusOK)
	writeJSON(w, http.StatusOK, video)
}
