package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/middleware"
	"github.com/momentmatch/momentmatch/internal/models"
)

// MomentsHandler returns a video's persisted moments, brand mentions and
// inventory summary. Moments arrive ordered by start time with their
// recommendations attached.
func (s *Server) MomentsHandler(w http.ResponseWriter, r *http.Request) {
	done := s.track("moments", r.Method)
	logger := middleware.LoggerFromRequest(r, s.Logger)
	videoID := mux.Vars(r)["videoId"]

	if _, err := s.Store.GetVideo(r.Context(), videoID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			done(http.StatusNotFound)
			writeError(w, http.StatusNotFound, "video not found", "")
			return
		}
		logger.Error("load video", zap.String("video_id", videoID), zap.Error(err))
		done(http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, "failed to load video", "")
		return
	}

	result, err := s.Analyzer.Results(r.Context(), videoID)
	if err != nil {
		logger.Error("load moments", zap.String("video_id", videoID), zap.Error(err))
		done(http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, "failed to load moments", "")
		return
	}

	done(http.StatusOK)
	writeJSON(w, http.StatusOK, result)
}
