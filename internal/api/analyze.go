package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/middleware"
	"github.com/momentmatch/momentmatch/internal/models"
)

type analyzeRequest struct {
	VideoID string `json:"videoId"`
	IndexID string `json:"indexId"`
}

// AnalyzeHandler runs the monetization analysis for one video. Completed
// videos return their persisted results; a video already being analyzed
// yields 409.
func (s *Server) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	done := s.track("analyze", r.Method)
	logger := middleware.LoggerFromRequest(r, s.Logger)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		done(http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if req.VideoID == "" || req.IndexID == "" {
		done(http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "videoId and indexId are required", "")
		return
	}

	result, err := s.Analyzer.Analyze(r.Context(), req.IndexID, req.VideoID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		done(http.StatusNotFound)
		writeError(w, http.StatusNotFound, "video not found", "")
		return
	case errors.Is(err, models.ErrAlreadyRunning):
		done(http.StatusConflict)
		writeError(w, http.StatusConflict, "analysis already in progress", "")
		return
	case err != nil:
		logger.Error("analyze video", zap.String("video_id", req.VideoID), zap.Error(err))
		done(http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "analysis failed", err.Error())
		return
	}

	done(http.StatusOK)
	writeJSON(w, http.StatusOK, result)
}
