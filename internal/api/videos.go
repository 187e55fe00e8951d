package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/middleware"
	"github.com/momentmatch/momentmatch/internal/models"
)

type videoStatusResponse struct {
	VideoID  string             `json:"videoId"`
	Filename string             `json:"filename"`
	Status   models.VideoStatus `json:"status"`
	Indexing string             `json:"indexing,omitempty"`
	Message  string             `json:"message"`
}

// VideoStatusHandler reports a video's analysis status plus, while the
// provider is still indexing, the indexing task state. A failed indexing
// task is persisted as a failed video.
func (s *Server) VideoStatusHandler(w http.ResponseWriter, r *http.Request) {
	done := s.track("video_status", r.Method)
	logger := middleware.LoggerFromRequest(r, s.Logger)
	videoID := mux.Vars(r)["videoId"]

	video, err := s.Store.GetVideo(r.Context(), videoID)
	if err != nil {
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

	resp := videoStatusResponse{
		VideoID:  video.ID,
		Filename: video.Filename,
		Status:   video.Status,
	}

	switch video.Status {
	case models.StatusCompleted:
		resp.Message = "Analysis complete"
	case models.StatusProcessing:
		resp.Message = "Analysis in progress"
	case models.StatusFailed:
		resp.Message = "Analysis failed; resubmit to retry"
	default:
		resp.Message = "Ready for analysis"
		if video.TaskID != "" {
			task, err := s.Index.GetTaskStatus(r.Context(), video.TaskID)
			if err != nil {
				logger.Warn("poll indexing task",
					zap.String("video_id", videoID),
					zap.String("task_id", video.TaskID),
					zap.Error(err))
			} else {
				resp.Indexing = task.Status
				switch task.Status {
				case "ready":
					resp.Message = "Video indexing complete"
				case "failed":
					resp.Message = "Video indexing failed"
					resp.Status = models.StatusFailed
					if err := s.Store.UpdateVideoStatus(r.Context(), videoID, models.StatusFailed); err != nil {
						logger.Error("persist indexing failure", zap.Error(err))
					}
				default:
					resp.Message = "Video is still being indexed..."
				}
			}
		}
	}

	done(http.StatusOK)
	writeJSON(w, http.StatusOK, resp)
}
