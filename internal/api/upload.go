package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/middleware"
	"github.com/momentmatch/momentmatch/internal/models"
)

const defaultIndexName = "momentmatch-videos"

type uploadRequest struct {
	VideoURL string `json:"videoUrl"`
	IndexID  string `json:"indexId"`
	Filename string `json:"filename"`
}

type uploadResponse struct {
	VideoID string `json:"videoId"`
	IndexID string `json:"indexId"`
	TaskID  string `json:"taskId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UploadHandler registers a video URL with the provider for indexing and
// creates the local video row. Indexing is asynchronous; clients poll the
// status endpoint.
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	done := s.track("upload", r.Method)
	logger := middleware.LoggerFromRequest(r, s.Logger)

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		done(http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if req.VideoURL == "" {
		done(http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "videoUrl is required", "")
		return
	}

	indexID := req.IndexID
	if indexID == "" {
		var err error
		indexID, err = s.resolveIndex(r.Context())
		if err != nil {
			logger.Error("resolve index", zap.Error(err))
			done(http.StatusBadGateway)
			writeError(w, http.StatusBadGateway, "failed to resolve index", err.Error())
			return
		}
	}

	task, err := s.Index.CreateUploadTask(r.Context(), indexID, req.VideoURL)
	if err != nil {
		logger.Error("create upload task", zap.Error(err))
		done(http.StatusBadGateway)
		writeError(w, http.StatusBadGateway, "failed to start upload", err.Error())
		return
	}

	filename := req.Filename
	if filename == "" {
		parts := strings.Split(req.VideoURL, "/")
		filename = parts[len(parts)-1]
	}

	video := &models.Video{
		ID:       task.VideoID,
		Filename: filename,
		Status:   models.StatusPending,
		VideoURL: req.VideoURL,
		TaskID:   task.TaskID,
		IndexID:  indexID,
	}
	if err := s.Store.InsertVideo(r.Context(), video); err != nil {
		logger.Error("persist video", zap.String("video_id", video.ID), zap.Error(err))
		done(http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, "failed to persist video", "")
		return
	}

	logger.Info("upload started",
		zap.String("video_id", video.ID),
		zap.String("task_id", task.TaskID),
		zap.String("index_id", indexID))

	done(http.StatusAccepted)
	writeJSON(w, http.StatusAccepted, uploadResponse{
		VideoID: video.ID,
		IndexID: indexID,
		TaskID:  task.TaskID,
		Status:  task.Status,
		Message: "Video upload initiated. Indexing in progress...",
	})
}

// resolveIndex picks the first existing provider index, creating one when
// the account has none.
func (s *Server) resolveIndex(ctx context.Context) (string, error) {
	indexes, err := s.Index.ListIndexes(ctx)
	if err != nil {
		return "", err
	}
	if len(indexes) > 0 {
		return indexes[0].ID, nil
	}
	idx, err := s.Index.CreateIndex(ctx, defaultIndexName)
	if err != nil {
		return "", err
	}
	return idx.ID, nil
}
