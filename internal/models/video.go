package models

import (
	"errors"
	"time"
)

// VideoStatus tracks a video through the upload and analysis pipeline.
// The analyze cache only trusts StatusCompleted; a crash mid-analysis leaves
// the video in StatusProcessing with partially-saved moments, which a retry
// overwrites after re-claiming.
type VideoStatus string

const (
	StatusPending    VideoStatus = "pending"
	StatusProcessing VideoStatus = "processing"
	StatusCompleted  VideoStatus = "completed"
	StatusFailed     VideoStatus = "failed"
)

// Video is a row in the videos table.
type Video struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename"`
	UploadedAt time.Time   `json:"uploadedAt"`
	Status     VideoStatus `json:"status"`
	VideoURL   string      `json:"videoUrl,omitempty"`
	Duration   int         `json:"duration,omitempty"` // seconds
	TaskID     string      `json:"taskId,omitempty"`   // provider indexing task
	IndexID    string      `json:"indexId,omitempty"`
}

// ErrNotFound is returned by store lookups when the entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRunning is returned when an analysis claim fails because another
// run holds the video.
var ErrAlreadyRunning = errors.New("analysis already running")
