package analytics

import (
	"context"
	"sync"
	"time"
)

var _ AnalyticsService = (*MockAnalytics)(nil)

// MockAnalytics records events in memory for tests.
type MockAnalytics struct {
	mu     sync.Mutex
	Events []EventRecord
}

// NewMockAnalytics creates an empty in-memory recorder.
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

func (m *MockAnalytics) record(rec EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Timestamp = time.Now().UTC()
	m.Events = append(m.Events, rec)
	return nil
}

func (m *MockAnalytics) RecordAnalysisStarted(ctx context.Context, videoID string) error {
	return m.record(EventRecord{EventType: "analysis_started", VideoID: videoID})
}

func (m *MockAnalytics) RecordMomentScored(ctx context.Context, videoID, momentID, tier string, overallScore, cpmMax int) error {
	return m.record(EventRecord{
		EventType:    "moment_scored",
		VideoID:      videoID,
		MomentID:     momentID,
		Tier:         tier,
		OverallScore: int32(overallScore),
		CpmMaxCents:  int32(cpmMax),
	})
}

func (m *MockAnalytics) RecordAnalysisCompleted(ctx context.Context, videoID string, momentCount, mentionCount int, duration time.Duration) error {
	return m.record(EventRecord{
		EventType:    "analysis_completed",
		VideoID:      videoID,
		MomentCount:  int32(momentCount),
		MentionCount: int32(mentionCount),
		DurationMs:   duration.Milliseconds(),
	})
}

func (m *MockAnalytics) RecordAnalysisFailed(ctx context.Context, videoID, reason string) error {
	return m.record(EventRecord{EventType: "analysis_failed", VideoID: videoID, Detail: reason})
}

// EventTypes returns the recorded event types in order.
func (m *MockAnalytics) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.EventType
	}
	return types
}
