// Package analytics writes analysis lifecycle events to ClickHouse. The
// event log is append-only and feeds offline reporting; the service stays
// fully functional when ClickHouse is absent.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"
)

// AnalyticsService records analysis lifecycle events. Implementations must
// return ErrUnavailable, not fail, when the backing store is absent so
// callers can treat event logging as best-effort.
type AnalyticsService interface {
	RecordAnalysisStarted(ctx context.Context, videoID string) error
	RecordMomentScored(ctx context.Context, videoID, momentID, tier string, overallScore, cpmMax int) error
	RecordAnalysisCompleted(ctx context.Context, videoID string, momentCount, mentionCount int, duration time.Duration) error
	RecordAnalysisFailed(ctx context.Context, videoID, reason string) error
}

// Analytics wraps a ClickHouse connection.
type Analytics struct {
	DB *sql.DB
}

// EventRecord mirrors a row in the analysis_events table.
type EventRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	EventType    string    `json:"event_type"`
	VideoID      string    `json:"video_id"`
	MomentID     string    `json:"moment_id"`
	Tier         string    `json:"tier"`
	OverallScore int32     `json:"overall_score"`
	CpmMaxCents  int32     `json:"cpm_max_cents"`
	MomentCount  int32     `json:"moment_count"`
	MentionCount int32     `json:"mention_count"`
	DurationMs   int64     `json:"duration_ms"`
	Detail       string    `json:"detail"`
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// InitClickHouse connects to ClickHouse and ensures the analysis_events
// table exists.
func InitClickHouse(dsn string) (*Analytics, error) {
	chdb, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	chdb.SetMaxOpenConns(25)
	if err := chdb.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS analysis_events (
       timestamp     DateTime,
       event_type    String,
       video_id      String,
       moment_id     String,
       tier          String,
       overall_score Int32,
       cpm_max_cents Int32,
       moment_count  Int32,
       mention_count Int32,
       duration_ms   Int64,
       detail        String
   ) ENGINE=MergeTree() ORDER BY (event_type, timestamp)`
	if _, err := chdb.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: chdb}, nil
}

func (a *Analytics) insert(ctx context.Context, rec EventRecord) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	_, err := a.DB.ExecContext(ctx,
		`INSERT INTO analysis_events (timestamp, event_type, video_id, moment_id, tier, overall_score, cpm_max_cents, moment_count, mention_count, duration_ms, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), rec.EventType, rec.VideoID, rec.MomentID, rec.Tier,
		rec.OverallScore, rec.CpmMaxCents, rec.MomentCount, rec.MentionCount,
		rec.DurationMs, rec.Detail)
	if err != nil {
		return fmt.Errorf("insert analysis event: %w", err)
	}
	return nil
}

// RecordAnalysisStarted logs the start of an analysis run.
func (a *Analytics) RecordAnalysisStarted(ctx context.Context, videoID string) error {
	return a.insert(ctx, EventRecord{EventType: "analysis_started", VideoID: videoID})
}

// RecordMomentScored logs one scored ad moment.
func (a *Analytics) RecordMomentScored(ctx context.Context, videoID, momentID, tier string, overallScore, cpmMax int) error {
	return a.insert(ctx, EventRecord{
		EventType:    "moment_scored",
		VideoID:      videoID,
		MomentID:     momentID,
		Tier:         tier,
		OverallScore: int32(overallScore),
		CpmMaxCents:  int32(cpmMax),
	})
}

// RecordAnalysisCompleted logs a successful run with its result counts.
func (a *Analytics) RecordAnalysisCompleted(ctx context.Context, videoID string, momentCount, mentionCount int, duration time.Duration) error {
	return a.insert(ctx, EventRecord{
		EventType:    "analysis_completed",
		VideoID:      videoID,
		MomentCount:  int32(momentCount),
		MentionCount: int32(mentionCount),
		DurationMs:   duration.Milliseconds(),
	})
}

// RecordAnalysisFailed logs a failed run with the terminal error.
func (a *Analytics) RecordAnalysisFailed(ctx context.Context, videoID, reason string) error {
	return a.insert(ctx, EventRecord{EventType: "analysis_failed", VideoID: videoID, Detail: reason})
}

// GetEventsByVideoID reads back events for one video, newest first. Used by
// operational tooling and tests.
func (a *Analytics) GetEventsByVideoID(ctx context.Context, videoID string) ([]EventRecord, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	rows, err := a.DB.QueryContext(ctx,
		`SELECT timestamp, event_type, video_id, moment_id, tier, overall_score, cpm_max_cents, moment_count, mention_count, duration_ms, detail
		 FROM analysis_events WHERE video_id = ? ORDER BY timestamp DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query analysis events: %w", err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.Timestamp, &rec.EventType, &rec.VideoID, &rec.MomentID,
			&rec.Tier, &rec.OverallScore, &rec.CpmMaxCents, &rec.MomentCount,
			&rec.MentionCount, &rec.DurationMs, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan analysis event: %w", err)
		}
		events = append(events, rec)
	}
	return events, rows.Err()
}

// Close closes the underlying connection.
func (a *Analytics) Close() {
	if a == nil || a.DB == nil {
		return
	}
	if err := a.DB.Close(); err != nil {
		zap.L().Warn("Error closing ClickHouse connection", zap.Error(err))
	}
}
