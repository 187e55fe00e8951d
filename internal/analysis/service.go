// Package analysis orchestrates the full monetization analysis of one video:
// whole-video brand mention extraction, the semantic search battery,
// deduplication, spot quality scoring, recommendation enrichment and ordered
// persistence of the results.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/analytics"
	"github.com/momentmatch/momentmatch/internal/logic"
	"github.com/momentmatch/momentmatch/internal/models"
	"github.com/momentmatch/momentmatch/internal/observability"
)

// VideoSearcher is the slice of the video intelligence client the analysis
// pipeline needs.
type VideoSearcher interface {
	SearchAdMoments(ctx context.Context, indexID, videoID string) ([]models.CandidateMoment, error)
	AnalyzeForBrandMentions(ctx context.Context, videoID string) ([]models.BrandMention, error)
}

// Recommender matches products to moments. Implementations degrade to a
// static catalog internally and never fail.
type Recommender interface {
	FindRelevantProducts(ctx context.Context, momentContext string, tone models.EmotionalTone, category string) []models.AdRecommendation
}

// Store is the persistence surface the pipeline writes through.
type Store interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	InsertVideo(ctx context.Context, v *models.Video) error
	ClaimVideoForAnalysis(ctx context.Context, id string) error
	ClearAnalysis(ctx context.Context, videoID string) error
	UpdateVideoStatus(ctx context.Context, id string, status models.VideoStatus) error
	InsertAdMoment(ctx context.Context, m *models.AdMoment) error
	InsertAdRecommendation(ctx context.Context, r *models.AdRecommendation) error
	InsertBrandMention(ctx context.Context, m *models.BrandMention) error
	InsertBrandMentionRecommendation(ctx context.Context, mentionID string, r *models.AdRecommendation) error
	ListMoments(ctx context.Context, videoID string) ([]models.AdMoment, error)
	ListBrandMentions(ctx context.Context, videoID string) ([]models.BrandMention, error)
}

// Result is the complete output of one analysis run or readback.
type Result struct {
	VideoID       string                  `json:"videoId"`
	Moments       []models.AdMoment       `json:"moments"`
	BrandMentions []models.BrandMention   `json:"brandMentions"`
	Summary       models.InventorySummary `json:"summary"`
}

// Service runs and reads back analyses.
type Service struct {
	store       Store
	index       VideoSearcher
	recommender Recommender
	analytics   analytics.AnalyticsService
	logger      *zap.Logger
	metrics     observability.MetricsRegistry
	concurrency int
}

// NewService wires the pipeline. events may be nil; concurrency below 1 is
// raised to 1.
func NewService(store Store, index VideoSearcher, recommender Recommender, events analytics.AnalyticsService, logger *zap.Logger, metrics observability.MetricsRegistry, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	if events == nil {
		events = &analytics.Analytics{}
	}
	return &Service{
		store:       store,
		index:       index,
		recommender: recommender,
		analytics:   events,
		logger:      logger,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// Analyze runs the full pipeline for one video. A video that already
// completed analysis returns its persisted results without rerunning the
// collaborators. A video currently being analyzed by another request yields
// models.ErrAlreadyRunning. A provider-indexed video with no local row is
// registered on first analysis so the index-browsing flow can go straight
// to analyze.
func (s *Service) Analyze(ctx context.Context, indexID, videoID string) (*Result, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if errors.Is(err, models.ErrNotFound) {
		video = &models.Video{
			ID:       videoID,
			Filename: "Video " + videoID,
			Status:   models.StatusPending,
			IndexID:  indexID,
		}
		if err := s.store.InsertVideo(ctx, video); err != nil {
			return nil, fmt.Errorf("register video: %w", err)
		}
		s.logger.Info("registered provider video",
			zap.String("video_id", videoID),
			zap.String("index_id", indexID))
	} else if err != nil {
		return nil, err
	}
	if video.Status == models.StatusCompleted {
		s.logger.Info("returning cached analysis", zap.String("video_id", videoID))
		return s.Results(ctx, videoID)
	}

	if err := s.store.ClaimVideoForAnalysis(ctx, videoID); err != nil {
		return nil, err
	}
	if err := s.store.ClearAnalysis(ctx, videoID); err != nil {
		return nil, s.fail(ctx, videoID, fmt.Errorf("clear previous analysis: %w", err))
	}

	start := time.Now()
	s.recordEvent(s.analytics.RecordAnalysisStarted(ctx, videoID))
	s.logger.Info("analysis started",
		zap.String("video_id", videoID),
		zap.String("index_id", indexID))

	mentions := s.analyzeBrandMentions(ctx, videoID)

	candidates, err := s.index.SearchAdMoments(ctx, indexID, videoID)
	if err != nil {
		return nil, s.fail(ctx, videoID, fmt.Errorf("search ad moments: %w", err))
	}
	deduped := logic.DeduplicateMoments(candidates)
	s.logger.Info("candidate moments collected",
		zap.String("video_id", videoID),
		zap.Int("raw", len(candidates)),
		zap.Int("deduplicated", len(deduped)))

	moments := make([]models.AdMoment, len(deduped))
	for i, c := range deduped {
		quality := logic.ScoreSpot(c.Text, string(c.Emotion), c.Confidence)
		moments[i] = models.AdMoment{
			ID:            uuid.NewString(),
			VideoID:       videoID,
			StartTime:     int(math.Floor(c.Start)),
			EndTime:       int(math.Ceil(c.End)),
			Context:       c.Text,
			EmotionalTone: c.Emotion,
			Category:      c.Category,
			Confidence:    c.Confidence,
			Quality:       &quality,
		}
	}

	s.enrichMoments(ctx, moments)
	moments = s.persistMoments(ctx, videoID, moments)

	if err := s.store.UpdateVideoStatus(ctx, videoID, models.StatusCompleted); err != nil {
		return nil, s.fail(ctx, videoID, fmt.Errorf("mark completed: %w", err))
	}

	elapsed := time.Since(start)
	s.metrics.IncrementAnalysisRuns("success")
	s.metrics.RecordAnalysisDuration(elapsed)
	s.recordEvent(s.analytics.RecordAnalysisCompleted(ctx, videoID, len(moments), len(mentions), elapsed))
	s.logger.Info("analysis completed",
		zap.String("video_id", videoID),
		zap.Int("moments", len(moments)),
		zap.Int("brand_mentions", len(mentions)),
		zap.Duration("elapsed", elapsed))

	return &Result{
		VideoID:       videoID,
		Moments:       moments,
		BrandMentions: mentions,
		Summary:       summarize(moments),
	}, nil
}

// analyzeBrandMentions runs the whole-video pass and persists its hits.
// Brand mention extraction is advisory: any failure leaves the main pipeline
// intact.
func (s *Service) analyzeBrandMentions(ctx context.Context, videoID string) []models.BrandMention {
	mentions, err := s.index.AnalyzeForBrandMentions(ctx, videoID)
	if err != nil {
		s.logger.Warn("brand mention analysis failed",
			zap.String("video_id", videoID),
			zap.Error(err))
		return nil
	}

	persisted := make([]models.BrandMention, 0, len(mentions))
	for _, mention := range mentions {
		mention.ID = uuid.NewString()
		if err := s.store.InsertBrandMention(ctx, &mention); err != nil {
			s.logger.Warn("persist brand mention",
				zap.String("video_id", videoID),
				zap.Error(err))
			continue
		}

		category := "general"
		if mention.Type == models.MentionBrand {
			category = "product"
		}
		recs := s.recommender.FindRelevantProducts(ctx, mention.Description, models.ToneNeutral, category)
		if len(recs) > models.MaxRecommendationsPerMoment {
			recs = recs[:models.MaxRecommendationsPerMoment]
		}
		for j := range recs {
			recs[j].ID = uuid.NewString()
			recs[j].Selected = j == 0
			if err := s.store.InsertBrandMentionRecommendation(ctx, mention.ID, &recs[j]); err != nil {
				s.logger.Warn("persist brand mention recommendation", zap.Error(err))
			}
		}
		mention.Recommendations = recs
		persisted = append(persisted, mention)
	}
	return persisted
}

// enrichMoments fetches product recommendations for every moment with at
// most s.concurrency lookups in flight. A failed lookup leaves that moment
// without recommendations and never aborts the run.
func (s *Service) enrichMoments(ctx context.Context, moments []models.AdMoment) {
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i := range moments {
		wg.Add(1)
		sem <- struct{}{}
		go func(m *models.AdMoment) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("recommendation lookup panicked",
						zap.String("moment_id", m.ID),
						zap.Any("panic", r))
				}
			}()
			recs := s.recommender.FindRelevantProducts(ctx, m.Context, m.EmotionalTone, m.Category)
			if len(recs) > models.MaxRecommendationsPerMoment {
				recs = recs[:models.MaxRecommendationsPerMoment]
			}
			m.Recommendations = recs
		}(&moments[i])
	}
	wg.Wait()
}

// persistMoments writes moments and their recommendations in moment order
// and returns the subset that was saved. The first recommendation persisted
// for each moment is marked selected. A failed moment save drops that moment
// and its recommendations; a failed recommendation save drops only itself.
// Either way the siblings continue.
func (s *Service) persistMoments(ctx context.Context, videoID string, moments []models.AdMoment) []models.AdMoment {
	persisted := make([]models.AdMoment, 0, len(moments))
	for i := range moments {
		m := &moments[i]
		if err := s.store.InsertAdMoment(ctx, m); err != nil {
			s.logger.Warn("persist moment",
				zap.String("video_id", videoID),
				zap.String("moment_id", m.ID),
				zap.Error(err))
			continue
		}
		s.metrics.IncrementMomentsScored()
		s.metrics.IncrementPlacementTier(string(m.Quality.PlacementTier))
		s.recordEvent(s.analytics.RecordMomentScored(ctx, videoID, m.ID,
			string(m.Quality.PlacementTier), m.Quality.OverallScore, m.Quality.EstimatedCpmMax))

		for j := range m.Recommendations {
			rec := &m.Recommendations[j]
			rec.ID = uuid.NewString()
			rec.MomentID = m.ID
			rec.Selected = j == 0
			if err := s.store.InsertAdRecommendation(ctx, rec); err != nil {
				s.logger.Warn("persist recommendation",
					zap.String("moment_id", m.ID),
					zap.Error(err))
			}
		}
		persisted = append(persisted, *m)
	}
	return persisted
}

// Results reads back a video's persisted analysis.
func (s *Service) Results(ctx context.Context, videoID string) (*Result, error) {
	moments, err := s.store.ListMoments(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("list moments: %w", err)
	}
	mentions, err := s.store.ListBrandMentions(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("list brand mentions: %w", err)
	}
	return &Result{
		VideoID:       videoID,
		Moments:       moments,
		BrandMentions: mentions,
		Summary:       summarize(moments),
	}, nil
}

// fail marks the video failed and records the terminal error. The original
// error is returned for the caller to surface.
func (s *Service) fail(ctx context.Context, videoID string, cause error) error {
	s.metrics.IncrementAnalysisRuns("failure")
	s.recordEvent(s.analytics.RecordAnalysisFailed(ctx, videoID, cause.Error()))
	s.logger.Error("analysis failed",
		zap.String("video_id", videoID),
		zap.Error(cause))
	if err := s.store.UpdateVideoStatus(ctx, videoID, models.StatusFailed); err != nil {
		s.logger.Error("mark video failed",
			zap.String("video_id", videoID),
			zap.Error(err))
	}
	return cause
}

func (s *Service) recordEvent(err error) {
	if err != nil && !errors.Is(err, analytics.ErrUnavailable) {
		s.logger.Warn("record analysis event", zap.Error(err))
	}
}

func summarize(moments []models.AdMoment) models.InventorySummary {
	spots := make([]models.SpotQuality, 0, len(moments))
	for _, m := range moments {
		if m.Quality != nil {
			spots = append(spots, *m.Quality)
		}
	}
	return logic.SummarizeInventory(spots)
}
