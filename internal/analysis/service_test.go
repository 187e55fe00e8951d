package analysis

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/analytics"
	"github.com/momentmatch/momentmatch/internal/models"
	"github.com/momentmatch/momentmatch/internal/observability"
)

type fakeStore struct {
	mu              sync.Mutex
	videos          map[string]*models.Video
	moments         []models.AdMoment
	recs            []models.AdRecommendation
	mentions        []models.BrandMention
	mentionRecs     map[string][]models.AdRecommendation
	clearCalls      int
	failMomentSaves int
}

func newFakeStore(videos ...*models.Video) *fakeStore {
	s := &fakeStore{
		videos:      make(map[string]*models.Video),
		mentionRecs: make(map[string][]models.AdRecommendation),
	}
	for _, v := range videos {
		s.videos[v.ID] = v
	}
	return s
}

func (s *fakeStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *fakeStore) InsertVideo(ctx context.Context, v *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.videos[v.ID] = &cp
	return nil
}

func (s *fakeStore) ClaimVideoForAnalysis(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return models.ErrNotFound
	}
	if v.Status != models.StatusPending && v.Status != models.StatusFailed {
		return models.ErrAlreadyRunning
	}
	v.Status = models.StatusProcessing
	return nil
}

func (s *fakeStore) ClearAnalysis(ctx context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	s.moments = nil
	s.recs = nil
	s.mentions = nil
	s.mentionRecs = make(map[string][]models.AdRecommendation)
	return nil
}

func (s *fakeStore) UpdateVideoStatus(ctx context.Context, id string, status models.VideoStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return models.ErrNotFound
	}
	v.Status = status
	return nil
}

func (s *fakeStore) InsertAdMoment(ctx context.Context, m *models.AdMoment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMomentSaves > 0 {
		s.failMomentSaves--
		return errors.New("transient insert failure")
	}
	s.moments = append(s.moments, *m)
	return nil
}

func (s *fakeStore) InsertAdRecommendation(ctx context.Context, r *models.AdRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, *r)
	return nil
}

func (s *fakeStore) InsertBrandMention(ctx context.Context, m *models.BrandMention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentions = append(s.mentions, *m)
	return nil
}

func (s *fakeStore) InsertBrandMentionRecommendation(ctx context.Context, mentionID string, r *models.AdRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentionRecs[mentionID] = append(s.mentionRecs[mentionID], *r)
	return nil
}

func (s *fakeStore) ListMoments(ctx context.Context, videoID string) ([]models.AdMoment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AdMoment
	for _, m := range s.moments {
		if m.VideoID == videoID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *fakeStore) ListBrandMentions(ctx context.Context, videoID string) ([]models.BrandMention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BrandMention
	for _, m := range s.mentions {
		if m.VideoID == videoID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeSearcher struct {
	candidates []models.CandidateMoment
	mentions   []models.BrandMention
	searchErr  error
	mentionErr error
	searches   int
}

func (f *fakeSearcher) SearchAdMoments(ctx context.Context, indexID, videoID string) ([]models.CandidateMoment, error) {
	f.searches++
	return f.candidates, f.searchErr
}

func (f *fakeSearcher) AnalyzeForBrandMentions(ctx context.Context, videoID string) ([]models.BrandMention, error) {
	return f.mentions, f.mentionErr
}

type fakeRecommender struct {
	mu    sync.Mutex
	calls []string
	recs  []models.AdRecommendation
}

func (f *fakeRecommender) FindRelevantProducts(ctx context.Context, momentContext string, tone models.EmotionalTone, category string) []models.AdRecommendation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, category)
	out := make([]models.AdRecommendation, len(f.recs))
	copy(out, f.recs)
	return out
}

func testService(store Store, searcher VideoSearcher, rec Recommender, events analytics.AnalyticsService) *Service {
	return NewService(store, searcher, rec, events, zap.NewNop(), observability.NewNoOpRegistry(), 2)
}

func pendingVideo(id string) *models.Video {
	return &models.Video{ID: id, Filename: id + ".mp4", Status: models.StatusPending}
}

func TestAnalyzeHappyPath(t *testing.T) {
	store := newFakeStore(pendingVideo("vid1"))
	searcher := &fakeSearcher{
		candidates: []models.CandidateMoment{
			{Start: 10.4, End: 24.6, Text: "thrilled about the excited crypto investing talk", Confidence: 90, Emotion: models.ToneExcited, Category: "entertainment"},
			{Start: 12, End: 20, Text: "overlapping segment", Confidence: 80, Emotion: models.ToneNeutral, Category: "general"},
			{Start: 40, End: 55, Text: "calm cooking recipe walkthrough", Confidence: 70, Emotion: models.ToneNeutral, Category: "educational"},
		},
		mentions: []models.BrandMention{
			{VideoID: "vid1", Timestamp: "01:30", TimeInSeconds: 90, Description: "host shows a soda can", Type: models.MentionBrand},
		},
	}
	rec := &fakeRecommender{recs: []models.AdRecommendation{{ProductName: "A"}, {ProductName: "B"}}}
	events := analytics.NewMockAnalytics()

	svc := testService(store, searcher, rec, events)
	result, err := svc.Analyze(t.Context(), "idx1", "vid1")
	require.NoError(t, err)

	// Overlapping second candidate is dropped by earliest-start dedup.
	require.Len(t, result.Moments, 2)
	first := result.Moments[0]
	assert.Equal(t, 10, first.StartTime)
	assert.Equal(t, 25, first.EndTime)
	assert.NotEmpty(t, first.ID)
	require.NotNil(t, first.Quality)
	assert.Equal(t, models.TierPremium, first.Quality.PlacementTier)

	// Recommendations persisted in order with the first one selected.
	require.Len(t, first.Recommendations, 2)
	assert.True(t, first.Recommendations[0].Selected)
	assert.False(t, first.Recommendations[1].Selected)
	assert.Equal(t, first.ID, first.Recommendations[0].MomentID)

	require.Len(t, result.BrandMentions, 1)
	assert.Equal(t, "product", rec.calls[0], "brand mention uses the product category")
	require.Len(t, store.mentionRecs[result.BrandMentions[0].ID], 2)

	assert.Equal(t, 2, result.Summary.TotalSpots)
	assert.Equal(t, 1, result.Summary.PremiumSpots)

	v, _ := store.GetVideo(t.Context(), "vid1")
	assert.Equal(t, models.StatusCompleted, v.Status)

	types := events.EventTypes()
	assert.Equal(t, "analysis_started", types[0])
	assert.Equal(t, "analysis_completed", types[len(types)-1])
	assert.Contains(t, types, "moment_scored")
}

func TestAnalyzeRegistersProviderVideo(t *testing.T) {
	// A video visible through index browsing has no local row until its
	// first analysis; Analyze creates one rather than turning the caller away.
	store := newFakeStore()
	searcher := &fakeSearcher{
		candidates: []models.CandidateMoment{{Start: 0, End: 5, Text: "t", Confidence: 70, Emotion: models.ToneNeutral, Category: "general"}},
	}

	svc := testService(store, searcher, &fakeRecommender{}, nil)
	result, err := svc.Analyze(t.Context(), "idx1", "tl-abc123")
	require.NoError(t, err)
	assert.Len(t, result.Moments, 1)

	v, err := store.GetVideo(t.Context(), "tl-abc123")
	require.NoError(t, err)
	assert.Equal(t, "Video tl-abc123", v.Filename)
	assert.Equal(t, "idx1", v.IndexID)
	assert.Equal(t, models.StatusCompleted, v.Status)
}

func TestAnalyzeConcurrentClaimRejected(t *testing.T) {
	store := newFakeStore(&models.Video{ID: "vid1", Status: models.StatusProcessing})
	svc := testService(store, &fakeSearcher{}, &fakeRecommender{}, nil)
	_, err := svc.Analyze(t.Context(), "idx", "vid1")
	assert.ErrorIs(t, err, models.ErrAlreadyRunning)
}

func TestAnalyzeCompletedVideoServedFromStore(t *testing.T) {
	store := newFakeStore(&models.Video{ID: "vid1", Status: models.StatusCompleted})
	store.moments = []models.AdMoment{{
		ID: "m1", VideoID: "vid1", StartTime: 5, EndTime: 10,
		Quality: &models.SpotQuality{PlacementTier: models.TierStandard, EngagementScore: 70, AttentionScore: 72},
	}}
	searcher := &fakeSearcher{}

	svc := testService(store, searcher, &fakeRecommender{}, nil)
	result, err := svc.Analyze(t.Context(), "idx", "vid1")
	require.NoError(t, err)

	assert.Equal(t, 0, searcher.searches, "completed video must not rerun the search battery")
	require.Len(t, result.Moments, 1)
	assert.Equal(t, 1, result.Summary.StandardSpots)
}

func TestAnalyzeSearchFailureMarksFailed(t *testing.T) {
	store := newFakeStore(pendingVideo("vid1"))
	searcher := &fakeSearcher{searchErr: errors.New("provider down")}
	events := analytics.NewMockAnalytics()

	svc := testService(store, searcher, &fakeRecommender{}, events)
	_, err := svc.Analyze(t.Context(), "idx", "vid1")
	require.Error(t, err)

	v, _ := store.GetVideo(t.Context(), "vid1")
	assert.Equal(t, models.StatusFailed, v.Status)
	assert.Contains(t, events.EventTypes(), "analysis_failed")
}

func TestAnalyzeBrandMentionFailureIsNonFatal(t *testing.T) {
	store := newFakeStore(pendingVideo("vid1"))
	searcher := &fakeSearcher{
		candidates: []models.CandidateMoment{{Start: 0, End: 5, Text: "t", Confidence: 70, Emotion: models.ToneNeutral, Category: "general"}},
		mentionErr: errors.New("analysis endpoint 500"),
	}

	svc := testService(store, searcher, &fakeRecommender{}, nil)
	result, err := svc.Analyze(t.Context(), "idx", "vid1")
	require.NoError(t, err)
	assert.Empty(t, result.BrandMentions)
	assert.Len(t, result.Moments, 1)
}

func TestAnalyzeRetryAfterFailureClearsResidue(t *testing.T) {
	store := newFakeStore(&models.Video{ID: "vid1", Status: models.StatusFailed})
	store.moments = []models.AdMoment{{ID: "stale", VideoID: "vid1"}}
	searcher := &fakeSearcher{
		candidates: []models.CandidateMoment{{Start: 0, End: 5, Text: "fresh", Confidence: 70, Emotion: models.ToneNeutral, Category: "general"}},
	}

	svc := testService(store, searcher, &fakeRecommender{}, nil)
	result, err := svc.Analyze(t.Context(), "idx", "vid1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.clearCalls)
	require.Len(t, result.Moments, 1)
	assert.Equal(t, "fresh", result.Moments[0].Context)
}

func TestAnalyzeMomentSaveFailureSparesSiblings(t *testing.T) {
	// A failed moment save drops only that moment; the run still completes
	// and the surviving sibling is persisted with its recommendations.
	store := newFakeStore(pendingVideo("vid1"))
	store.failMomentSaves = 1
	searcher := &fakeSearcher{
		candidates: []models.CandidateMoment{
			{Start: 0, End: 5, Text: "first", Confidence: 70, Emotion: models.ToneNeutral, Category: "general"},
			{Start: 10, End: 15, Text: "second", Confidence: 70, Emotion: models.ToneNeutral, Category: "general"},
		},
	}
	rec := &fakeRecommender{recs: []models.AdRecommendation{{ProductName: "A"}}}

	svc := testService(store, searcher, rec, nil)
	result, err := svc.Analyze(t.Context(), "idx", "vid1")
	require.NoError(t, err)

	require.Len(t, result.Moments, 1)
	assert.Equal(t, "second", result.Moments[0].Context)
	assert.Equal(t, 1, result.Summary.TotalSpots)
	require.Len(t, store.moments, 1)
	require.Len(t, store.recs, 1)
	assert.Equal(t, store.moments[0].ID, store.recs[0].MomentID)

	v, _ := store.GetVideo(t.Context(), "vid1")
	assert.Equal(t, models.StatusCompleted, v.Status)
}

func TestResultsReadback(t *testing.T) {
	store := newFakeStore()
	store.moments = []models.AdMoment{
		{ID: "m2", VideoID: "vid1", StartTime: 30, Quality: &models.SpotQuality{PlacementTier: models.TierBasic}},
		{ID: "m1", VideoID: "vid1", StartTime: 5, Quality: &models.SpotQuality{PlacementTier: models.TierPremium}},
		{ID: "other", VideoID: "vid2", Quality: &models.SpotQuality{}},
	}

	svc := testService(store, &fakeSearcher{}, &fakeRecommender{}, nil)
	result, err := svc.Results(t.Context(), "vid1")
	require.NoError(t, err)

	require.Len(t, result.Moments, 2)
	assert.Equal(t, "m1", result.Moments[0].ID, "moments ordered by start time")
	assert.Equal(t, 2, result.Summary.TotalSpots)
	assert.Equal(t, 1, result.Summary.PremiumSpots)
	assert.Equal(t, 1, result.Summary.BasicSpots)
}
