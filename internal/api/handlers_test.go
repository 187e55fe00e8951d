package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/analysis"
	"github.com/momentmatch/momentmatch/internal/config"
	"github.com/momentmatch/momentmatch/internal/models"
	"github.com/momentmatch/momentmatch/internal/observability"
	"github.com/momentmatch/momentmatch/internal/videoindex"
)

type fakeVideoStore struct {
	videos   map[string]*models.Video
	inserted []*models.Video
	statuses map[string]models.VideoStatus
}

func (f *fakeVideoStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return v, nil
}

func (f *fakeVideoStore) InsertVideo(ctx context.Context, v *models.Video) error {
	f.inserted = append(f.inserted, v)
	return nil
}

func (f *fakeVideoStore) UpdateVideoStatus(ctx context.Context, id string, status models.VideoStatus) error {
	if f.statuses == nil {
		f.statuses = make(map[string]models.VideoStatus)
	}
	f.statuses[id] = status
	return nil
}

type fakeAnalyzer struct {
	result     *analysis.Result
	analyzeErr error
	resultsErr error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, indexID, videoID string) (*analysis.Result, error) {
	return f.result, f.analyzeErr
}

func (f *fakeAnalyzer) Results(ctx context.Context, videoID string) (*analysis.Result, error) {
	return f.result, f.resultsErr
}

type fakeIndexClient struct {
	indexes    []videoindex.Index
	created    *videoindex.Index
	task       *videoindex.UploadTask
	taskStatus *videoindex.UploadTask
	err        error
}

func (f *fakeIndexClient) ListIndexes(ctx context.Context) ([]videoindex.Index, error) {
	return f.indexes, f.err
}

func (f *fakeIndexClient) CreateIndex(ctx context.Context, name string) (*videoindex.Index, error) {
	return f.created, f.err
}

func (f *fakeIndexClient) ListVideos(ctx context.Context, indexID string) ([]videoindex.IndexedVideo, error) {
	return nil, f.err
}

func (f *fakeIndexClient) GetVideo(ctx context.Context, indexID, videoID string) (*videoindex.IndexedVideo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &videoindex.IndexedVideo{ID: videoID}, nil
}

func (f *fakeIndexClient) CreateUploadTask(ctx context.Context, indexID, videoURL string) (*videoindex.UploadTask, error) {
	return f.task, f.err
}

func (f *fakeIndexClient) GetTaskStatus(ctx context.Context, taskID string) (*videoindex.UploadTask, error) {
	return f.taskStatus, f.err
}

func newTestServer(store VideoStore, index IndexClient, analyzer Analyzer) *Server {
	return NewServer(zap.NewNop(), store, index, analyzer, observability.NewNoOpRegistry(), config.Config{})
}

func newTestRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	s.Routes(r)
	return r
}

func postJSON(t *testing.T, router *mux.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router *mux.Router, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeHandlerSuccess(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &analysis.Result{
		VideoID: "vid1",
		Moments: []models.AdMoment{{ID: "m1", VideoID: "vid1"}},
		Summary: models.InventorySummary{TotalSpots: 1},
	}}
	router := newTestRouter(newTestServer(&fakeVideoStore{}, &fakeIndexClient{}, analyzer))

	rec := postJSON(t, router, "/analyze", analyzeRequest{VideoID: "vid1", IndexID: "idx1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result analysis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "vid1", result.VideoID)
	assert.Equal(t, 1, result.Summary.TotalSpots)
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	router := newTestRouter(newTestServer(&fakeVideoStore{}, &fakeIndexClient{}, &fakeAnalyzer{}))

	rec := postJSON(t, router, "/analyze", analyzeRequest{VideoID: "vid1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte("not json")))
	raw := httptest.NewRecorder()
	router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestAnalyzeHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown video", models.ErrNotFound, http.StatusNotFound},
		{"concurrent run", models.ErrAlreadyRunning, http.StatusConflict},
		{"collaborator failure", errors.New("search provider down"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(newTestServer(&fakeVideoStore{}, &fakeIndexClient{}, &fakeAnalyzer{analyzeErr: tt.err}))
			rec := postJSON(t, router, "/analyze", analyzeRequest{VideoID: "vid1", IndexID: "idx1"})
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMomentsHandler(t *testing.T) {
	store := &fakeVideoStore{videos: map[string]*models.Video{
		"vid1": {ID: "vid1", Status: models.StatusCompleted},
	}}
	analyzer := &fakeAnalyzer{result: &analysis.Result{
		VideoID: "vid1",
		Moments: []models.AdMoment{{ID: "m1"}, {ID: "m2"}},
		Summary: models.InventorySummary{TotalSpots: 2},
	}}
	router := newTestRouter(newTestServer(store, &fakeIndexClient{}, analyzer))

	rec := get(router, "/moments/vid1")
	require.Equal(t, http.StatusOK, rec.Code)

	var result analysis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Moments, 2)

	rec = get(router, "/moments/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadHandler(t *testing.T) {
	store := &fakeVideoStore{videos: map[string]*models.Video{}}
	index := &fakeIndexClient{
		indexes: []videoindex.Index{{ID: "idx1", Name: "main"}},
		task:    &videoindex.UploadTask{TaskID: "task1", VideoID: "vid9", Status: "pending"},
	}
	router := newTestRouter(newTestServer(store, index, &fakeAnalyzer{}))

	rec := postJSON(t, router, "/upload", uploadRequest{VideoURL: "https://cdn.test/episode-42.mp4"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "vid9", resp.VideoID)
	assert.Equal(t, "idx1", resp.IndexID)
	assert.Equal(t, "task1", resp.TaskID)

	require.Len(t, store.inserted, 1)
	v := store.inserted[0]
	assert.Equal(t, models.StatusPending, v.Status)
	assert.Equal(t, "episode-42.mp4", v.Filename)
	assert.Equal(t, "task1", v.TaskID)
}

func TestUploadHandlerRequiresURL(t *testing.T) {
	router := newTestRouter(newTestServer(&fakeVideoStore{}, &fakeIndexClient{}, &fakeAnalyzer{}))
	rec := postJSON(t, router, "/upload", uploadRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVideoStatusHandlerIndexingStates(t *testing.T) {
	tests := []struct {
		name         string
		taskStatus   string
		wantStatus   models.VideoStatus
		wantIndexing string
	}{
		{"still indexing", "indexing", models.StatusPending, "indexing"},
		{"indexing done", "ready", models.StatusPending, "ready"},
		{"indexing failed", "failed", models.StatusFailed, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeVideoStore{videos: map[string]*models.Video{
				"vid1": {ID: "vid1", Status: models.StatusPending, TaskID: "task1"},
			}}
			index := &fakeIndexClient{taskStatus: &videoindex.UploadTask{TaskID: "task1", Status: tt.taskStatus}}
			router := newTestRouter(newTestServer(store, index, &fakeAnalyzer{}))

			rec := get(router, "/videos/vid1/status")
			require.Equal(t, http.StatusOK, rec.Code)

			var resp videoStatusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantIndexing, resp.Indexing)

			if tt.taskStatus == "failed" {
				assert.Equal(t, models.StatusFailed, store.statuses["vid1"])
			}
		})
	}
}

func TestVideoStatusHandlerCompleted(t *testing.T) {
	store := &fakeVideoStore{videos: map[string]*models.Video{
		"vid1": {ID: "vid1", Status: models.StatusCompleted, TaskID: "task1"},
	}}
	// The provider must not be polled once analysis completed.
	router := newTestRouter(newTestServer(store, &fakeIndexClient{err: errors.New("should not be called")}, &fakeAnalyzer{}))

	rec := get(router, "/videos/vid1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp videoStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusCompleted, resp.Status)
	assert.Empty(t, resp.Indexing)
}

func TestIndexBrowsing(t *testing.T) {
	index := &fakeIndexClient{indexes: []videoindex.Index{{ID: "idx1", Name: "main"}}}
	router := newTestRouter(newTestServer(&fakeVideoStore{}, index, &fakeAnalyzer{}))

	rec := get(router, "/indexes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "idx1")

	rec = get(router, "/indexes/idx1/videos/vid1")
	require.Equal(t, http.StatusOK, rec.Code)

	failing := &fakeIndexClient{err: errors.New("provider down")}
	router = newTestRouter(newTestServer(&fakeVideoStore{}, failing, &fakeAnalyzer{}))
	rec = get(router, "/indexes")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(newTestServer(&fakeVideoStore{}, &fakeIndexClient{}, &fakeAnalyzer{}))
	rec := get(router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
