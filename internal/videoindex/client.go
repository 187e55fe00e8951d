// Package videoindex is the HTTP client for the video intelligence provider:
// semantic search over indexed video, upload task management and whole-video
// free-text analysis.
package videoindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/config"
	"github.com/momentmatch/momentmatch/internal/db"
	"github.com/momentmatch/momentmatch/internal/observability"
)

// Client talks to the video intelligence API. It is constructed from an
// immutable config snapshot; no credentials or index state are mutated after
// construction.
type Client struct {
	baseURL      string
	apiKey       string
	hitsPerQuery int
	httpClient   *http.Client
	cache        *db.RedisStore
	cacheTTL     time.Duration
	logger       *zap.Logger
	metrics      observability.MetricsRegistry
}

// NewClient constructs a Client from configuration. cache may be nil, in
// which case every search goes to the provider.
func NewClient(cfg config.Config, cache *db.RedisStore, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	hits := cfg.SearchHitsPerQuery
	if hits <= 0 {
		hits = 3
	}
	return &Client{
		baseURL:      cfg.VideoIndexURL,
		apiKey:       cfg.VideoIndexAPIKey,
		hitsPerQuery: hits,
		httpClient: &http.Client{
			Timeout:   cfg.VideoIndexTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cache:    cache,
		cacheTTL: cfg.ResponseCacheTTL,
		logger:   logger,
		metrics:  metrics,
	}
}

// Index is a provider-side video index.
type Index struct {
	ID         string `json:"_id"`
	Name       string `json:"index_name"`
	VideoCount int    `json:"video_count"`
	CreatedAt  string `json:"created_at"`
}

// IndexedVideo is a video known to the provider.
type IndexedVideo struct {
	ID        string `json:"_id"`
	HLSUrl    string `json:"hls_url,omitempty"`
	Duration  float64 `json:"duration"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	Metadata  struct {
		Filename string  `json:"filename"`
		Duration float64 `json:"duration"`
	} `json:"metadata"`
}

// UploadTask is the provider's handle for an indexing job.
type UploadTask struct {
	TaskID  string `json:"_id"`
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
}

// SearchHit is one raw semantic search result. Confidence arrives as either
// a string label or a number depending on the provider version, hence the
// RawMessage.
type SearchHit struct {
	Start      float64         `json:"start"`
	End        float64         `json:"end"`
	Confidence json.RawMessage `json:"confidence"`
	Metadata   []struct {
		Text string `json:"text"`
	} `json:"metadata"`
}

type searchResponse struct {
	Data []SearchHit `json:"data"`
}

// do issues one authenticated request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListIndexes returns all indexes visible to the configured API key.
func (c *Client) ListIndexes(ctx context.Context) ([]Index, error) {
	var resp struct {
		Data []Index `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/indexes", nil, &resp); err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	return resp.Data, nil
}

// CreateIndex creates a new provider index.
func (c *Client) CreateIndex(ctx context.Context, name string) (*Index, error) {
	body := map[string]any{
		"index_name":    name,
		"engine_models": []string{"visual", "conversation", "text_in_video"},
	}
	var idx Index
	if err := c.do(ctx, http.MethodPost, "/indexes", body, &idx); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &idx, nil
}

// ListVideos returns the videos in an index.
func (c *Client) ListVideos(ctx context.Context, indexID string) ([]IndexedVideo, error) {
	var resp struct {
		Data []IndexedVideo `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/indexes/"+indexID+"/videos", nil, &resp); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return resp.Data, nil
}

// GetVideo fetches one indexed video, including its streaming URL when the
// provider has finished transcoding.
func (c *Client) GetVideo(ctx context.Context, indexID, videoID string) (*IndexedVideo, error) {
	var v IndexedVideo
	if err := c.do(ctx, http.MethodGet, "/indexes/"+indexID+"/videos/"+videoID, nil, &v); err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

// CreateUploadTask registers a video URL for indexing and returns the task
// handle used for status polling.
func (c *Client) CreateUploadTask(ctx context.Context, indexID, videoURL string) (*UploadTask, error) {
	body := map[string]string{
		"index_id":  indexID,
		"video_url": videoURL,
	}
	var task UploadTask
	if err := c.do(ctx, http.MethodPost, "/tasks", body, &task); err != nil {
		return nil, fmt.Errorf("create upload task: %w", err)
	}
	return &task, nil
}

// GetTaskStatus polls an indexing task.
func (c *Client) GetTaskStatus(ctx context.Context, taskID string) (*UploadTask, error) {
	var task UploadTask
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskID, nil, &task); err != nil {
		return nil, fmt.Errorf("get task status: %w", err)
	}
	return &task, nil
}

// Search runs one semantic query against an index, optionally filtered to a
// single video. Results are cached in Redis for the configured TTL.
func (c *Client) Search(ctx context.Context, indexID, query, videoID string) ([]SearchHit, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordSearchLatency(time.Since(start))
		c.metrics.IncrementSearchRequests(outcome)
	}()

	cacheKey := db.SearchCacheKey(indexID, videoID, query)
	if c.cache != nil {
		if cached, err := c.cache.GetResponse(ctx, cacheKey); err == nil {
			c.metrics.IncrementCollaboratorCache("hit")
			var resp searchResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return resp.Data, nil
			}
		} else {
			c.metrics.IncrementCollaboratorCache("miss")
		}
	}

	body := map[string]any{
		"index_id":       indexID,
		"query_text":     query,
		"search_options": []string{"visual", "conversation", "text_in_video"},
	}
	if videoID != "" {
		body["filter"] = map[string]string{"id": videoID}
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/search", body, &resp); err != nil {
		outcome = "failure"
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if c.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := c.cache.SetResponse(ctx, cacheKey, payload, c.cacheTTL); err != nil {
				c.logger.Warn("cache search response", zap.Error(err))
			}
		}
	}
	return resp.Data, nil
}
