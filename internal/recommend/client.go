// Package recommend is the client for the product recommendation
// collaborator, an LLM chat-completions endpoint that matches products and
// services to video moments. The collaborator is advisory: every failure
// degrades to a static per-category catalog so analysis never blocks on it.
package recommend

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/config"
	"github.com/momentmatch/momentmatch/internal/db"
	"github.com/momentmatch/momentmatch/internal/models"
	"github.com/momentmatch/momentmatch/internal/observability"
)

const systemPrompt = "You are an expert advertising strategist who matches products to video " +
	"content moments. Recommend real, current products and services based on your knowledge."

const userPromptFormat = `Based on the following video moment, recommend 3 relevant products or services that would make great ads:

Video Moment Context: %s
Emotional Tone: %s
Category: %s

For each recommendation, provide:
1. Product/Brand Name
2. Brief description
3. Why it's a good fit for this moment
4. Relevance score (0-100)
5. Estimated CPM (Cost per 1000 impressions) in USD
6. Estimated CTR (Click-through rate) as a percentage
7. Projected Revenue per placement in USD, roughly estimatedCPM * estimatedCTR * 10

IMPORTANT: Return your response as a JSON object with a "recommendations" array containing exactly 3 products.

Format your response exactly like this:
{
  "recommendations": [
    {
      "productName": "string",
      "brandName": "string",
      "description": "string",
      "reasoning": "string",
      "relevanceScore": number,
      "estimatedCPM": number,
      "estimatedCTR": number,
      "projectedRevenue": number
    }
  ]
}`

// Client calls the recommendation collaborator. Construction takes an
// immutable config snapshot; cache may be nil.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *db.RedisStore
	cacheTTL   time.Duration
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// NewClient constructs a recommendation client from configuration.
func NewClient(cfg config.Config, cache *db.RedisStore, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	return &Client{
		baseURL: cfg.RecommenderURL,
		apiKey:  cfg.RecommenderAPIKey,
		model:   cfg.RecommenderModel,
		httpClient: &http.Client{
			Timeout:   cfg.RecommenderTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cache:    cache,
		cacheTTL: cfg.ResponseCacheTTL,
		logger:   logger,
		metrics:  metrics,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FindRelevantProducts asks the collaborator for products matching one
// moment. It never fails: transport errors, non-2xx responses and
// unparseable payloads all fall back to the static catalog for the moment's
// category. Results are cached by (category, tone, context digest).
func (c *Client) FindRelevantProducts(ctx context.Context, momentContext string, tone models.EmotionalTone, category string) []models.AdRecommendation {
	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordRecommendationLatency(time.Since(start))
		c.metrics.IncrementRecommendationRequests(outcome)
	}()

	cacheKey := db.RecommendCacheKey(category, string(tone), contextDigest(momentContext))
	if c.cache != nil {
		if cached, err := c.cache.GetResponse(ctx, cacheKey); err == nil {
			c.metrics.IncrementCollaboratorCache("hit")
			var recs []models.AdRecommendation
			if err := json.Unmarshal(cached, &recs); err == nil && len(recs) > 0 {
				return recs
			}
		} else {
			c.metrics.IncrementCollaboratorCache("miss")
		}
	}

	content, err := c.complete(ctx, fmt.Sprintf(userPromptFormat, momentContext, tone, category))
	if err != nil {
		outcome = "fallback"
		c.logger.Warn("recommendation request failed, using fallback catalog",
			zap.String("category", category),
			zap.Error(err))
		return FallbackRecommendations(category)
	}

	recs, ok := parseRecommendations(content)
	if !ok || len(recs) == 0 {
		outcome = "fallback"
		c.logger.Warn("unrecognized recommendation payload, using fallback catalog",
			zap.String("category", category))
		return FallbackRecommendations(category)
	}

	if len(recs) > models.MaxRecommendationsPerMoment {
		recs = recs[:models.MaxRecommendationsPerMoment]
	}

	if c.cache != nil {
		if payload, err := json.Marshal(recs); err == nil {
			if err := c.cache.SetResponse(ctx, cacheKey, payload, c.cacheTTL); err != nil {
				c.logger.Warn("cache recommendations", zap.Error(err))
			}
		}
	}
	return recs
}

// complete issues one chat-completions call and returns the message content.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion")
	}
	return parsed.Choices[0].Message.Content, nil
}

func contextDigest(momentContext string) string {
	sum := sha256.Sum256([]byte(momentContext))
	return hex.EncodeToString(sum[:8])
}
