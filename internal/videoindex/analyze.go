package videoindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/momentmatch/momentmatch/internal/models"
)

const brandMentionPrompt = `Analyze this video and identify all moments where brands, products, or ` +
	`services are mentioned or shown, plus any high-energy moments that would suit an ad placement. ` +
	`Return ONLY a JSON object of the form {"moments": [{"timestamp": "MM:SS", "description": "...", ` +
	`"type": "brand_mention" | "ad_opportunity"}]} with no other text.`

type analyzeResponse struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

type rawMention struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// AnalyzeForBrandMentions runs the whole-video free-text analysis and parses
// the returned moment list. The provider answers in prose containing a JSON
// payload, often inside a markdown code fence; anything unparseable yields an
// empty slice rather than an error so the rest of the analysis can proceed.
func (c *Client) AnalyzeForBrandMentions(ctx context.Context, videoID string) ([]models.BrandMention, error) {
	body := map[string]any{
		"video_id":    videoID,
		"prompt":      brandMentionPrompt,
		"temperature": 0.2,
	}
	var resp analyzeResponse
	if err := c.do(ctx, http.MethodPost, "/analyze", body, &resp); err != nil {
		return nil, fmt.Errorf("analyze video: %w", err)
	}
	return parseBrandMentions(videoID, resp.Data), nil
}

func parseBrandMentions(videoID, data string) []models.BrandMention {
	payload := stripCodeFence(data)

	var parsed struct {
		Moments []rawMention `json:"moments"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil
	}

	mentions := make([]models.BrandMention, 0, len(parsed.Moments))
	for _, m := range parsed.Moments {
		secs, ok := parseTimestamp(m.Timestamp)
		if !ok {
			continue
		}
		mtype := models.MentionOpportunity
		if m.Type == string(models.MentionBrand) {
			mtype = models.MentionBrand
		}
		mentions = append(mentions, models.BrandMention{
			VideoID:       videoID,
			Timestamp:     m.Timestamp,
			TimeInSeconds: secs,
			Description:   m.Description,
			Type:          mtype,
		})
	}
	return mentions
}

// stripCodeFence unwraps a ```json ... ``` fence if present, otherwise cuts
// the substring between the first '{' and the last '}'.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// parseTimestamp converts "MM:SS" (or "HH:MM:SS") to whole seconds.
func parseTimestamp(ts string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}
