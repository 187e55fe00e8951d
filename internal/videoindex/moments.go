package videoindex

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/momentmatch/momentmatch/internal/models"
)

// adMomentQueries is the fixed battery of topical queries used to surface
// candidate ad placement moments. Each query is issued independently; the
// union of results is deduplicated and scored by the caller.
var adMomentQueries = []string{
	"exciting moment or announcement",
	"product mention or recommendation",
	"beginning of new topic or segment",
	"emotional peak or highlight",
	"educational explanation or tutorial",
}

// SearchAdMoments runs the full query battery for one video and returns the
// raw candidate set, tagged with normalized confidence, a detected emotional
// tone and the coarse category of the originating query. A failed query is
// logged and skipped; the remaining queries still contribute candidates. If
// every query fails the provider is treated as unreachable and the last error
// is returned.
func (c *Client) SearchAdMoments(ctx context.Context, indexID, videoID string) ([]models.CandidateMoment, error) {
	var candidates []models.CandidateMoment
	var lastErr error
	failed := 0
	for _, query := range adMomentQueries {
		hits, err := c.Search(ctx, indexID, query, videoID)
		if err != nil {
			c.logger.Warn("ad moment query failed",
				zap.String("query", query),
				zap.Error(err))
			lastErr = err
			failed++
			continue
		}

		if len(hits) > c.hitsPerQuery {
			hits = hits[:c.hitsPerQuery]
		}
		for _, hit := range hits {
			// The tone comes from the hit's own transcript text. The query
			// only fills in the display text; matching emotion keywords in
			// the query itself would tag every hit of a query the same way.
			var metaText string
			if len(hit.Metadata) > 0 {
				metaText = hit.Metadata[0].Text
			}
			text := metaText
			if text == "" {
				text = query
			}
			candidates = append(candidates, models.CandidateMoment{
				Start:      hit.Start,
				End:        hit.End,
				Text:       text,
				Confidence: NormalizeConfidence(hit.Confidence),
				Emotion:    DetectEmotion(metaText),
				Category:   categorizeQuery(query),
			})
		}
	}
	if failed == len(adMomentQueries) {
		return nil, fmt.Errorf("all ad moment queries failed: %w", lastErr)
	}
	return candidates, nil
}

// Confidence labels used by older provider versions. Numeric confidences are
// passed through after rounding and clamping.
const (
	confidenceLow     = 50
	confidenceMedium  = 70
	confidenceHigh    = 90
	confidenceUnknown = 75
)

// NormalizeConfidence converts the provider's confidence signal, which may be
// a string label or a number, to an integer in [0,100]. Unknown shapes map to
// a middling default rather than failing the moment.
func NormalizeConfidence(raw json.RawMessage) int {
	if len(raw) == 0 {
		return confidenceUnknown
	}

	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		switch strings.ToLower(label) {
		case "low":
			return confidenceLow
		case "medium":
			return confidenceMedium
		case "high":
			return confidenceHigh
		default:
			return confidenceUnknown
		}
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		v := int(math.Round(num))
		if v < 0 {
			return 0
		}
		if v > 100 {
			return 100
		}
		return v
	}

	return confidenceUnknown
}

// DetectEmotion assigns a coarse emotional tone from the hit's description.
func DetectEmotion(text string) models.EmotionalTone {
	lower := strings.ToLower(text)
	for _, w := range []string{"excit", "amazing", "awesome", "great", "wonderful"} {
		if strings.Contains(lower, w) {
			return models.ToneExcited
		}
	}
	for _, w := range []string{"sad", "disappoint", "unfortunate"} {
		if strings.Contains(lower, w) {
			return models.ToneNegative
		}
	}
	for _, w := range []string{"happy", "joy", "fun", "love"} {
		if strings.Contains(lower, w) {
			return models.TonePositive
		}
	}
	return models.ToneNeutral
}

// categorizeQuery maps a battery query to the coarse category recorded on
// candidates it produces. Distinct from the keyword-derived category tags
// computed later from the moment text.
func categorizeQuery(query string) string {
	switch {
	case strings.Contains(query, "educational") || strings.Contains(query, "tutorial"):
		return "educational"
	case strings.Contains(query, "product"):
		return "product"
	case strings.Contains(query, "emotional"):
		return "lifestyle"
	case strings.Contains(query, "exciting"):
		return "entertainment"
	default:
		return "general"
	}
}
