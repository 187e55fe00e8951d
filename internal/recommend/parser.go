package recommend

import (
	"encoding/json"
	"math"

	"github.com/momentmatch/momentmatch/internal/models"
)

// Defaults applied when the collaborator omits a field. Monetary values match
// the catalog's midpoints: 2.5% CTR and $15 CPM project $3.75 per placement.
const (
	defaultRelevance = 75
	defaultCPM       = 15.0
	defaultCTR       = 2.5
	defaultRevenue   = 3.75
)

// parseRecommendations accepts the three payload shapes the collaborator has
// been observed to produce: a bare array, an object wrapping a
// "recommendations" array, and a single recommendation object. Field names
// may be camelCase or snake_case. Returns ok=false when none of the shapes
// match.
func parseRecommendations(content string) ([]models.AdRecommendation, bool) {
	var items []map[string]json.RawMessage

	if err := json.Unmarshal([]byte(content), &items); err != nil {
		var wrapper struct {
			Recommendations []map[string]json.RawMessage `json:"recommendations"`
		}
		if err := json.Unmarshal([]byte(content), &wrapper); err == nil && wrapper.Recommendations != nil {
			items = wrapper.Recommendations
		} else {
			var single map[string]json.RawMessage
			if err := json.Unmarshal([]byte(content), &single); err != nil {
				return nil, false
			}
			if _, hasName := single["productName"]; !hasName {
				if _, hasName = single["product_name"]; !hasName {
					return nil, false
				}
			}
			items = []map[string]json.RawMessage{single}
		}
	}

	recs := make([]models.AdRecommendation, 0, len(items))
	for _, item := range items {
		recs = append(recs, mapRecommendation(item))
	}
	return recs, true
}

func mapRecommendation(item map[string]json.RawMessage) models.AdRecommendation {
	return models.AdRecommendation{
		ProductName:      stringField(item, "Unknown Product", "productName", "product_name"),
		BrandName:        stringField(item, "Unknown Brand", "brandName", "brand_name", "brand"),
		Description:      stringField(item, "", "description"),
		ProductURL:       stringField(item, "#", "productUrl", "product_url", "url"),
		Reasoning:        stringField(item, "Relevant to content", "reasoning"),
		RelevanceScore:   clampRelevance(numberField(item, defaultRelevance, "relevanceScore", "relevance_score")),
		EstimatedCPM:     int(math.Round(numberField(item, defaultCPM, "estimatedCPM", "estimated_cpm"))),
		EstimatedCTR:     int(math.Round(numberField(item, defaultCTR, "estimatedCTR", "estimated_ctr") * 10)),
		ProjectedRevenue: int(math.Round(numberField(item, defaultRevenue, "projectedRevenue", "projected_revenue") * 100)),
	}
}

func stringField(item map[string]json.RawMessage, fallback string, keys ...string) string {
	for _, key := range keys {
		raw, ok := item[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return fallback
}

func numberField(item map[string]json.RawMessage, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		raw, ok := item[key]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n != 0 {
			return n
		}
	}
	return fallback
}

func clampRelevance(n float64) int {
	v := int(math.Round(n))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
