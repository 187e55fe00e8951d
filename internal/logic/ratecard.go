package logic

import "math"

// CpmBand is an industry CPM floor/ceiling for one content vertical, in whole
// currency units. Bands satisfy Min <= Max by construction.
type CpmBand struct {
	Min int
	Max int
}

// rateCard holds industry-standard CPM ranges by content category. Categories
// absent from the table price at the default band.
var rateCard = map[string]CpmBand{
	"finance":       {20, 40},
	"insurance":     {18, 35},
	"health":        {12, 25},
	"fitness":       {10, 20},
	"technology":    {10, 22},
	"gaming":        {8, 15},
	"sports":        {10, 18},
	"lifestyle":     {8, 15},
	"fashion":       {9, 16},
	"beauty":        {10, 18},
	"food":          {7, 14},
	"travel":        {9, 17},
	"automotive":    {12, 24},
	"real_estate":   {15, 30},
	"education":     {8, 16},
	"business":      {12, 22},
	"entertainment": {6, 12},
	"news":          {5, 10},
	DefaultCategory: {7, 14},
}

// Quality multipliers by tier threshold. Premium spots get a 30% boost,
// basic spots a 30% reduction.
const (
	premiumThreshold   = 80
	standardThreshold  = 60
	premiumMultiplier  = 1.3
	standardMultiplier = 1.0
	basicMultiplier    = 0.7
)

// qualityMultiplier returns the CPM multiplier for the average of the two
// quality scores.
func qualityMultiplier(engagementScore, attentionScore int) float64 {
	quality := float64(engagementScore+attentionScore) / 2
	switch {
	case quality >= premiumThreshold:
		return premiumMultiplier
	case quality >= standardThreshold:
		return standardMultiplier
	default:
		return basicMultiplier
	}
}

// CPMRange prices a spot from its detected categories and quality scores.
// The most lucrative matching vertical wins: among all detected categories the
// band with the highest ceiling becomes the base, not an average. Both bounds
// are scaled by the quality multiplier and returned in cents, so min <= max
// always holds.
func CPMRange(categories []string, engagementScore, attentionScore int) (minCpm, maxCpm int) {
	base := rateCard[DefaultCategory]
	for _, cat := range categories {
		if band, ok := rateCard[cat]; ok && band.Max > base.Max {
			base = band
		}
	}

	// Scale to cents before rounding so the multiplier keeps sub-unit
	// precision (7 * 0.7 prices at 490, not 500).
	mult := qualityMultiplier(engagementScore, attentionScore)
	minCpm = int(math.Round(float64(base.Min) * mult * 100))
	maxCpm = int(math.Round(float64(base.Max) * mult * 100))
	return minCpm, maxCpm
}
