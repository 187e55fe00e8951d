package logic

import (
	"math"

	"github.com/momentmatch/momentmatch/internal/models"
)

// score weighting constants. Engagement leans on emotional intensity,
// attention on detector confidence; the overall score blends both with the
// raw confidence.
const (
	engagementEmotionWeight    = 0.6
	engagementConfidenceWeight = 0.4
	attentionConfidenceWeight  = 0.7
	attentionEmotionWeight     = 0.3
	overallEngagementWeight    = 0.4
	overallAttentionWeight     = 0.4
	overallConfidenceWeight    = 0.2
)

// clampScore bounds a score to [0,100].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// PlacementTierFor buckets the average of the two quality scores.
func PlacementTierFor(engagementScore, attentionScore int) models.PlacementTier {
	avg := float64(engagementScore+attentionScore) / 2
	switch {
	case avg >= premiumThreshold:
		return models.TierPremium
	case avg >= standardThreshold:
		return models.TierStandard
	default:
		return models.TierBasic
	}
}

// OverallScore is the fixed weighted blend of engagement, attention and
// detector confidence.
func OverallScore(engagementScore, attentionScore, confidence int) int {
	return clampScore(int(math.Round(
		float64(engagementScore)*overallEngagementWeight +
			float64(attentionScore)*overallAttentionWeight +
			float64(confidence)*overallConfidenceWeight)))
}

// ScoreSpot computes the full quality metrics for one moment from its
// free-text context, emotional tone and detector confidence. It has no
// failure modes: out-of-range confidence is clamped to [0,100] and every
// tone/text input produces a result.
func ScoreSpot(context, emotionalTone string, confidence int) models.SpotQuality {
	confidence = clampScore(confidence)

	categoryTags := DetectCategories(context)
	emotionIntensity := EmotionIntensity(emotionalTone)

	engagement := clampScore(int(math.Round(
		float64(emotionIntensity)*engagementEmotionWeight +
			float64(confidence)*engagementConfidenceWeight)))
	attention := clampScore(int(math.Round(
		float64(confidence)*attentionConfidenceWeight +
			float64(emotionIntensity)*attentionEmotionWeight)))

	minCpm, maxCpm := CPMRange(categoryTags, engagement, attention)

	return models.SpotQuality{
		EngagementScore: engagement,
		AttentionScore:  attention,
		PlacementTier:   PlacementTierFor(engagement, attention),
		EstimatedCpmMin: minCpm,
		EstimatedCpmMax: maxCpm,
		CategoryTags:    categoryTags,
		OverallScore:    OverallScore(engagement, attention, confidence),
	}
}
