package logic

import (
	"math"

	"github.com/momentmatch/momentmatch/internal/models"
)

// SummarizeInventory folds per-moment quality metrics into a fleet-level
// summary for one video: tier counts, mean engagement/attention and the total
// inventory value range. An empty spot list yields a zero summary; no
// division by zero.
func SummarizeInventory(spots []models.SpotQuality) models.InventorySummary {
	summary := models.InventorySummary{TotalSpots: len(spots)}

	var engagementSum, attentionSum int
	for _, s := range spots {
		switch s.PlacementTier {
		case models.TierPremium:
			summary.PremiumSpots++
		case models.TierStandard:
			summary.StandardSpots++
		default:
			summary.BasicSpots++
		}
		engagementSum += s.EngagementScore
		attentionSum += s.AttentionScore
		summary.EstimatedMinValue += s.EstimatedCpmMin
		summary.EstimatedMaxValue += s.EstimatedCpmMax
	}

	if len(spots) > 0 {
		n := float64(len(spots))
		summary.AverageEngagement = int(math.Round(float64(engagementSum) / n))
		summary.AverageAttention = int(math.Round(float64(attentionSum) / n))
		summary.AverageCpm = int(math.Round(
			float64(summary.EstimatedMinValue+summary.EstimatedMaxValue) / 2 / n))
	}
	return summary
}
