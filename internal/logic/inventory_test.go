package logic

import (
	"testing"

	"github.com/momentmatch/momentmatch/internal/models"
)

func TestSummarizeInventoryEmptyInput(t *testing.T) {
	summary := SummarizeInventory(nil)
	if summary.TotalSpots != 0 {
		t.Errorf("expected 0 spots, got %d", summary.TotalSpots)
	}
	if summary.AverageEngagement != 0 || summary.AverageAttention != 0 || summary.AverageCpm != 0 {
		t.Errorf("empty input should yield zero means, got %+v", summary)
	}
}

func TestSummarizeInventory(t *testing.T) {
	spots := []models.SpotQuality{
		{
			EngagementScore: 90,
			AttentionScore:  92,
			PlacementTier:   models.TierPremium,
			EstimatedCpmMin: 2600,
			EstimatedCpmMax: 5200,
		},
		{
			EngagementScore: 70,
			AttentionScore:  68,
			PlacementTier:   models.TierStandard,
			EstimatedCpmMin: 700,
			EstimatedCpmMax: 1400,
		},
		{
			EngagementScore: 40,
			AttentionScore:  44,
			PlacementTier:   models.TierBasic,
			EstimatedCpmMin: 490,
			EstimatedCpmMax: 980,
		},
	}

	summary := SummarizeInventory(spots)

	if summary.TotalSpots != 3 {
		t.Errorf("total = %d, expected 3", summary.TotalSpots)
	}
	if summary.PremiumSpots != 1 || summary.StandardSpots != 1 || summary.BasicSpots != 1 {
		t.Errorf("tier counts = %d/%d/%d, expected 1/1/1",
			summary.PremiumSpots, summary.StandardSpots, summary.BasicSpots)
	}
	if summary.AverageEngagement != 67 {
		t.Errorf("avg engagement = %d, expected 67", summary.AverageEngagement)
	}
	if summary.AverageAttention != 68 {
		t.Errorf("avg attention = %d, expected 68", summary.AverageAttention)
	}
	if summary.EstimatedMinValue != 3790 || summary.EstimatedMaxValue != 7580 {
		t.Errorf("value range = %d-%d, expected 3790-7580",
			summary.EstimatedMinValue, summary.EstimatedMaxValue)
	}
	// (3790 + 7580) / 2 / 3 = 1895
	if summary.AverageCpm != 1895 {
		t.Errorf("avg cpm = %d, expected 1895", summary.AverageCpm)
	}
}
