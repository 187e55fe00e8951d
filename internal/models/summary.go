package models

// InventorySummary rolls up per-moment quality metrics into fleet-level
// statistics for one video. Derived on every dashboard view, never persisted.
type InventorySummary struct {
	TotalSpots        int `json:"totalSpots"`
	PremiumSpots      int `json:"premiumSpots"`
	StandardSpots     int `json:"standardSpots"`
	BasicSpots        int `json:"basicSpots"`
	AverageEngagement int `json:"averageEngagement"`
	AverageAttention  int `json:"averageAttention"`
	EstimatedMinValue int `json:"estimatedMinValue"` // cents, sum of CPM minimums
	EstimatedMaxValue int `json:"estimatedMaxValue"` // cents, sum of CPM maximums
	AverageCpm        int `json:"averageCpm"`        // cents
}
