package models

// AdRecommendation is a product or service matched to a moment by the
// recommendation collaborator. At most three are retained per moment; the
// first successfully persisted one is marked Selected.
//
// Revenue fields are stored as integers: EstimatedCPM in whole currency
// units, EstimatedCTR in per-mille (percentage x10, so 2.5% -> 25) and
// ProjectedRevenue in cents. Integer representations keep the columns
// comparable and avoid float drift in aggregates.
type AdRecommendation struct {
	ID               string `json:"id"`
	MomentID         string `json:"momentId"`
	ProductName      string `json:"productName"`
	BrandName        string `json:"brandName"`
	Description      string `json:"description"`
	ProductURL       string `json:"productUrl"`
	Reasoning        string `json:"reasoning"`
	RelevanceScore   int    `json:"relevanceScore"` // 0-100
	EstimatedCPM     int    `json:"estimatedCPM,omitempty"`
	EstimatedCTR     int    `json:"estimatedCTR,omitempty"` // per-mille
	ProjectedRevenue int    `json:"projectedRevenue,omitempty"`
	Selected         bool   `json:"selected"`
}

// MaxRecommendationsPerMoment bounds how many collaborator suggestions are
// persisted for a single moment.
const MaxRecommendationsPerMoment = 3
