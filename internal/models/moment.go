package models

// PlacementTier buckets a scored moment by expected ad performance. The tier
// drives the CPM multiplier applied by the pricer.
type PlacementTier string

const (
	TierPremium  PlacementTier = "premium"
	TierStandard PlacementTier = "standard"
	TierBasic    PlacementTier = "basic"
)

// Ordinal returns the tier's rank for monotonicity comparisons
// (basic < standard < premium).
func (t PlacementTier) Ordinal() int {
	switch t {
	case TierPremium:
		return 2
	case TierStandard:
		return 1
	default:
		return 0
	}
}

// EmotionalTone is the closed set of tone labels produced by the video
// intelligence provider. Unknown labels degrade to ToneNeutral.
type EmotionalTone string

const (
	ToneExcited   EmotionalTone = "excited"
	TonePositive  EmotionalTone = "positive"
	ToneNeutral   EmotionalTone = "neutral"
	ToneNegative  EmotionalTone = "negative"
	ToneMotivated EmotionalTone = "motivated"
)

// CandidateMoment is a raw time-stamped segment returned by semantic video
// search, before deduplication and scoring. Start and End are seconds on a
// single video's timeline.
type CandidateMoment struct {
	Start      float64       `json:"start"`
	End        float64       `json:"end"`
	Text       string        `json:"text"`
	Confidence int           `json:"confidence"` // 0-100
	Emotion    EmotionalTone `json:"emotion"`
	Category   string        `json:"category"` // coarse label from the originating query
}

// SpotQuality holds the derived quality metrics for one accepted moment.
// Computed once at analysis time and never mutated afterward.
type SpotQuality struct {
	EngagementScore int           `json:"engagementScore"` // 0-100
	AttentionScore  int           `json:"attentionScore"`  // 0-100
	PlacementTier   PlacementTier `json:"placementTier"`
	EstimatedCpmMin int           `json:"estimatedCpmMin"` // cents
	EstimatedCpmMax int           `json:"estimatedCpmMax"` // cents
	CategoryTags    []string      `json:"categoryTags"`
	OverallScore    int           `json:"overallScore"` // 0-100
}

// AdMoment is a persisted ad placement opportunity with its quality metrics
// and product recommendations.
type AdMoment struct {
	ID              string             `json:"id"`
	VideoID         string             `json:"videoId"`
	StartTime       int                `json:"startTime"` // seconds, floor of candidate start
	EndTime         int                `json:"endTime"`   // seconds, ceil of candidate end
	Context         string             `json:"context"`
	EmotionalTone   EmotionalTone      `json:"emotionalTone"`
	Category        string             `json:"category"`
	Confidence      int                `json:"confidence"`
	Quality         *SpotQuality       `json:"quality,omitempty"`
	Recommendations []AdRecommendation `json:"recommendations"`
}

// BrandMention is a whole-video analysis hit: either an explicit brand
// reference or a generic high-energy ad opportunity. Tracked separately from
// search-derived moments and never deduplicated against them.
type BrandMention struct {
	ID              string             `json:"id"`
	VideoID         string             `json:"videoId"`
	Timestamp       string             `json:"timestamp"` // "MM:SS"
	TimeInSeconds   int                `json:"timeInSeconds"`
	Description     string             `json:"description"`
	Type            MentionType        `json:"type"`
	Recommendations []AdRecommendation `json:"recommendations"`
}

// MentionType distinguishes explicit brand references from generic
// opportunities in whole-video analysis output.
type MentionType string

const (
	MentionBrand       MentionType = "brand_mention"
	MentionOpportunity MentionType = "ad_opportunity"
)
