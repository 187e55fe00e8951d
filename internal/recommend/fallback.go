package recommend

import "github.com/momentmatch/momentmatch/internal/models"

// fallbackCatalog is the static per-category recommendation set used when
// the collaborator is unavailable or answers in an unusable shape. CTR is
// stored per-mille and revenue in cents, matching the persisted encoding.
var fallbackCatalog = map[string][]models.AdRecommendation{
	"educational": {
		{
			ProductName:      "Coursera Plus",
			BrandName:        "Coursera",
			Description:      "Access 7,000+ courses from top universities",
			ProductURL:       "https://www.coursera.org",
			Reasoning:        "Perfect for educational content viewers",
			RelevanceScore:   85,
			EstimatedCPM:     18,
			EstimatedCTR:     32,
			ProjectedRevenue: 576,
		},
		{
			ProductName:      "Skillshare Premium",
			BrandName:        "Skillshare",
			Description:      "Learn creative skills from industry professionals",
			ProductURL:       "https://www.skillshare.com",
			Reasoning:        "Appeals to viewers interested in skill development",
			RelevanceScore:   82,
			EstimatedCPM:     16,
			EstimatedCTR:     30,
			ProjectedRevenue: 480,
		},
	},
	"travel": {
		{
			ProductName:      "Airbnb Plus",
			BrandName:        "Airbnb",
			Description:      "Unique stays and experiences around the world",
			ProductURL:       "https://www.airbnb.com",
			Reasoning:        "Perfect for travel enthusiasts",
			RelevanceScore:   88,
			EstimatedCPM:     22,
			EstimatedCTR:     41,
			ProjectedRevenue: 902,
		},
		{
			ProductName:      "Booking.com Genius",
			BrandName:        "Booking.com",
			Description:      "Save 10-20% on accommodations worldwide",
			ProductURL:       "https://www.booking.com",
			Reasoning:        "Ideal for destination planning",
			RelevanceScore:   85,
			EstimatedCPM:     20,
			EstimatedCTR:     38,
			ProjectedRevenue: 760,
		},
	},
	"food": {
		{
			ProductName:      "HelloFresh Subscription",
			BrandName:        "HelloFresh",
			Description:      "Fresh ingredients and recipes delivered weekly",
			ProductURL:       "https://www.hellofresh.com",
			Reasoning:        "Perfect for cooking and food enthusiasts",
			RelevanceScore:   86,
			EstimatedCPM:     17,
			EstimatedCTR:     34,
			ProjectedRevenue: 578,
		},
		{
			ProductName:      "MasterClass Cooking",
			BrandName:        "MasterClass",
			Description:      "Learn from world-renowned chefs",
			ProductURL:       "https://www.masterclass.com",
			Reasoning:        "Elevate culinary skills",
			RelevanceScore:   83,
			EstimatedCPM:     19,
			EstimatedCTR:     31,
			ProjectedRevenue: 589,
		},
	},
	"fashion": {
		{
			ProductName:      "Stitch Fix",
			BrandName:        "Stitch Fix",
			Description:      "Personal styling service delivered to your door",
			ProductURL:       "https://www.stitchfix.com",
			Reasoning:        "Personalized fashion recommendations",
			RelevanceScore:   84,
			EstimatedCPM:     21,
			EstimatedCTR:     36,
			ProjectedRevenue: 756,
		},
	},
	"fitness": {
		{
			ProductName:      "Peloton Membership",
			BrandName:        "Peloton",
			Description:      "Live and on-demand fitness classes",
			ProductURL:       "https://www.onepeloton.com",
			Reasoning:        "Matches fitness and wellness content",
			RelevanceScore:   87,
			EstimatedCPM:     24,
			EstimatedCTR:     43,
			ProjectedRevenue: 1032,
		},
		{
			ProductName:      "Nike Training Club",
			BrandName:        "Nike",
			Description:      "Free workouts and training programs",
			ProductURL:       "https://www.nike.com/ntc-app",
			Reasoning:        "Perfect for active lifestyle",
			RelevanceScore:   85,
			EstimatedCPM:     22,
			EstimatedCTR:     40,
			ProjectedRevenue: 880,
		},
	},
	"technology": {
		{
			ProductName:      "Apple One Bundle",
			BrandName:        "Apple",
			Description:      "Music, TV+, Arcade, iCloud+ in one subscription",
			ProductURL:       "https://www.apple.com/apple-one",
			Reasoning:        "Tech enthusiast bundle",
			RelevanceScore:   86,
			EstimatedCPM:     25,
			EstimatedCTR:     39,
			ProjectedRevenue: 975,
		},
	},
	"productivity": {
		{
			ProductName:      "Notion Premium",
			BrandName:        "Notion",
			Description:      "All-in-one workspace for notes, tasks, and wikis",
			ProductURL:       "https://www.notion.so",
			Reasoning:        "Perfect for productivity optimization",
			RelevanceScore:   88,
			EstimatedCPM:     20,
			EstimatedCTR:     37,
			ProjectedRevenue: 740,
		},
	},
	"product": {
		{
			ProductName:      "Amazon Prime",
			BrandName:        "Amazon",
			Description:      "Fast shipping, streaming, and exclusive deals",
			ProductURL:       "https://www.amazon.com/prime",
			Reasoning:        "General product interest",
			RelevanceScore:   75,
			EstimatedCPM:     15,
			EstimatedCTR:     28,
			ProjectedRevenue: 420,
		},
	},
	"lifestyle": {
		{
			ProductName:      "Calm Premium",
			BrandName:        "Calm",
			Description:      "Meditation and sleep stories",
			ProductURL:       "https://www.calm.com",
			Reasoning:        "Wellness and lifestyle alignment",
			RelevanceScore:   82,
			EstimatedCPM:     18,
			EstimatedCTR:     33,
			ProjectedRevenue: 594,
		},
	},
	"entertainment": {
		{
			ProductName:      "Spotify Premium",
			BrandName:        "Spotify",
			Description:      "Ad-free music and podcasts",
			ProductURL:       "https://www.spotify.com",
			Reasoning:        "Entertainment content overlap",
			RelevanceScore:   80,
			EstimatedCPM:     16,
			EstimatedCTR:     31,
			ProjectedRevenue: 496,
		},
	},
}

// FallbackRecommendations returns the static catalog entries for a category,
// degrading to the generic "product" set for unknown categories.
func FallbackRecommendations(category string) []models.AdRecommendation {
	if recs, ok := fallbackCatalog[category]; ok {
		return cloneRecs(recs)
	}
	return cloneRecs(fallbackCatalog["product"])
}

// cloneRecs copies catalog entries so callers can set IDs and flags without
// mutating the shared catalog.
func cloneRecs(recs []models.AdRecommendation) []models.AdRecommendation {
	out := make([]models.AdRecommendation, len(recs))
	copy(out, recs)
	return out
}
