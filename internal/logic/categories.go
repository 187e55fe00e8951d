// Package logic contains the spot valuation engine: content category
// detection, emotion intensity estimation, quality scoring, CPM pricing,
// moment deduplication and inventory aggregation. Everything in this package
// is a pure function over its inputs; persistence and collaborator I/O live
// elsewhere.
package logic

import "strings"

// DefaultCategory is the sentinel tag used when no keyword matches. It maps
// to the default rate card band.
const DefaultCategory = "default"

// categoryKeyword pairs a content category with the substrings that signal it.
// Evaluation order follows declaration order so detected tag lists are stable.
type categoryKeyword struct {
	category string
	keywords []string
}

var categoryKeywords = []categoryKeyword{
	{"finance", []string{"money", "investment", "stock", "trading", "crypto", "banking", "financial"}},
	{"health", []string{"health", "medical", "wellness", "diet", "nutrition", "doctor"}},
	{"fitness", []string{"workout", "exercise", "gym", "training", "athlete", "running"}},
	{"technology", []string{"tech", "software", "app", "digital", "ai", "computer", "coding"}},
	{"gaming", []string{"game", "gaming", "esports", "video game", "console", "stream"}},
	{"sports", []string{"sports", "football", "basketball", "soccer", "championship", "team"}},
	{"lifestyle", []string{"lifestyle", "daily", "routine", "tips", "advice"}},
	{"fashion", []string{"fashion", "style", "clothing", "outfit", "trend"}},
	{"beauty", []string{"makeup", "beauty", "skincare", "cosmetics"}},
	{"food", []string{"food", "cooking", "recipe", "restaurant", "meal"}},
	{"travel", []string{"travel", "vacation", "trip", "destination", "tourist"}},
	{"automotive", []string{"car", "vehicle", "auto", "driving", "motorcycle"}},
	{"real_estate", []string{"real estate", "property", "house", "home buying"}},
	{"education", []string{"education", "learning", "tutorial", "course", "teach"}},
	{"business", []string{"business", "entrepreneur", "startup", "marketing", "sales"}},
	{"entertainment", []string{"entertainment", "movie", "music", "show", "concert"}},
}

// DetectCategories maps a free-text moment description to content category
// tags by case-insensitive substring matching. A moment may carry multiple
// tags. The result is never empty: when nothing matches, the single
// DefaultCategory tag is returned.
func DetectCategories(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, ck.category)
				break
			}
		}
	}
	if len(tags) == 0 {
		return []string{DefaultCategory}
	}
	return tags
}
