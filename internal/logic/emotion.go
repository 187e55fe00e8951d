package logic

import "strings"

// Intensity buckets for emotional tone labels. Membership is tested by
// substring so compound labels ("very excited") still land in a bucket.
var (
	highIntensityTones   = []string{"excited", "thrilled", "ecstatic", "energetic", "passionate", "intense"}
	mediumIntensityTones = []string{"happy", "positive", "optimistic", "motivated", "engaged"}
	lowIntensityTones    = []string{"neutral", "calm", "relaxed", "casual"}
)

const (
	highIntensityScore    = 90
	mediumIntensityScore  = 70
	lowIntensityScore     = 50
	defaultIntensityScore = 60
)

// EmotionIntensity maps an emotional tone label to a 0-100 intensity score.
// The function is total: unrecognized labels return the default score rather
// than an error.
func EmotionIntensity(tone string) int {
	lower := strings.ToLower(tone)
	for _, t := range highIntensityTones {
		if strings.Contains(lower, t) {
			return highIntensityScore
		}
	}
	for _, t := range mediumIntensityTones {
		if strings.Contains(lower, t) {
			return mediumIntensityScore
		}
	}
	for _, t := range lowIntensityTones {
		if strings.Contains(lower, t) {
			return lowIntensityScore
		}
	}
	return defaultIntensityScore
}
