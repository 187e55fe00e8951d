package logic

import (
	"sort"

	"github.com/momentmatch/momentmatch/internal/models"
)

// DeduplicateMoments resolves overlapping candidates from the unioned search
// results. Candidates are stable-sorted by start time and accepted greedily:
// a candidate is kept only if neither of its endpoints falls inside an
// already-accepted interval, with closed boundaries so touching endpoints
// count as overlap.
//
// Earliest start wins. The accept/reject decision ignores confidence and
// value; downstream consumers depend on the earliest-start bias, so this
// must not be replaced with a coverage-maximizing interval scheduler.
func DeduplicateMoments(moments []models.CandidateMoment) []models.CandidateMoment {
	sorted := make([]models.CandidateMoment, len(moments))
	copy(sorted, moments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	accepted := make([]models.CandidateMoment, 0, len(sorted))
	for _, m := range sorted {
		overlaps := false
		for _, a := range accepted {
			if (m.Start >= a.Start && m.Start <= a.End) ||
				(m.End >= a.Start && m.End <= a.End) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, m)
		}
	}
	return accepted
}
