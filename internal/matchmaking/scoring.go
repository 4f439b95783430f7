package matchmaking

import (
	"sort"
	"strings"

	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

// Compatibility score weights. All terms are additive; missing fields
// simply contribute nothing.
const (
	baseScore        = 10 // participation credit for any candidate pair
	sameCityScore    = 30
	perInterestScore = 15
	perGoalScore     = 10
	closeAgeScore    = 20 // age difference of at most 5 years
	nearAgeScore     = 10 // age difference of at most 10 years
)

// Score computes the compatibility score for a pair of profiles and the
// set of interests they share. It is pure and symmetric: Score(a, b) and
// Score(b, a) return the same result. Comparison is case-insensitive and
// whitespace-trimmed throughout; the shared list covers interests only
// and is sorted for determinism.
func Score(a, b *profile.User) (int, []string) {
	score := baseScore

	if a.City != nil && b.City != nil {
		cityA := strings.ToLower(strings.TrimSpace(*a.City))
		cityB := strings.ToLower(strings.TrimSpace(*b.City))
		if cityA != "" && cityA == cityB {
			score += sameCityScore
		}
	}

	shared := intersect(a.Interests, b.Interests)
	score += len(shared) * perInterestScore

	score += len(intersect(a.Goals, b.Goals)) * perGoalScore

	if a.Age != nil && b.Age != nil {
		diff := *a.Age - *b.Age
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff <= 5:
			score += closeAgeScore
		case diff <= 10:
			score += nearAgeScore
		}
	}

	return score, shared
}

// intersect returns the sorted, normalized intersection of two string
// sets. Duplicates within either input collapse.
func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, item := range a {
		if key := normalize(item); key != "" {
			set[key] = true
		}
	}

	seen := make(map[string]bool, len(b))
	var out []string
	for _, item := range b {
		key := normalize(item)
		if key == "" || !set[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}

	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
