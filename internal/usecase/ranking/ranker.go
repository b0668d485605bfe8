package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/letsconnect/connect-backend/internal/domain"
)

const (
	InterestWeight = 60.0
	SameCityBonus  = 20.0
	SameRoleBonus  = 10.0
	PerPoapBonus   = 2.0
	MaxPoapBonus   = 10.0
	MinScore       = 0
	MaxScore       = 100
)

// Ranker scores candidate profiles for a viewer. It is pure: no I/O, and the
// same inputs always give the same score and order.
type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Score returns a 0..100 compatibility score of candidate for viewer.
// sharedPoaps is the number of events both wallets attended.
func (r *Ranker) Score(viewer, candidate *domain.Profile, sharedPoaps int) int {
	if viewer == nil {
		viewer = &domain.Profile{}
	}
	if candidate == nil {
		return MinScore
	}

	score := jaccard(normalizeInterests(viewer.Interests), normalizeInterests(candidate.Interests)) * InterestWeight

	if sameText(viewer.City, candidate.City) {
		score += SameCityBonus
	}
	if sameText(viewer.Role, candidate.Role) {
		score += SameRoleBonus
	}
	if sharedPoaps > 0 {
		score += math.Min(float64(sharedPoaps)*PerPoapBonus, MaxPoapBonus)
	}

	rounded := int(math.Floor(score + 0.5))
	if rounded < MinScore {
		return MinScore
	}
	if rounded > MaxScore {
		return MaxScore
	}
	return rounded
}

// Rank scores every candidate and orders them best first. Ties break on most
// recent update, then user id. shared maps user id to shared POAP count and
// may be nil.
func (r *Ranker) Rank(viewer *domain.Profile, candidates []*domain.Profile, shared map[string]int) []*domain.Candidate {
	out := make([]*domain.Candidate, 0, len(candidates))
	for _, p := range candidates {
		if p == nil {
			continue
		}
		n := shared[p.UserID]
		out = append(out, &domain.Candidate{
			Profile:            *p,
			CompatibilityScore: r.Score(viewer, p, n),
			SharedPoapCount:    n,
		})
	}
	Sort(out)
	return out
}

// Rescore recomputes scores in place after shared counts change, then re-sorts.
func (r *Ranker) Rescore(viewer *domain.Profile, candidates []*domain.Candidate) {
	for _, c := range candidates {
		c.CompatibilityScore = r.Score(viewer, &c.Profile, c.SharedPoapCount)
	}
	Sort(candidates)
}

// Sort orders by score DESC, updated_at DESC, user_id ASC.
func Sort(candidates []*domain.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.CompatibilityScore != b.CompatibilityScore {
			return a.CompatibilityScore > b.CompatibilityScore
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.UserID < b.UserID
	})
}

func normalizeInterests(in []string) map[string]struct{} {
	set := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func sameText(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
