package feed

import (
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/usecase/ranking"
)

// sampleEpoch is a fixed timestamp so sample ordering never depends on the
// wall clock.
var sampleEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var sampleProfiles = []domain.Profile{
	{
		UserID:    domain.SyntheticUserIDPrefix + "1",
		Name:      "Ada (sample)",
		Bio:       "Protocol engineer exploring zero-knowledge tooling.",
		City:      "Berlin",
		Role:      "Engineer",
		Interests: []string{"zk", "rust", "cryptography"},
	},
	{
		UserID:    domain.SyntheticUserIDPrefix + "2",
		Name:      "Bruno (sample)",
		Bio:       "Designer building onboarding flows for wallets.",
		City:      "Lisbon",
		Role:      "Designer",
		Interests: []string{"design", "ux", "wallets"},
	},
	{
		UserID:    domain.SyntheticUserIDPrefix + "3",
		Name:      "Chen (sample)",
		Bio:       "DeFi researcher and weekend climber.",
		City:      "Singapore",
		Role:      "Researcher",
		Interests: []string{"defi", "research", "climbing"},
	},
	{
		UserID:    domain.SyntheticUserIDPrefix + "4",
		Name:      "Dana (sample)",
		Bio:       "Community lead running hackathons.",
		City:      "Denver",
		Role:      "Community",
		Interests: []string{"events", "dao", "governance"},
	},
	{
		UserID:    domain.SyntheticUserIDPrefix + "5",
		Name:      "Eli (sample)",
		Bio:       "Founder looking for a technical co-founder.",
		City:      "New York",
		Role:      "Founder",
		Interests: []string{"startups", "fundraising", "defi"},
	},
	{
		UserID:    domain.SyntheticUserIDPrefix + "6",
		Name:      "Farah (sample)",
		Bio:       "Solidity developer and public goods advocate.",
		City:      "Berlin",
		Role:      "Engineer",
		Interests: []string{"solidity", "public goods", "go"},
	},
}

// SampleProvider produces the fixed synthetic feed shown during cold start
// or when the profile store is unreachable. Its output is never persisted
// and every candidate carries IsSynthetic.
type SampleProvider struct {
	ranker *ranking.Ranker
}

func NewSampleProvider(ranker *ranking.Ranker) *SampleProvider {
	return &SampleProvider{ranker: ranker}
}

// Candidates returns up to limit sample candidates scored for viewer.
func (p *SampleProvider) Candidates(viewer *domain.Profile, limit int) []*domain.Candidate {
	profiles := make([]*domain.Profile, 0, len(sampleProfiles))
	for i := range sampleProfiles {
		sp := sampleProfiles[i]
		sp.Interests = append([]string(nil), sp.Interests...)
		sp.IsDiscoverable = true
		sp.LocationSharing = domain.LocationCity
		sp.CreatedAt = sampleEpoch
		sp.UpdatedAt = sampleEpoch
		profiles = append(profiles, &sp)
	}

	ranked := p.ranker.Rank(viewer, profiles, nil)
	for _, c := range ranked {
		c.IsSynthetic = true
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
