// Package memory holds in-process implementations of the repository
// interfaces. A single lock guards every table, so each call is atomic the way
// the matching Postgres statement or transaction is.
package memory

import (
	"sync"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
)

type pair struct{ a, b string }

// Store is the shared backing state for all in-memory repositories.
type Store struct {
	mu          sync.RWMutex
	profiles    map[string]*domain.Profile
	swipes      map[pair]*domain.Swipe
	matches     map[pair]*domain.Match
	connections map[pair]*domain.Connection
	poaps       map[string][]domain.PoapRecord
	syncs       map[string]time.Time

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		profiles:    make(map[string]*domain.Profile),
		swipes:      make(map[pair]*domain.Swipe),
		matches:     make(map[pair]*domain.Match),
		connections: make(map[pair]*domain.Connection),
		poaps:       make(map[string][]domain.PoapRecord),
		syncs:       make(map[string]time.Time),
		now:         time.Now,
	}
}

// SetClock overrides the timestamp source. Not safe to call concurrently with
// repository methods.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Profiles() *ProfileRepository       { return &ProfileRepository{s: s} }
func (s *Store) Swipes() *SwipeRepository           { return &SwipeRepository{s: s} }
func (s *Store) Matches() *MatchRepository          { return &MatchRepository{s: s} }
func (s *Store) Connections() *ConnectionRepository { return &ConnectionRepository{s: s} }
func (s *Store) Poaps() *PoapRepository             { return &PoapRepository{s: s} }

// MatchCount returns the number of stored matches.
func (s *Store) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func copyProfile(p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.Interests = append([]string(nil), p.Interests...)
	if p.WalletAddress != nil {
		w := *p.WalletAddress
		out.WalletAddress = &w
	}
	return &out
}
