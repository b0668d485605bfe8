package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
)

type MatchRepository struct {
	s *Store
}

var _ repository.MatchRepository = (*MatchRepository)(nil)

func copyMatch(m *domain.Match) *domain.Match {
	out := *m
	out.SharedPoaps = append([]string(nil), m.SharedPoaps...)
	return &out
}

func (r *MatchRepository) CreateIfAbsent(_ context.Context, match *domain.Match) (*domain.Match, bool, error) {
	a, b := domain.CanonicalPair(match.UserAID, match.UserBID)
	if a == "" || a == b {
		return nil, false, domain.ErrInvalidUserID
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pair{a, b}
	if existing, ok := r.s.matches[key]; ok {
		return copyMatch(existing), false, nil
	}
	if _, ok := r.s.profiles[a]; !ok {
		return nil, false, domain.ErrProfileNotFound
	}
	if _, ok := r.s.profiles[b]; !ok {
		return nil, false, domain.ErrProfileNotFound
	}

	m := copyMatch(match)
	m.UserAID, m.UserBID = a, b
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = domain.MatchStatusActive
	}
	if m.SharedPoaps == nil {
		m.SharedPoaps = []string{}
	}
	m.CreatedAt = r.s.now()
	r.s.matches[key] = m
	return copyMatch(m), true, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.matches {
		if m.ID == id {
			return copyMatch(m), nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

func (r *MatchRepository) GetByUsers(_ context.Context, user1ID, user2ID string) (*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, b := domain.CanonicalPair(user1ID, user2ID)
	m, ok := r.s.matches[pair{a, b}]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (r *MatchRepository) GetUserMatches(_ context.Context, userID string, limit, offset int) ([]*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Match
	for _, m := range r.s.matches {
		if m.HasUser(userID) && m.Status == domain.MatchStatusActive {
			out = append(out, copyMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
