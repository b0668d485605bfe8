package memory

import (
	"context"
	"sort"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
)

type ProfileRepository struct {
	s *Store
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)

func (r *ProfileRepository) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return copyProfile(p), nil
}

func (r *ProfileRepository) GetByUserIDs(_ context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]*domain.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.s.profiles[id]; ok {
			out[id] = copyProfile(p)
		}
	}
	return out, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, profile *domain.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.profiles[profile.UserID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	r.s.profiles[profile.UserID] = copyProfile(profile)
	return nil
}

func (r *ProfileRepository) Query(_ context.Context, q repository.ProfileQuery) ([]*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*domain.Profile
	for _, p := range r.s.profiles {
		if q.Discoverable != nil && p.IsDiscoverable != *q.Discoverable {
			continue
		}
		if q.City != "" && p.City != q.City {
			continue
		}
		if q.ExcludeUserID != "" && p.UserID == q.ExcludeUserID {
			continue
		}
		if q.ExcludeSwipedBy != "" {
			if _, swiped := r.s.swipes[pair{q.ExcludeSwipedBy, p.UserID}]; swiped {
				continue
			}
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].UserID < matched[j].UserID
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []*domain.Profile{}, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]*domain.Profile, 0, len(matched))
	for _, p := range matched {
		out = append(out, copyProfile(p))
	}
	return out, nil
}
