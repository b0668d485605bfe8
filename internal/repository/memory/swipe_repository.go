package memory

import (
	"context"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
)

type SwipeRepository struct {
	s *Store
}

var _ repository.SwipeRepository = (*SwipeRepository)(nil)

func (r *SwipeRepository) RecordSwipe(_ context.Context, swipe *domain.Swipe) (*domain.Swipe, error) {
	if err := swipe.Validate(); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[swipe.UserID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	if _, ok := r.s.profiles[swipe.TargetUserID]; !ok {
		return nil, domain.ErrProfileNotFound
	}

	now := r.s.now()
	key := pair{swipe.UserID, swipe.TargetUserID}
	if existing, ok := r.s.swipes[key]; ok {
		swipe.CreatedAt = existing.CreatedAt
	} else {
		swipe.CreatedAt = now
	}
	swipe.UpdatedAt = now
	stored := *swipe
	r.s.swipes[key] = &stored

	reciprocal, ok := r.s.swipes[pair{swipe.TargetUserID, swipe.UserID}]
	if !ok {
		return nil, nil
	}
	out := *reciprocal
	return &out, nil
}

func (r *SwipeRepository) GetByUsers(_ context.Context, userID, targetUserID string) (*domain.Swipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.swipes[pair{userID, targetUserID}]
	if !ok {
		return nil, domain.ErrSwipeNotFound
	}
	out := *s
	return &out, nil
}
