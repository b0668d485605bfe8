package repository

import (
	"context"

	"github.com/letsconnect/connect-backend/internal/domain"
)

type SwipeRepository interface {
	// RecordSwipe upserts the (user, target) row and, in the same atomic unit,
	// reads the reciprocal (target, user) row. Concurrent calls for the same
	// unordered pair are serialized, so of two reciprocal right swipes at
	// least the later one observes the other. reciprocal is nil when the
	// target has not swiped on the user.
	RecordSwipe(ctx context.Context, swipe *domain.Swipe) (reciprocal *domain.Swipe, err error)
	GetByUsers(ctx context.Context, userID, targetUserID string) (*domain.Swipe, error)
}
