package repository

import (
	"context"

	"github.com/letsconnect/connect-backend/internal/domain"
)

type MatchRepository interface {
	// CreateIfAbsent inserts a match for the unordered pair unless one exists.
	// created is false when the pair already had a match; the existing row is
	// returned unchanged.
	CreateIfAbsent(ctx context.Context, match *domain.Match) (result *domain.Match, created bool, err error)
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	GetByUsers(ctx context.Context, user1ID, user2ID string) (*domain.Match, error)
	GetUserMatches(ctx context.Context, userID string, limit, offset int) ([]*domain.Match, error)
}
