package repository

import (
	"context"

	"github.com/letsconnect/connect-backend/internal/domain"
)

// ProfileQuery filters the discovery candidate scan. Results are ordered by
// most recently updated first.
type ProfileQuery struct {
	Discoverable    *bool
	City            string
	ExcludeUserID   string
	ExcludeSwipedBy string
	Limit           int
	Offset          int
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error)
	// Upsert creates the profile or updates every mutable column. user_id is
	// never rewritten.
	Upsert(ctx context.Context, profile *domain.Profile) error
	Query(ctx context.Context, q ProfileQuery) ([]*domain.Profile, error)
}
