package repository

import (
	"context"

	"github.com/letsconnect/connect-backend/internal/domain"
)

type ConnectionRepository interface {
	// Upsert creates or refreshes the (owner, counterpart) entry. Existing
	// notes are kept when the incoming notes are empty.
	Upsert(ctx context.Context, conn *domain.Connection) error
	Get(ctx context.Context, userID, connectedUserID string) (*domain.Connection, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Connection, error)
	UpdateNotes(ctx context.Context, userID, connectedUserID, notes string) error
	Delete(ctx context.Context, userID, connectedUserID string) error
}
