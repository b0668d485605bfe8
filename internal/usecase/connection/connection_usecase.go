package connection

import (
	"context"
	"fmt"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"go.uber.org/zap"
)

type ConnectionUseCase struct {
	connectionRepo repository.ConnectionRepository
	profileRepo    repository.ProfileRepository
	logger         *zap.Logger
}

func NewConnectionUseCase(
	connectionRepo repository.ConnectionRepository,
	profileRepo repository.ProfileRepository,
	logger *zap.Logger,
) *ConnectionUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionUseCase{
		connectionRepo: connectionRepo,
		profileRepo:    profileRepo,
		logger:         logger,
	}
}

// AddConnectionRequest represents a manual or QR-scanned address-book entry
type AddConnectionRequest struct {
	ConnectedUserID string                `json:"connected_user_id" binding:"required"`
	ConnectionType  domain.ConnectionType `json:"connection_type" binding:"required,oneof=qr manual"`
	Notes           string                `json:"notes" binding:"max=1000"`
}

// UpdateNotesRequest represents notes update request
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// List returns the caller's address book, newest first.
func (uc *ConnectionUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Connection, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	conns, err := uc.connectionRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}

// Add saves the counterpart with a snapshot of their current profile. Saving
// an existing entry refreshes the snapshot and keeps the original type.
func (uc *ConnectionUseCase) Add(ctx context.Context, userID string, req *AddConnectionRequest) (*domain.Connection, error) {
	if req.ConnectionType == domain.ConnectionSwipe {
		return nil, domain.ErrInvalidConnection
	}
	conn := &domain.Connection{
		UserID:          userID,
		ConnectedUserID: req.ConnectedUserID,
		Notes:           req.Notes,
		ConnectionType:  req.ConnectionType,
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	other, err := uc.profileRepo.GetByUserID(ctx, req.ConnectedUserID)
	if err != nil {
		return nil, err
	}
	conn.ConnectionData = other

	if err := uc.connectionRepo.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	uc.logger.Info("Connection saved",
		zap.String("user_id", userID),
		zap.String("connected_user_id", req.ConnectedUserID),
		zap.String("connection_type", string(conn.ConnectionType)),
	)
	return conn, nil
}

// UpdateNotes replaces the notes on an existing entry.
func (uc *ConnectionUseCase) UpdateNotes(ctx context.Context, userID, connectedUserID string, req *UpdateNotesRequest) (*domain.Connection, error) {
	if err := uc.connectionRepo.UpdateNotes(ctx, userID, connectedUserID, req.Notes); err != nil {
		return nil, err
	}
	return uc.connectionRepo.Get(ctx, userID, connectedUserID)
}

// Remove deletes the caller's entry. The counterpart's entry is untouched.
func (uc *ConnectionUseCase) Remove(ctx context.Context, userID, connectedUserID string) error {
	return uc.connectionRepo.Delete(ctx, userID, connectedUserID)
}
