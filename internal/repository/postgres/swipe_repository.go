package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
)

type swipeRepository struct {
	db *sqlx.DB
}

func NewSwipeRepository(db *sqlx.DB) repository.SwipeRepository {
	return &swipeRepository{db: db}
}

func (r *swipeRepository) RecordSwipe(ctx context.Context, swipe *domain.Swipe) (*domain.Swipe, error) {
	if err := swipe.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin swipe transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Serialize both directions of the pair so the reciprocal read below sees
	// any committed swipe from the other side.
	a, b := domain.CanonicalPair(swipe.UserID, swipe.TargetUserID)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, a+":"+b); err != nil {
		return nil, fmt.Errorf("failed to lock swipe pair: %w", err)
	}

	upsert := `
		INSERT INTO swipes (user_id, target_user_id, direction, shared_poap_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, target_user_id) DO UPDATE SET
			direction = EXCLUDED.direction,
			shared_poap_count = EXCLUDED.shared_poap_count,
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, upsert,
		swipe.UserID, swipe.TargetUserID, swipe.Direction, swipe.SharedPoapCount,
	).Scan(&swipe.CreatedAt, &swipe.UpdatedAt)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation:
			return nil, domain.ErrProfileNotFound
		case pqCheckViolation:
			return nil, domain.ErrCannotSwipeSelf
		}
		return nil, fmt.Errorf("failed to upsert swipe: %w", err)
	}

	var reciprocal domain.Swipe
	err = tx.GetContext(ctx, &reciprocal, `
		SELECT user_id, target_user_id, direction, shared_poap_count, created_at, updated_at
		FROM swipes WHERE user_id = $1 AND target_user_id = $2
	`, swipe.TargetUserID, swipe.UserID)
	found := true
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to read reciprocal swipe: %w", err)
		}
		found = false
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swipe: %w", err)
	}

	if !found {
		return nil, nil
	}
	return &reciprocal, nil
}

func (r *swipeRepository) GetByUsers(ctx context.Context, userID, targetUserID string) (*domain.Swipe, error) {
	var swipe domain.Swipe
	query := `
		SELECT user_id, target_user_id, direction, shared_poap_count, created_at, updated_at
		FROM swipes WHERE user_id = $1 AND target_user_id = $2
	`
	err := r.db.GetContext(ctx, &swipe, query, userID, targetUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSwipeNotFound
		}
		return nil, err
	}
	return &swipe, nil
}
