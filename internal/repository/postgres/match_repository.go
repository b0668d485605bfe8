package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"github.com/lib/pq"
)

const matchColumns = `id, user_a_id, user_b_id, shared_poaps, status, created_at`

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.UserAID, &m.UserBID, pq.Array(&m.SharedPoaps), &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *matchRepository) CreateIfAbsent(ctx context.Context, match *domain.Match) (*domain.Match, bool, error) {
	// Ensure user_a_id < user_b_id for the pair constraint
	userA, userB := domain.CanonicalPair(match.UserAID, match.UserBID)
	if userA == userB || userA == "" {
		return nil, false, domain.ErrInvalidUserID
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.Status == "" {
		match.Status = domain.MatchStatusActive
	}
	if match.SharedPoaps == nil {
		match.SharedPoaps = []string{}
	}

	query := `
		INSERT INTO matches (id, user_a_id, user_b_id, shared_poaps, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_a_id, user_b_id) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		match.ID, userA, userB, pq.Array(match.SharedPoaps), match.Status,
	).Scan(&match.CreatedAt)
	switch {
	case err == nil:
		match.UserAID, match.UserBID = userA, userB
		return match, true, nil
	case errors.Is(err, sql.ErrNoRows), pqCode(err) == pqUniqueViolation:
		// Another request won the insert; the stored row is the match.
		existing, getErr := r.GetByUsers(ctx, userA, userB)
		if getErr != nil {
			return nil, false, fmt.Errorf("failed to read existing match: %w", getErr)
		}
		return existing, false, nil
	case pqCode(err) == pqForeignKeyViolation:
		return nil, false, domain.ErrProfileNotFound
	default:
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrMatchNotFound
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *matchRepository) GetByUsers(ctx context.Context, user1ID, user2ID string) (*domain.Match, error) {
	user1ID, user2ID = domain.CanonicalPair(user1ID, user2ID)

	query := `SELECT ` + matchColumns + ` FROM matches WHERE user_a_id = $1 AND user_b_id = $2`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, user1ID, user2ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *matchRepository) GetUserMatches(ctx context.Context, userID string, limit, offset int) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE (user_a_id = $1 OR user_b_id = $1) AND status = 'active'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
