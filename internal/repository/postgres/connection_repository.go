package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
)

const connectionColumns = `id, user_id, connected_user_id, connection_data, notes, connection_type, created_at, updated_at`

type connectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) repository.ConnectionRepository {
	return &connectionRepository{db: db}
}

func scanConnection(row rowScanner) (*domain.Connection, error) {
	var c domain.Connection
	var data []byte
	err := row.Scan(&c.ID, &c.UserID, &c.ConnectedUserID, &data, &c.Notes, &c.ConnectionType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 && string(data) != "null" {
		var snapshot domain.Profile
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode connection snapshot: %w", err)
		}
		c.ConnectionData = &snapshot
	}
	return &c, nil
}

func (r *connectionRepository) Upsert(ctx context.Context, conn *domain.Connection) error {
	if err := conn.Validate(); err != nil {
		return err
	}
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	data, err := json.Marshal(conn.ConnectionData)
	if err != nil {
		return fmt.Errorf("failed to encode connection snapshot: %w", err)
	}

	query := `
		INSERT INTO connections (id, user_id, connected_user_id, connection_data, notes, connection_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, connected_user_id) DO UPDATE SET
			connection_data = COALESCE(NULLIF(EXCLUDED.connection_data, 'null'::jsonb), connections.connection_data),
			notes = CASE WHEN EXCLUDED.notes = '' THEN connections.notes ELSE EXCLUDED.notes END,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, notes, connection_type, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		conn.ID, conn.UserID, conn.ConnectedUserID, data, conn.Notes, conn.ConnectionType,
	).Scan(&conn.ID, &conn.Notes, &conn.ConnectionType, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return domain.ErrProfileNotFound
		}
		return fmt.Errorf("failed to upsert connection: %w", err)
	}
	return nil
}

func (r *connectionRepository) Get(ctx context.Context, userID, connectedUserID string) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_id = $1 AND connected_user_id = $2`
	conn, err := scanConnection(r.db.QueryRowContext(ctx, query, userID, connectedUserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, err
	}
	return conn, nil
}

func (r *connectionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Connection, error) {
	query := `
		SELECT ` + connectionColumns + ` FROM connections
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []*domain.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (r *connectionRepository) UpdateNotes(ctx context.Context, userID, connectedUserID, notes string) error {
	query := `
		UPDATE connections SET notes = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2 AND connected_user_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, notes, userID, connectedUserID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, userID, connectedUserID string) error {
	query := `DELETE FROM connections WHERE user_id = $1 AND connected_user_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, connectedUserID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConnectionNotFound
	}
	return nil
}
