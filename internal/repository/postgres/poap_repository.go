package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"github.com/lib/pq"
)

type poapRepository struct {
	db *sqlx.DB
}

func NewPoapRepository(db *sqlx.DB) repository.PoapRepository {
	return &poapRepository{db: db}
}

func (r *poapRepository) ListByWallets(ctx context.Context, wallets []string, freshAfter time.Time) (map[string][]domain.PoapRecord, error) {
	result := make(map[string][]domain.PoapRecord, len(wallets))
	if len(wallets) == 0 {
		return result, nil
	}

	// Fresh sync markers first: a synced wallet with no rows still counts as a hit.
	var synced []string
	err := r.db.SelectContext(ctx, &synced, `
		SELECT wallet_address FROM wallet_poap_syncs
		WHERE wallet_address = ANY($1) AND synced_at >= $2
	`, pq.Array(wallets), freshAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to read poap sync markers: %w", err)
	}
	if len(synced) == 0 {
		return result, nil
	}
	for _, w := range synced {
		result[w] = []domain.PoapRecord{}
	}

	var records []domain.PoapRecord
	err = r.db.SelectContext(ctx, &records, `
		SELECT wallet_address, event_id, token_id, event_name, image_url, event_date
		FROM poaps WHERE wallet_address = ANY($1)
		ORDER BY wallet_address, event_date DESC NULLS LAST, event_id
	`, pq.Array(synced))
	if err != nil {
		return nil, fmt.Errorf("failed to read cached poaps: %w", err)
	}
	for _, rec := range records {
		result[rec.WalletAddress] = append(result[rec.WalletAddress], rec)
	}
	return result, nil
}

func (r *poapRepository) ReplaceForWallet(ctx context.Context, wallet string, records []domain.PoapRecord, syncedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin poap transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM poaps WHERE wallet_address = $1`, wallet); err != nil {
		return fmt.Errorf("failed to clear cached poaps: %w", err)
	}

	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poaps (wallet_address, event_id, token_id, event_name, image_url, event_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (wallet_address, event_id) DO NOTHING
		`, wallet, rec.EventID, rec.TokenID, rec.EventName, rec.ImageURL, rec.EventDate)
		if err != nil {
			return fmt.Errorf("failed to cache poap %s: %w", rec.EventID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_poap_syncs (wallet_address, synced_at) VALUES ($1, $2)
		ON CONFLICT (wallet_address) DO UPDATE SET synced_at = EXCLUDED.synced_at
	`, wallet, syncedAt)
	if err != nil {
		return fmt.Errorf("failed to stamp poap sync: %w", err)
	}

	return tx.Commit()
}
