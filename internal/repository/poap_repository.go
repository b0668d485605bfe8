package repository

import (
	"context"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
)

// PoapRepository is the persisted POAP cache, keyed by wallet.
type PoapRepository interface {
	// ListByWallets returns cached records for every wallet that was synced at
	// or after freshAfter. Wallets absent from the result are cache misses; a
	// present wallet with an empty slice holds no POAPs.
	ListByWallets(ctx context.Context, wallets []string, freshAfter time.Time) (map[string][]domain.PoapRecord, error)
	// ReplaceForWallet swaps the cached set for wallet and stamps its sync time.
	ReplaceForWallet(ctx context.Context, wallet string, records []domain.PoapRecord, syncedAt time.Time) error
}
