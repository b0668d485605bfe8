package memory

import (
	"context"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
)

type PoapRepository struct {
	s *Store
}

var _ repository.PoapRepository = (*PoapRepository)(nil)

func (r *PoapRepository) ListByWallets(_ context.Context, wallets []string, freshAfter time.Time) (map[string][]domain.PoapRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string][]domain.PoapRecord, len(wallets))
	for _, w := range wallets {
		syncedAt, ok := r.s.syncs[w]
		if !ok || syncedAt.Before(freshAfter) {
			continue
		}
		out[w] = append([]domain.PoapRecord{}, r.s.poaps[w]...)
	}
	return out, nil
}

func (r *PoapRepository) ReplaceForWallet(_ context.Context, wallet string, records []domain.PoapRecord, syncedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	stored := make([]domain.PoapRecord, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.EventID]; dup {
			continue
		}
		seen[rec.EventID] = struct{}{}
		rec.WalletAddress = wallet
		stored = append(stored, rec)
	}
	r.s.poaps[wallet] = stored
	r.s.syncs[wallet] = syncedAt
	return nil
}
