package poap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source fetches live holdings for a wallet.
type Source interface {
	Scan(ctx context.Context, wallet string) ([]domain.PoapRecord, error)
}

// HotCache is an optional short-lived cache in front of the store.
type HotCache interface {
	Get(ctx context.Context, wallet string) ([]domain.PoapRecord, bool, error)
	Set(ctx context.Context, wallet string, records []domain.PoapRecord, ttl time.Duration) error
	Invalidate(ctx context.Context, wallet string) error
}

type Config struct {
	// CacheTTL is how long a synced wallet is served without a live fetch.
	CacheTTL time.Duration
	// FetchTimeout bounds one live fetch, independent of the caller.
	FetchTimeout time.Duration
	// MaxConcurrency caps live fetches started by one SharedCounts call.
	MaxConcurrency int
}

// Service resolves wallets and their POAPs: hot cache, then the persisted
// cache, then the live API. Live fetches for the same wallet are collapsed.
type Service struct {
	profiles repository.ProfileRepository
	store    repository.PoapRepository
	hot      HotCache
	source   Source
	cfg      Config
	logger   *zap.Logger

	flight singleflight.Group
	now    func() time.Time
}

// NewService wires the lookup chain. hot may be nil.
func NewService(
	profiles repository.ProfileRepository,
	store repository.PoapRepository,
	hot HotCache,
	source Source,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles: profiles,
		store:    store,
		hot:      hot,
		source:   source,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// ResolveWallet returns the wallet linked to userID, or "" when the user has
// none or does not exist.
func (s *Service) ResolveWallet(ctx context.Context, userID string) (string, error) {
	if userID == "" || domain.IsSyntheticUserID(userID) {
		return "", nil
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve wallet: %w", err)
	}
	return profile.Wallet(), nil
}

// ListByWallet returns the POAPs held by wallet. Upstream failures degrade to
// an empty set and are logged.
func (s *Service) ListByWallet(ctx context.Context, wallet string) ([]domain.PoapRecord, error) {
	if wallet == "" {
		return []domain.PoapRecord{}, nil
	}

	if records, ok := s.fromHot(ctx, wallet); ok {
		return records, nil
	}

	cached, err := s.store.ListByWallets(ctx, []string{wallet}, s.freshAfter())
	if err != nil {
		s.logger.Warn("POAP store read failed", zap.String("wallet", wallet), zap.Error(err))
	} else if records, ok := cached[wallet]; ok {
		s.toHot(ctx, wallet, records)
		return records, nil
	}

	records, err := s.fetch(ctx, wallet)
	if err != nil {
		s.logger.Warn("POAP live lookup failed", zap.String("wallet", wallet), zap.Error(err))
		return []domain.PoapRecord{}, nil
	}
	return records, nil
}

// GetShared returns the POAPs both users hold, by event id. Either user
// lacking a wallet yields an empty set.
func (s *Service) GetShared(ctx context.Context, userA, userB string) ([]domain.PoapRecord, error) {
	walletA, err := s.ResolveWallet(ctx, userA)
	if err != nil {
		return nil, err
	}
	walletB, err := s.ResolveWallet(ctx, userB)
	if err != nil {
		return nil, err
	}
	if walletA == "" || walletB == "" {
		return []domain.PoapRecord{}, nil
	}

	setA, err := s.ListByWallet(ctx, walletA)
	if err != nil {
		return nil, err
	}
	setB, err := s.ListByWallet(ctx, walletB)
	if err != nil {
		return nil, err
	}
	shared := domain.SharedPoaps(setA, setB)
	if shared == nil {
		shared = []domain.PoapRecord{}
	}
	return shared, nil
}

// GetSharedCount is len(GetShared).
func (s *Service) GetSharedCount(ctx context.Context, userA, userB string) (int, error) {
	shared, err := s.GetShared(ctx, userA, userB)
	if err != nil {
		return 0, err
	}
	return len(shared), nil
}

// SharedCounts returns shared POAP counts between viewerID and each candidate,
// keyed by candidate user id. Cached wallets are read in one query; misses are
// fetched concurrently until ctx is done. Candidates whose lookup did not
// finish are absent from the result.
func (s *Service) SharedCounts(ctx context.Context, viewerID string, candidates []*domain.Profile) (map[string]int, error) {
	counts := make(map[string]int, len(candidates))

	viewerWallet, err := s.ResolveWallet(ctx, viewerID)
	if err != nil || viewerWallet == "" {
		return counts, err
	}
	viewerSet, err := s.ListByWallet(ctx, viewerWallet)
	if err != nil || len(viewerSet) == 0 {
		return counts, err
	}

	byWallet := make(map[string][]string)
	var wallets []string
	for _, c := range candidates {
		w := c.Wallet()
		if w == "" {
			continue
		}
		if _, seen := byWallet[w]; !seen {
			wallets = append(wallets, w)
		}
		byWallet[w] = append(byWallet[w], c.UserID)
	}
	if len(wallets) == 0 {
		return counts, nil
	}

	var mu sync.Mutex
	record := func(wallet string, records []domain.PoapRecord) {
		n := len(domain.SharedPoaps(viewerSet, records))
		mu.Lock()
		defer mu.Unlock()
		for _, id := range byWallet[wallet] {
			counts[id] = n
		}
	}

	cached, err := s.store.ListByWallets(ctx, wallets, s.freshAfter())
	if err != nil {
		s.logger.Warn("POAP batch store read failed", zap.Int("wallets", len(wallets)), zap.Error(err))
		cached = nil
	}

	var misses []string
	for _, w := range wallets {
		if records, ok := cached[w]; ok {
			record(w, records)
			continue
		}
		misses = append(misses, w)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for _, w := range misses {
		if gctx.Err() != nil {
			break
		}
		w := w
		g.Go(func() error {
			records, err := s.fetch(gctx, w)
			if err != nil {
				// Unfinished or failed lookups stay absent; the feed treats
				// them as zero.
				s.logger.Debug("POAP lookup skipped", zap.String("wallet", w), zap.Error(err))
				return nil
			}
			record(w, records)
			return nil
		})
	}
	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out, ctx.Err()
}

// SyncWallet forces a live refresh of the user's wallet.
func (s *Service) SyncWallet(ctx context.Context, userID string) ([]domain.PoapRecord, error) {
	wallet, err := s.ResolveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == "" {
		return nil, domain.ErrWalletNotLinked
	}
	s.dropHot(ctx, wallet)
	records, err := s.fetch(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return records, nil
}

// ListForUser returns the POAPs of the user's linked wallet.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.PoapRecord, error) {
	wallet, err := s.ResolveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ListByWallet(ctx, wallet)
}

// fetch runs one live lookup per wallet at a time and persists the result.
// The lookup outlives a cancelled caller so that other waiters and the cache
// still benefit from it.
func (s *Service) fetch(ctx context.Context, wallet string) ([]domain.PoapRecord, error) {
	ch := s.flight.DoChan(wallet, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
		defer cancel()

		records, err := s.source.Scan(fetchCtx, wallet)
		if err != nil {
			return nil, err
		}
		if records == nil {
			records = []domain.PoapRecord{}
		}
		if err := s.store.ReplaceForWallet(fetchCtx, wallet, records, s.now()); err != nil {
			s.logger.Warn("POAP cache write failed", zap.String("wallet", wallet), zap.Error(err))
		}
		s.toHot(fetchCtx, wallet, records)
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.PoapRecord), nil
	}
}

func (s *Service) freshAfter() time.Time {
	return s.now().Add(-s.cfg.CacheTTL)
}

func (s *Service) fromHot(ctx context.Context, wallet string) ([]domain.PoapRecord, bool) {
	if s.hot == nil {
		return nil, false
	}
	records, ok, err := s.hot.Get(ctx, wallet)
	if err != nil {
		s.logger.Debug("POAP hot cache read failed", zap.String("wallet", wallet), zap.Error(err))
		return nil, false
	}
	return records, ok
}

func (s *Service) toHot(ctx context.Context, wallet string, records []domain.PoapRecord) {
	if s.hot == nil {
		return
	}
	if err := s.hot.Set(ctx, wallet, records, s.cfg.CacheTTL); err != nil {
		s.logger.Debug("POAP hot cache write failed", zap.String("wallet", wallet), zap.Error(err))
	}
}

func (s *Service) dropHot(ctx context.Context, wallet string) {
	if s.hot == nil {
		return
	}
	if err := s.hot.Invalidate(ctx, wallet); err != nil {
		s.logger.Debug("POAP hot cache invalidate failed", zap.String("wallet", wallet), zap.Error(err))
	}
}
