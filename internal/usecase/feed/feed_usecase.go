package feed

import (
	"context"
	"errors"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"github.com/letsconnect/connect-backend/internal/usecase/ranking"
	"go.uber.org/zap"
)

const maxPageSize = 50

// PoapEnricher supplies shared POAP counts for a page of candidates.
type PoapEnricher interface {
	SharedCounts(ctx context.Context, viewerID string, candidates []*domain.Profile) (map[string]int, error)
}

type Config struct {
	MaxCandidates int
	EnrichTimeout time.Duration
}

type FeedUseCase struct {
	profileRepo repository.ProfileRepository
	ranker      *ranking.Ranker
	poaps       PoapEnricher
	samples     *SampleProvider
	cfg         Config
	logger      *zap.Logger
}

func NewFeedUseCase(
	profileRepo repository.ProfileRepository,
	ranker *ranking.Ranker,
	poaps PoapEnricher,
	samples *SampleProvider,
	cfg Config,
	logger *zap.Logger,
) *FeedUseCase {
	if cfg.MaxCandidates <= 0 || cfg.MaxCandidates > maxPageSize {
		cfg.MaxCandidates = maxPageSize
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = 800 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedUseCase{
		profileRepo: profileRepo,
		ranker:      ranker,
		poaps:       poaps,
		samples:     samples,
		cfg:         cfg,
		logger:      logger,
	}
}

// Filter narrows the candidate scan. City matches exactly.
type Filter struct {
	City   string `form:"city"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

// FeedResult is one page of the discovery feed.
type FeedResult struct {
	Candidates  []*domain.Candidate `json:"candidates"`
	IsSynthetic bool                `json:"is_synthetic"`
	NextOffset  int                 `json:"next_offset"`
	HasMore     bool                `json:"has_more"`
}

// GetCandidates returns a ranked page of discoverable profiles for viewerID,
// excluding the viewer and anyone the viewer already swiped on. An empty
// first page or an unreachable store yields the synthetic sample set instead
// of an error.
func (uc *FeedUseCase) GetCandidates(ctx context.Context, viewerID string, filter Filter) (*FeedResult, error) {
	if viewerID == "" {
		return nil, domain.ErrInvalidUserID
	}
	limit := filter.Limit
	if limit <= 0 || limit > uc.cfg.MaxCandidates {
		limit = uc.cfg.MaxCandidates
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	viewer, err := uc.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			uc.logger.Warn("Feed viewer lookup failed", zap.String("user_id", viewerID), zap.Error(err))
		}
		viewer = &domain.Profile{UserID: viewerID}
	}

	discoverable := true
	profiles, err := uc.profileRepo.Query(ctx, repository.ProfileQuery{
		Discoverable:    &discoverable,
		City:            filter.City,
		ExcludeUserID:   viewerID,
		ExcludeSwipedBy: viewerID,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		uc.logger.Warn("Feed store unavailable, serving samples", zap.String("user_id", viewerID), zap.Error(err))
		return uc.sampleResult(viewer, limit), nil
	}

	found := make([]*domain.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p == nil || p.UserID == viewerID || domain.IsSyntheticUserID(p.UserID) {
			continue
		}
		found = append(found, p)
	}

	if len(found) == 0 {
		if offset == 0 {
			uc.logger.Info("Feed empty, serving samples", zap.String("user_id", viewerID), zap.String("city", filter.City))
			return uc.sampleResult(viewer, limit), nil
		}
		return &FeedResult{Candidates: []*domain.Candidate{}, NextOffset: offset}, nil
	}

	candidates := uc.ranker.Rank(viewer, found, nil)
	uc.enrich(ctx, viewer, found, candidates)

	return &FeedResult{
		Candidates: candidates,
		NextOffset: offset + len(profiles),
		HasMore:    len(profiles) == limit,
	}, nil
}

// enrich merges shared POAP counts into the page and re-ranks it. Lookups that
// miss the deadline leave the count at zero.
func (uc *FeedUseCase) enrich(ctx context.Context, viewer *domain.Profile, profiles []*domain.Profile, candidates []*domain.Candidate) {
	if uc.poaps == nil || !viewer.HasWallet() {
		return
	}

	enrichCtx, cancel := context.WithTimeout(ctx, uc.cfg.EnrichTimeout)
	defer cancel()

	counts, err := uc.poaps.SharedCounts(enrichCtx, viewer.UserID, profiles)
	if err != nil {
		uc.logger.Warn("Feed POAP enrichment incomplete",
			zap.String("user_id", viewer.UserID),
			zap.Int("resolved", len(counts)),
			zap.Int("candidates", len(profiles)),
			zap.Error(err),
		)
	}
	if len(counts) == 0 {
		return
	}

	for _, c := range candidates {
		c.SharedPoapCount = counts[c.UserID]
	}
	uc.ranker.Rescore(viewer, candidates)
}

func (uc *FeedUseCase) sampleResult(viewer *domain.Profile, limit int) *FeedResult {
	return &FeedResult{
		Candidates:  uc.samples.Candidates(viewer, limit),
		IsSynthetic: true,
	}
}
