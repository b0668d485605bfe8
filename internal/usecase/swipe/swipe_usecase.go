package swipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/infrastructure/retry"
	"github.com/letsconnect/connect-backend/internal/repository"
	"go.uber.org/zap"
)

// SharedPoapFinder lists the POAPs two users have in common.
type SharedPoapFinder interface {
	GetShared(ctx context.Context, userA, userB string) ([]domain.PoapRecord, error)
}

// Matcher creates a match for a reciprocal pair.
type Matcher interface {
	CreateMatch(ctx context.Context, userA, userB string, sharedPoaps []string) (*domain.Match, bool, error)
}

type Config struct {
	// SnapshotTimeout bounds the shared POAP lookup stored with a swipe.
	SnapshotTimeout time.Duration
	Retry           retry.Policy
}

type SwipeUseCase struct {
	swipeRepo repository.SwipeRepository
	poaps     SharedPoapFinder
	matcher   Matcher
	cfg       Config
	logger    *zap.Logger
}

func NewSwipeUseCase(
	swipeRepo repository.SwipeRepository,
	poaps SharedPoapFinder,
	matcher Matcher,
	cfg Config,
	logger *zap.Logger,
) *SwipeUseCase {
	if cfg.SnapshotTimeout <= 0 {
		cfg.SnapshotTimeout = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeUseCase{
		swipeRepo: swipeRepo,
		poaps:     poaps,
		matcher:   matcher,
		cfg:       cfg,
		logger:    logger,
	}
}

// SwipeRequest represents a swipe action
type SwipeRequest struct {
	TargetUserID string           `json:"target_user_id" binding:"required"`
	Direction    domain.Direction `json:"direction" binding:"required,oneof=left right"`
}

// SwipeResponse represents swipe result. IsMatch is true only when this call
// created the match.
type SwipeResponse struct {
	Accepted bool          `json:"accepted"`
	IsMatch  bool          `json:"is_match"`
	Swipe    *domain.Swipe `json:"swipe"`
	Match    *domain.Match `json:"match,omitempty"`
}

// RecordSwipe stores the decision of userID about req.TargetUserID and, on a
// reciprocal right swipe, creates the match before returning. Re-sending the
// same decision is safe. Transient store failures are retried and then
// reported as domain.ErrStoreUnavailable.
func (uc *SwipeUseCase) RecordSwipe(ctx context.Context, userID string, req *SwipeRequest) (*SwipeResponse, error) {
	swipe := &domain.Swipe{
		UserID:       userID,
		TargetUserID: req.TargetUserID,
		Direction:    req.Direction,
	}
	if err := swipe.Validate(); err != nil {
		return nil, err
	}

	shared := uc.snapshotShared(ctx, userID, req.TargetUserID)
	swipe.SharedPoapCount = len(shared)

	var reciprocal *domain.Swipe
	err := retry.Do(ctx, uc.cfg.Retry, isPermanent, func() error {
		attempt := *swipe
		rec, err := uc.swipeRepo.RecordSwipe(ctx, &attempt)
		if err != nil {
			return err
		}
		*swipe = attempt
		reciprocal = rec
		return nil
	})
	if err != nil {
		return nil, uc.writeFailure("swipe", userID, req.TargetUserID, err)
	}

	resp := &SwipeResponse{Accepted: true, Swipe: swipe}
	if !swipe.IsRight() || !reciprocal.IsRight() {
		return resp, nil
	}

	eventIDs := domain.EventIDs(shared)
	err = retry.Do(ctx, uc.cfg.Retry, isPermanent, func() error {
		match, created, err := uc.matcher.CreateMatch(ctx, userID, req.TargetUserID, eventIDs)
		if err != nil {
			return err
		}
		resp.Match = match
		resp.IsMatch = created
		return nil
	})
	if err != nil {
		// The swipe is stored; re-sending it re-runs match detection.
		return nil, uc.writeFailure("match", userID, req.TargetUserID, err)
	}
	return resp, nil
}

// snapshotShared returns the shared POAPs at swipe time, or nothing when the
// lookup does not finish in time.
func (uc *SwipeUseCase) snapshotShared(ctx context.Context, userID, targetID string) []domain.PoapRecord {
	if uc.poaps == nil {
		return nil
	}
	snapCtx, cancel := context.WithTimeout(ctx, uc.cfg.SnapshotTimeout)
	defer cancel()

	shared, err := uc.poaps.GetShared(snapCtx, userID, targetID)
	if err != nil {
		uc.logger.Debug("Swipe POAP snapshot skipped",
			zap.String("user_id", userID),
			zap.String("target_user_id", targetID),
			zap.Error(err),
		)
		return nil
	}
	return shared
}

func (uc *SwipeUseCase) writeFailure(op, userID, targetID string, err error) error {
	if isPermanent(err) {
		return err
	}
	uc.logger.Error("Write failed after retries",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.String("target_user_id", targetID),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

var permanentErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidUserID,
	domain.ErrInvalidDirection,
	domain.ErrCannotSwipeSelf,
	domain.ErrSyntheticTarget,
	domain.ErrProfileNotFound,
	context.Canceled,
	context.DeadlineExceeded,
}

func isPermanent(err error) bool {
	for _, target := range permanentErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
