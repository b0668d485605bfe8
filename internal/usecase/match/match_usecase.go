package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"go.uber.org/zap"
)

// SharedPoapFinder lists the POAPs two users have in common.
type SharedPoapFinder interface {
	GetShared(ctx context.Context, userA, userB string) ([]domain.PoapRecord, error)
}

// IcebreakerGenerator writes conversation openers for a match.
type IcebreakerGenerator interface {
	GenerateIcebreakers(ctx context.Context, sender, recipient *domain.Profile, sharedEvents []string) ([]string, error)
}

// sharedLookupTimeout bounds the shared POAP lookup behind icebreakers.
const sharedLookupTimeout = 500 * time.Millisecond

type MatchUseCase struct {
	matchRepo      repository.MatchRepository
	profileRepo    repository.ProfileRepository
	connectionRepo repository.ConnectionRepository
	poaps          SharedPoapFinder
	icebreakers    IcebreakerGenerator
	sharedTimeout  time.Duration
	logger         *zap.Logger
}

// NewMatchUseCase builds the match manager. poaps and icebreakers may be nil.
func NewMatchUseCase(
	matchRepo repository.MatchRepository,
	profileRepo repository.ProfileRepository,
	connectionRepo repository.ConnectionRepository,
	poaps SharedPoapFinder,
	icebreakers IcebreakerGenerator,
	logger *zap.Logger,
) *MatchUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchUseCase{
		matchRepo:      matchRepo,
		profileRepo:    profileRepo,
		connectionRepo: connectionRepo,
		poaps:          poaps,
		icebreakers:    icebreakers,
		sharedTimeout:  sharedLookupTimeout,
		logger:         logger,
	}
}

// CreateMatch records a match for the unordered pair. It is idempotent: when
// the pair already has a match the stored row is returned with created=false
// and left unchanged. The mutual address-book entries are refreshed either
// way; their failure is logged and does not undo the match.
func (uc *MatchUseCase) CreateMatch(ctx context.Context, userA, userB string, sharedPoaps []string) (*domain.Match, bool, error) {
	if userA == "" || userB == "" {
		return nil, false, domain.ErrInvalidUserID
	}
	if userA == userB {
		return nil, false, domain.ErrCannotSwipeSelf
	}
	if domain.IsSyntheticUserID(userA) || domain.IsSyntheticUserID(userB) {
		return nil, false, domain.ErrSyntheticTarget
	}

	a, b := domain.CanonicalPair(userA, userB)
	match, created, err := uc.matchRepo.CreateIfAbsent(ctx, &domain.Match{
		UserAID:     a,
		UserBID:     b,
		SharedPoaps: sharedPoaps,
		Status:      domain.MatchStatusActive,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}

	if created {
		uc.logger.Info("Match created",
			zap.String("match_id", match.ID),
			zap.String("user_a_id", match.UserAID),
			zap.String("user_b_id", match.UserBID),
			zap.Int("shared_poaps", len(match.SharedPoaps)),
		)
	}

	uc.materializeConnections(ctx, match)
	return match, created, nil
}

func (uc *MatchUseCase) materializeConnections(ctx context.Context, match *domain.Match) {
	profiles, err := uc.profileRepo.GetByUserIDs(ctx, []string{match.UserAID, match.UserBID})
	if err != nil {
		uc.logger.Warn("Match connection snapshot failed",
			zap.String("match_id", match.ID), zap.Error(err))
		profiles = map[string]*domain.Profile{}
	}

	for _, dir := range [][2]string{{match.UserAID, match.UserBID}, {match.UserBID, match.UserAID}} {
		owner, other := dir[0], dir[1]
		conn := &domain.Connection{
			UserID:          owner,
			ConnectedUserID: other,
			ConnectionData:  profiles[other],
			ConnectionType:  domain.ConnectionSwipe,
		}
		if err := uc.connectionRepo.Upsert(ctx, conn); err != nil {
			uc.logger.Warn("Match connection write failed",
				zap.String("match_id", match.ID),
				zap.String("user_id", owner),
				zap.String("connected_user_id", other),
				zap.Error(err),
			)
		}
	}
}

// ListMatches returns the user's active matches, newest first, each with the
// counterpart's current profile.
func (uc *MatchUseCase) ListMatches(ctx context.Context, userID string, limit, offset int) ([]*domain.MatchWithProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	matches, err := uc.matchRepo.GetUserMatches(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	otherIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		if other, ok := m.GetOtherUserID(userID); ok {
			otherIDs = append(otherIDs, other)
		}
	}
	profiles, err := uc.profileRepo.GetByUserIDs(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load match profiles: %w", err)
	}

	out := make([]*domain.MatchWithProfile, 0, len(matches))
	for _, m := range matches {
		other, _ := m.GetOtherUserID(userID)
		out = append(out, &domain.MatchWithProfile{Match: m, OtherUser: profiles[other]})
	}
	return out, nil
}

// IcebreakerResponse carries openers for one match.
type IcebreakerResponse struct {
	MatchID      string   `json:"match_id"`
	Icebreakers  []string `json:"icebreakers"`
	SharedEvents []string `json:"shared_events"`
	Generated    bool     `json:"generated"`
}

// Icebreakers suggests openers userID could send in matchID. Model output is
// preferred; without a model, or when it fails, fixed templates are used.
func (uc *MatchUseCase) Icebreakers(ctx context.Context, userID, matchID string) (*IcebreakerResponse, error) {
	match, err := uc.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	otherID, ok := match.GetOtherUserID(userID)
	if !ok {
		return nil, domain.ErrForbidden
	}

	profiles, err := uc.profileRepo.GetByUserIDs(ctx, []string{userID, otherID})
	if err != nil {
		return nil, fmt.Errorf("failed to load match profiles: %w", err)
	}
	me, other := profiles[userID], profiles[otherID]
	if me == nil {
		me = &domain.Profile{UserID: userID}
	}
	if other == nil {
		other = &domain.Profile{UserID: otherID}
	}

	sharedEvents := uc.sharedEventNames(ctx, userID, otherID)
	resp := &IcebreakerResponse{MatchID: match.ID, SharedEvents: sharedEvents}

	if uc.icebreakers != nil {
		lines, err := uc.icebreakers.GenerateIcebreakers(ctx, me, other, sharedEvents)
		if err == nil && len(lines) > 0 {
			resp.Icebreakers = lines
			resp.Generated = true
			return resp, nil
		}
		uc.logger.Warn("Icebreaker generation failed, using templates",
			zap.String("match_id", match.ID), zap.Error(err))
	}

	resp.Icebreakers = templateIcebreakers(me, other, sharedEvents)
	return resp, nil
}

func (uc *MatchUseCase) sharedEventNames(ctx context.Context, userA, userB string) []string {
	names := []string{}
	if uc.poaps == nil {
		return names
	}
	lookupCtx, cancel := context.WithTimeout(ctx, uc.sharedTimeout)
	defer cancel()

	type result struct {
		records []domain.PoapRecord
		err     error
	}
	done := make(chan result, 1)
	go func() {
		records, err := uc.poaps.GetShared(lookupCtx, userA, userB)
		done <- result{records, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-lookupCtx.Done():
		res.err = lookupCtx.Err()
	}
	if res.err != nil {
		uc.logger.Debug("Shared POAP lookup failed", zap.Error(res.err))
		return names
	}
	for _, r := range res.records {
		name := r.EventName
		if name == "" {
			name = "event #" + r.EventID
		}
		names = append(names, name)
	}
	return names
}

func templateIcebreakers(me, other *domain.Profile, sharedEvents []string) []string {
	var out []string
	if len(sharedEvents) > 0 {
		out = append(out, fmt.Sprintf("Looks like we were both at %s. What was your highlight?", sharedEvents[0]))
	}
	if common := commonInterests(me.Interests, other.Interests); len(common) > 0 {
		out = append(out, fmt.Sprintf("I see you're into %s too. What are you working on there?", common[0]))
	}
	if other.Role != "" {
		out = append(out, fmt.Sprintf("How did you get started as a %s?", strings.ToLower(other.Role)))
	}
	if other.City != "" && strings.EqualFold(other.City, me.City) {
		out = append(out, fmt.Sprintf("Any favorite spots in %s for a coffee chat?", other.City))
	}
	out = append(out, "What brought you to this event?")
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func commonInterests(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	var out []string
	for _, s := range a {
		key := strings.ToLower(strings.TrimSpace(s))
		if _, ok := inB[key]; ok && key != "" {
			out = append(out, key)
		}
	}
	return out
}
