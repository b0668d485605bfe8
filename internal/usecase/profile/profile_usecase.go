package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"github.com/letsconnect/connect-backend/internal/usecase/ranking"
	"go.uber.org/zap"
)

// SharedPoapCounter counts the POAPs two users have in common.
type SharedPoapCounter interface {
	GetSharedCount(ctx context.Context, userA, userB string) (int, error)
}

// sharedCountTimeout bounds the shared POAP lookup on a profile view.
const sharedCountTimeout = 500 * time.Millisecond

type ProfileUseCase struct {
	profileRepo   repository.ProfileRepository
	ranker        *ranking.Ranker
	poaps         SharedPoapCounter
	sharedTimeout time.Duration
	logger        *zap.Logger
}

// NewProfileUseCase wires the profile owner. poaps may be nil.
func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	ranker *ranking.Ranker,
	poaps SharedPoapCounter,
	logger *zap.Logger,
) *ProfileUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileUseCase{
		profileRepo:   profileRepo,
		ranker:        ranker,
		poaps:         poaps,
		sharedTimeout: sharedCountTimeout,
		logger:        logger,
	}
}

// UpdateProfileRequest represents profile update request. Absent fields are
// left unchanged.
type UpdateProfileRequest struct {
	Name            *string                 `json:"name" binding:"omitempty,max=100"`
	Bio             *string                 `json:"bio" binding:"omitempty,max=500"`
	City            *string                 `json:"city" binding:"omitempty,max=100"`
	Role            *string                 `json:"role" binding:"omitempty,max=100"`
	Interests       *[]string               `json:"interests" binding:"omitempty,max=20,dive,max=50"`
	IsDiscoverable  *bool                   `json:"is_discoverable"`
	LocationSharing *domain.LocationSharing `json:"location_sharing" binding:"omitempty,oneof=off city precise"`
	FarcasterHandle *string                 `json:"farcaster_handle" binding:"omitempty,max=100"`
	TwitterHandle   *string                 `json:"twitter_handle" binding:"omitempty,max=100"`
	LinkedInHandle  *string                 `json:"linkedin_handle" binding:"omitempty,max=100"`
	GitHubHandle    *string                 `json:"github_handle" binding:"omitempty,max=100"`
	TelegramHandle  *string                 `json:"telegram_handle" binding:"omitempty,max=100"`
	TalentHandle    *string                 `json:"talent_handle" binding:"omitempty,max=100"`
	ProfileImage    *string                 `json:"profile_image" binding:"omitempty,url,max=2048"`
}

// LinkWalletRequest represents wallet linking request
type LinkWalletRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// WalletResponse echoes the stored wallet and its display form.
type WalletResponse struct {
	WalletAddress   string `json:"wallet_address"`
	ChecksumAddress string `json:"checksum_address"`
}

// ProfileResponse represents another user's profile as seen by the viewer
type ProfileResponse struct {
	*domain.Profile
	CompatibilityScore int `json:"compatibility_score"`
	SharedPoapCount    int `json:"shared_poap_count"`
}

// GetMyProfile returns current user's profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return uc.profileRepo.GetByUserID(ctx, userID)
}

// GetProfile returns targetID's profile scored against viewerID. The city is
// hidden when the target does not share location.
func (uc *ProfileUseCase) GetProfile(ctx context.Context, viewerID, targetID string) (*ProfileResponse, error) {
	if targetID == "" || domain.IsSyntheticUserID(targetID) {
		return nil, domain.ErrProfileNotFound
	}
	profiles, err := uc.profileRepo.GetByUserIDs(ctx, []string{viewerID, targetID})
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	target, ok := profiles[targetID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if viewerID == targetID {
		return &ProfileResponse{Profile: target}, nil
	}

	shared := uc.sharedCount(ctx, viewerID, targetID)

	resp := &ProfileResponse{
		Profile:            target,
		CompatibilityScore: uc.ranker.Score(profiles[viewerID], target, shared),
		SharedPoapCount:    shared,
	}
	if target.LocationSharing == domain.LocationOff {
		target.City = ""
	}
	return resp, nil
}

// UpsertProfile creates the caller's profile on first use and applies a
// partial update afterwards.
func (uc *ProfileUseCase) UpsertProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		profile = &domain.Profile{
			UserID:          userID,
			IsDiscoverable:  true,
			LocationSharing: domain.LocationCity,
		}
	case err != nil:
		return nil, err
	}

	applyUpdate(profile, req)

	if err := uc.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

func applyUpdate(p *domain.Profile, req *UpdateProfileRequest) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, req.Name)
	set(&p.Bio, req.Bio)
	set(&p.City, req.City)
	set(&p.Role, req.Role)
	set(&p.FarcasterHandle, req.FarcasterHandle)
	set(&p.TwitterHandle, req.TwitterHandle)
	set(&p.LinkedInHandle, req.LinkedInHandle)
	set(&p.GitHubHandle, req.GitHubHandle)
	set(&p.TelegramHandle, req.TelegramHandle)
	set(&p.TalentHandle, req.TalentHandle)
	set(&p.ProfileImage, req.ProfileImage)
	if req.Interests != nil {
		p.Interests = *req.Interests
	}
	if req.IsDiscoverable != nil {
		p.IsDiscoverable = *req.IsDiscoverable
	}
	if req.LocationSharing != nil {
		p.LocationSharing = *req.LocationSharing
	}
}

// LinkWallet stores the caller's wallet in lowercase form and returns the
// EIP-55 form for display.
func (uc *ProfileUseCase) LinkWallet(ctx context.Context, userID string, req *LinkWalletRequest) (*WalletResponse, error) {
	wallet, err := domain.NormalizeWallet(req.WalletAddress)
	if err != nil {
		return nil, err
	}
	checksum, err := domain.ChecksumWallet(wallet)
	if err != nil {
		return nil, err
	}

	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.WalletAddress = &wallet
	if err := uc.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to link wallet: %w", err)
	}

	uc.logger.Info("Wallet linked",
		zap.String("user_id", userID),
		zap.String("wallet", wallet),
	)
	return &WalletResponse{WalletAddress: wallet, ChecksumAddress: checksum}, nil
}

// sharedCount returns zero when the lookup fails or does not finish in time.
func (uc *ProfileUseCase) sharedCount(ctx context.Context, viewerID, targetID string) int {
	if uc.poaps == nil {
		return 0
	}
	lookupCtx, cancel := context.WithTimeout(ctx, uc.sharedTimeout)
	defer cancel()

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := uc.poaps.GetSharedCount(lookupCtx, viewerID, targetID)
		done <- result{n, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-lookupCtx.Done():
		res.err = lookupCtx.Err()
	}
	if res.err != nil {
		uc.logger.Debug("Shared POAP count unavailable",
			zap.String("user_id", viewerID),
			zap.String("target_user_id", targetID),
			zap.Error(res.err),
		)
		return 0
	}
	return res.n
}
