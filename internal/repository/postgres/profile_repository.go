package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"github.com/lib/pq"
)

const profileColumns = `user_id, name, bio, city, role, interests, is_discoverable,
	location_sharing, wallet_address, farcaster_handle, twitter_handle,
	linkedin_handle, github_handle, telegram_handle, talent_handle,
	profile_image, created_at, updated_at`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var wallet sql.NullString
	err := row.Scan(
		&p.UserID, &p.Name, &p.Bio, &p.City, &p.Role, pq.Array(&p.Interests),
		&p.IsDiscoverable, &p.LocationSharing, &wallet,
		&p.FarcasterHandle, &p.TwitterHandle, &p.LinkedInHandle,
		&p.GitHubHandle, &p.TelegramHandle, &p.TalentHandle,
		&p.ProfileImage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if wallet.Valid && wallet.String != "" {
		w := wallet.String
		p.WalletAddress = &w
	}
	return &p, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	result := make(map[string]*domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result[p.UserID] = p
	}
	return result, rows.Err()
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (
			user_id, name, bio, city, role, interests, is_discoverable,
			location_sharing, wallet_address, farcaster_handle, twitter_handle,
			linkedin_handle, github_handle, telegram_handle, talent_handle, profile_image
		)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, '{}'::text[]), $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, bio = EXCLUDED.bio, city = EXCLUDED.city,
			role = EXCLUDED.role, interests = EXCLUDED.interests,
			is_discoverable = EXCLUDED.is_discoverable,
			location_sharing = EXCLUDED.location_sharing,
			wallet_address = EXCLUDED.wallet_address,
			farcaster_handle = EXCLUDED.farcaster_handle,
			twitter_handle = EXCLUDED.twitter_handle,
			linkedin_handle = EXCLUDED.linkedin_handle,
			github_handle = EXCLUDED.github_handle,
			telegram_handle = EXCLUDED.telegram_handle,
			talent_handle = EXCLUDED.talent_handle,
			profile_image = EXCLUDED.profile_image,
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		profile.UserID, profile.Name, profile.Bio, profile.City, profile.Role,
		pq.Array(profile.Interests), profile.IsDiscoverable, profile.LocationSharing,
		profile.WalletAddress, profile.FarcasterHandle, profile.TwitterHandle,
		profile.LinkedInHandle, profile.GitHubHandle, profile.TelegramHandle,
		profile.TalentHandle, profile.ProfileImage,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) Query(ctx context.Context, q repository.ProfileQuery) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if q.Discoverable != nil {
		query += fmt.Sprintf(" AND is_discoverable = $%d", argCount)
		args = append(args, *q.Discoverable)
		argCount++
	}

	if q.City != "" {
		query += fmt.Sprintf(" AND city = $%d", argCount)
		args = append(args, q.City)
		argCount++
	}

	if q.ExcludeUserID != "" {
		query += fmt.Sprintf(" AND user_id <> $%d", argCount)
		args = append(args, q.ExcludeUserID)
		argCount++
	}

	if q.ExcludeSwipedBy != "" {
		query += fmt.Sprintf(" AND NOT EXISTS (SELECT 1 FROM swipes s WHERE s.user_id = $%d AND s.target_user_id = p.user_id)", argCount)
		args = append(args, q.ExcludeSwipedBy)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY updated_at DESC, user_id ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
