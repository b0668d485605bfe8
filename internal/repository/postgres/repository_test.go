package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var profileRowColumns = []string{
	"user_id", "name", "bio", "city", "role", "interests", "is_discoverable",
	"location_sharing", "wallet_address", "farcaster_handle", "twitter_handle",
	"linkedin_handle", "github_handle", "telegram_handle", "talent_handle",
	"profile_image", "created_at", "updated_at",
}

func TestProfileRepository_Query(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(profileRowColumns).
		AddRow("bob", "Bob", "", "Berlin", "engineer", "{go,rust}", true, "city", nil, "", "", "", "", "", "", "", now, now).
		AddRow("carol", "Carol", "", "Berlin", "", "{}", true, "off", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "", "", "", "", "", "", "", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(
		`AND is_discoverable = $1 AND city = $2 AND user_id <> $3 AND NOT EXISTS (SELECT 1 FROM swipes s WHERE s.user_id = $4 AND s.target_user_id = p.user_id) ORDER BY updated_at DESC, user_id ASC LIMIT $5 OFFSET $6`,
	)).WithArgs(true, "Berlin", "alice", "alice", 50, 0).WillReturnRows(rows)

	yes := true
	got, err := repo.Query(context.Background(), repository.ProfileQuery{
		Discoverable:    &yes,
		City:            "Berlin",
		ExcludeUserID:   "alice",
		ExcludeSwipedBy: "alice",
		Limit:           50,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"go", "rust"}, got[0].Interests)
	assert.Nil(t, got[0].WalletAddress)
	assert.Equal(t, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", got[1].Wallet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetByUserIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery("FROM profiles WHERE user_id = \\$1").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_UpsertRejectsInvalid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	bad := "0x1234"
	err := repo.Upsert(context.Background(), &domain.Profile{UserID: "alice", WalletAddress: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidWallet)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// textArrayArg matches the driver value a pq array encodes to.
type textArrayArg string

func (a textArrayArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s == string(a)
}

func TestProfileRepository_Upsert(t *testing.T) {
	now := time.Now()

	t.Run("nil interests are stored as an empty array", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectQuery("INSERT INTO profiles").
			WithArgs("alice", "", "", "", "", textArrayArg("{}"), true, domain.LocationCity,
				sqlmock.AnyArg(), "", "", "", "", "", "", "").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		p := &domain.Profile{UserID: "alice", IsDiscoverable: true, LocationSharing: domain.LocationCity}
		require.NoError(t, repo.Upsert(context.Background(), p))
		assert.Equal(t, []string{}, p.Interests)
		assert.Equal(t, now, p.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("interests are passed as a text array", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectQuery("INSERT INTO profiles").
			WithArgs("bob", "", "", "", "", textArrayArg(`{"go","rust"}`), false, domain.LocationOff,
				sqlmock.AnyArg(), "", "", "", "", "", "", "").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		p := &domain.Profile{UserID: "bob", Interests: []string{"go", "rust"}}
		require.NoError(t, repo.Upsert(context.Background(), p))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSwipeRepository_RecordSwipe(t *testing.T) {
	now := time.Now()
	swipeCols := []string{"user_id", "target_user_id", "direction", "shared_poap_count", "created_at", "updated_at"}

	t.Run("returns reciprocal inside the locked transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSwipeRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
			WithArgs("alice:bob").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("INSERT INTO swipes").
			WithArgs("bob", "alice", domain.DirectionRight, 2).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery("FROM swipes WHERE user_id = \\$1 AND target_user_id = \\$2").
			WithArgs("alice", "bob").
			WillReturnRows(sqlmock.NewRows(swipeCols).AddRow("alice", "bob", "right", 2, now, now))
		mock.ExpectCommit()

		rec, err := repo.RecordSwipe(context.Background(), &domain.Swipe{
			UserID: "bob", TargetUserID: "alice", Direction: domain.DirectionRight, SharedPoapCount: 2,
		})
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.True(t, rec.IsRight())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no reciprocal", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSwipeRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("INSERT INTO swipes").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery("FROM swipes").WillReturnError(sql.ErrNoRows)
		mock.ExpectCommit()

		rec, err := repo.RecordSwipe(context.Background(), &domain.Swipe{
			UserID: "alice", TargetUserID: "bob", Direction: domain.DirectionLeft,
		})
		require.NoError(t, err)
		assert.Nil(t, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown target maps to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSwipeRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("INSERT INTO swipes").WillReturnError(&pq.Error{Code: pqForeignKeyViolation})
		mock.ExpectRollback()

		_, err := repo.RecordSwipe(context.Background(), &domain.Swipe{
			UserID: "alice", TargetUserID: "ghost", Direction: domain.DirectionRight,
		})
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("self swipe never reaches the database", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSwipeRepository(db)

		_, err := repo.RecordSwipe(context.Background(), &domain.Swipe{
			UserID: "alice", TargetUserID: "alice", Direction: domain.DirectionRight,
		})
		assert.ErrorIs(t, err, domain.ErrCannotSwipeSelf)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMatchRepository_CreateIfAbsent(t *testing.T) {
	now := time.Now()

	t.Run("inserts under canonical ordering", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMatchRepository(db)

		mock.ExpectQuery("INSERT INTO matches").
			WithArgs(sqlmock.AnyArg(), "alice", "zed", sqlmock.AnyArg(), domain.MatchStatusActive).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		m, created, err := repo.CreateIfAbsent(context.Background(), &domain.Match{UserAID: "zed", UserBID: "alice"})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "alice", m.UserAID)
		assert.Equal(t, "zed", m.UserBID)
		assert.NotEmpty(t, m.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict returns existing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMatchRepository(db)

		mock.ExpectQuery("INSERT INTO matches").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("FROM matches WHERE user_a_id = \\$1 AND user_b_id = \\$2").
			WithArgs("alice", "zed").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_a_id", "user_b_id", "shared_poaps", "status", "created_at"}).
				AddRow("6f1c1d2e-0000-4000-8000-000000000001", "alice", "zed", "{42}", "active", now))

		m, created, err := repo.CreateIfAbsent(context.Background(), &domain.Match{UserAID: "alice", UserBID: "zed"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "6f1c1d2e-0000-4000-8000-000000000001", m.ID)
		assert.Equal(t, []string{"42"}, m.SharedPoaps)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMatchRepository(db)

		_, err := repo.GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrMatchNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConnectionRepository(t *testing.T) {
	now := time.Now()

	t.Run("upsert returns stored fields", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewConnectionRepository(db)

		mock.ExpectQuery("INSERT INTO connections").
			WithArgs(sqlmock.AnyArg(), "alice", "bob", sqlmock.AnyArg(), "", domain.ConnectionSwipe).
			WillReturnRows(sqlmock.NewRows([]string{"id", "notes", "connection_type", "created_at", "updated_at"}).
				AddRow("c1", "met at ETHDenver", "qr", now, now))

		conn := &domain.Connection{UserID: "alice", ConnectedUserID: "bob", ConnectionType: domain.ConnectionSwipe, ConnectionData: &domain.Profile{UserID: "bob"}}
		require.NoError(t, repo.Upsert(context.Background(), conn))
		assert.Equal(t, "c1", conn.ID)
		assert.Equal(t, "met at ETHDenver", conn.Notes)
		assert.Equal(t, domain.ConnectionQR, conn.ConnectionType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing snapshot keeps the stored one", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewConnectionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(
			`connection_data = COALESCE(NULLIF(EXCLUDED.connection_data, 'null'::jsonb), connections.connection_data)`,
		)).
			WithArgs(sqlmock.AnyArg(), "alice", "bob", []byte("null"), "", domain.ConnectionSwipe).
			WillReturnRows(sqlmock.NewRows([]string{"id", "notes", "connection_type", "created_at", "updated_at"}).
				AddRow("c1", "", "swipe", now, now))

		conn := &domain.Connection{UserID: "alice", ConnectedUserID: "bob", ConnectionType: domain.ConnectionSwipe}
		require.NoError(t, repo.Upsert(context.Background(), conn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update notes on missing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewConnectionRepository(db)

		mock.ExpectExec("UPDATE connections SET notes").
			WithArgs("hi", "alice", "bob").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateNotes(context.Background(), "alice", "bob", "hi")
		assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("snapshot is decoded", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewConnectionRepository(db)

		mock.ExpectQuery("FROM connections WHERE user_id = \\$1 AND connected_user_id = \\$2").
			WithArgs("alice", "bob").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "connected_user_id", "connection_data", "notes", "connection_type", "created_at", "updated_at"}).
				AddRow("c1", "alice", "bob", []byte(`{"user_id":"bob","name":"Bob"}`), "", "swipe", now, now))

		conn, err := repo.Get(context.Background(), "alice", "bob")
		require.NoError(t, err)
		require.NotNil(t, conn.ConnectionData)
		assert.Equal(t, "Bob", conn.ConnectionData.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPoapRepository(t *testing.T) {
	now := time.Now()

	t.Run("synced wallet without rows is a hit", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPoapRepository(db)

		mock.ExpectQuery("FROM wallet_poap_syncs").
			WillReturnRows(sqlmock.NewRows([]string{"wallet_address"}).AddRow("0xa").AddRow("0xb"))
		mock.ExpectQuery("FROM poaps WHERE wallet_address = ANY").
			WillReturnRows(sqlmock.NewRows([]string{"wallet_address", "event_id", "token_id", "event_name", "image_url", "event_date"}).
				AddRow("0xb", "42", "t1", "ETHDenver", "", now))

		got, err := repo.ListByWallets(context.Background(), []string{"0xa", "0xb", "0xc"}, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Contains(t, got, "0xa")
		assert.Empty(t, got["0xa"])
		assert.Len(t, got["0xb"], 1)
		assert.NotContains(t, got, "0xc")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replace runs in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPoapRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM poaps").WithArgs("0xa").WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("INSERT INTO poaps").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO wallet_poap_syncs").WithArgs("0xa", now).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.ReplaceForWallet(context.Background(), "0xa", []domain.PoapRecord{{EventID: "42"}}, now)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
