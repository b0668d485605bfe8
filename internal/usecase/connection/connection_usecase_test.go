package connection

import (
	"context"
	"testing"

	"github.com/letsconnect/connect-backend/internal/domain"
	"github.com/letsconnect/connect-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*memory.Store, *ConnectionUseCase) {
	t.Helper()
	s := memory.NewStore()
	for _, p := range []domain.Profile{
		{UserID: "alice", Name: "Alice"},
		{UserID: "bob", Name: "Bob", Role: "Designer"},
	} {
		p := p
		require.NoError(t, s.Profiles().Upsert(context.Background(), &p))
	}
	return s, NewConnectionUseCase(s.Connections(), s.Profiles(), zap.NewNop())
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)

	conn, err := uc.Add(ctx, "alice", &AddConnectionRequest{ConnectedUserID: "bob", ConnectionType: domain.ConnectionQR, Notes: "met at the booth"})
	require.NoError(t, err)
	assert.NotEmpty(t, conn.ID)
	require.NotNil(t, conn.ConnectionData)
	assert.Equal(t, "Designer", conn.ConnectionData.Role)

	again, err := uc.Add(ctx, "alice", &AddConnectionRequest{ConnectedUserID: "bob", ConnectionType: domain.ConnectionManual})
	require.NoError(t, err)
	assert.Equal(t, conn.ID, again.ID)
	assert.Equal(t, domain.ConnectionQR, again.ConnectionType)
	assert.Equal(t, "met at the booth", again.Notes)

	list, err := uc.List(ctx, "alice", 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = uc.List(ctx, "bob", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "entries are one-directional")
}

func TestAddRejects(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)

	cases := []struct {
		name string
		req  AddConnectionRequest
		want error
	}{
		{"self", AddConnectionRequest{ConnectedUserID: "alice", ConnectionType: domain.ConnectionQR}, domain.ErrCannotConnectSelf},
		{"sample", AddConnectionRequest{ConnectedUserID: "sample-1", ConnectionType: domain.ConnectionQR}, domain.ErrSyntheticTarget},
		{"swipe type", AddConnectionRequest{ConnectedUserID: "bob", ConnectionType: domain.ConnectionSwipe}, domain.ErrInvalidConnection},
		{"unknown type", AddConnectionRequest{ConnectedUserID: "bob", ConnectionType: "nfc"}, domain.ErrInvalidConnection},
		{"missing profile", AddConnectionRequest{ConnectedUserID: "ghost", ConnectionType: domain.ConnectionManual}, domain.ErrProfileNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Add(ctx, "alice", &tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateNotesAndRemove(t *testing.T) {
	ctx := context.Background()
	_, uc := setup(t)

	_, err := uc.UpdateNotes(ctx, "alice", "bob", &UpdateNotesRequest{Notes: "x"})
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)

	_, err = uc.Add(ctx, "alice", &AddConnectionRequest{ConnectedUserID: "bob", ConnectionType: domain.ConnectionManual})
	require.NoError(t, err)

	conn, err := uc.UpdateNotes(ctx, "alice", "bob", &UpdateNotesRequest{Notes: "follow up on grants"})
	require.NoError(t, err)
	assert.Equal(t, "follow up on grants", conn.Notes)

	require.NoError(t, uc.Remove(ctx, "alice", "bob"))
	assert.ErrorIs(t, uc.Remove(ctx, "alice", "bob"), domain.ErrConnectionNotFound)
}
