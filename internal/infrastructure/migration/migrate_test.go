package migration

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	source, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer source.Close()

	version, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	up, _, err := source.ReadUp(version)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	require.NoError(t, err)
	up.Close()

	schema := string(body)
	for _, table := range []string{"profiles", "swipes", "matches", "connections", "poaps", "wallet_poap_syncs"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema, "CONSTRAINT matches_pair_unique UNIQUE (user_a_id, user_b_id)")
	assert.Contains(t, schema, "PRIMARY KEY (user_id, target_user_id)")

	down, _, err := source.ReadDown(version)
	require.NoError(t, err)
	down.Close()
}
