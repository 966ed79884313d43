package repo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real database only when KEEL_TEST_DATABASE_URL is set.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("KEEL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("KEEL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(ctx, db))

	r := NewPostgres(db)
	login := "u-" + uuid.NewString()[:8]
	id, err := r.CreateUser(ctx, login, login+"@example.com", "hash")
	require.NoError(t, err)

	gotID, hash, err := r.GetByLogin(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "hash", hash)

	_, _, err = r.GetByLogin(ctx, "nobody-"+login)
	assert.ErrorIs(t, err, ErrNotFound)

	sid, err := r.SaveSnapshot(ctx, Snapshot{OwnerID: id, Name: "departure", Format: "yaml", Document: []byte("id: a\n")})
	require.NoError(t, err)
	s, err := r.GetSnapshot(ctx, id, sid)
	require.NoError(t, err)
	assert.Equal(t, "departure", s.Name)
	assert.Equal(t, []byte("id: a\n"), s.Document)

	list, err := r.ListSnapshots(ctx, id)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = r.GetSnapshot(ctx, id+1, sid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenAddsSSLMode(t *testing.T) {
	// an unreachable host fails on ping, after the DSN was accepted
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, "postgres://nobody@127.0.0.1:1/none")
	assert.Error(t, err)
}
