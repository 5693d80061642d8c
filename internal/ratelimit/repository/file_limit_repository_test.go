package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
	"github.com/allisson/gatekeeper/internal/storage"
)

func newFileLimitRepo(t *testing.T) *FileLimitRepository {
	t.Helper()
	store := storage.NewFileStore[ratelimitDomain.LimitConfig](filepath.Join(t.TempDir(), "rate_limits.json"))
	repo, err := NewFileLimitRepository(store)
	require.NoError(t, err)
	return repo
}

func testLimit(clientID, operation string, rpm, burst int) *ratelimitDomain.LimitConfig {
	return &ratelimitDomain.LimitConfig{
		ClientID:          clientID,
		Operation:         operation,
		RequestsPerMinute: rpm,
		Burst:             burst,
	}
}

func TestFileLimitRepository_UpsertAndGet(t *testing.T) {
	repo := newFileLimitRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testLimit("c1", "read", 120, 20)))

	config, err := repo.Get(ctx, "c1", "read")
	require.NoError(t, err)
	assert.Equal(t, 120, config.RequestsPerMinute)
	assert.Equal(t, 20, config.Burst)

	// Upsert with the same key replaces the config
	require.NoError(t, repo.Upsert(ctx, testLimit("c1", "read", 60, 10)))
	config, err = repo.Get(ctx, "c1", "read")
	require.NoError(t, err)
	assert.Equal(t, 60, config.RequestsPerMinute)
}

func TestFileLimitRepository_Get_NotFound(t *testing.T) {
	repo := newFileLimitRepo(t)

	_, err := repo.Get(context.Background(), "c1", "read")
	assert.ErrorIs(t, err, ratelimitDomain.ErrLimitNotFound)
}

func TestFileLimitRepository_Delete(t *testing.T) {
	repo := newFileLimitRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testLimit("c1", "read", 60, 10)))
	require.NoError(t, repo.Delete(ctx, "c1", "read"))

	_, err := repo.Get(ctx, "c1", "read")
	assert.ErrorIs(t, err, ratelimitDomain.ErrLimitNotFound)

	err = repo.Delete(ctx, "c1", "read")
	assert.ErrorIs(t, err, ratelimitDomain.ErrLimitNotFound)
}

func TestFileLimitRepository_List(t *testing.T) {
	repo := newFileLimitRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testLimit("c2", "read", 60, 10)))
	require.NoError(t, repo.Upsert(ctx, testLimit("c1", "write", 60, 10)))
	require.NoError(t, repo.Upsert(ctx, testLimit("c1", "read", 60, 10)))

	configs, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "c1", configs[0].ClientID)
	assert.Equal(t, "read", configs[0].Operation)
	assert.Equal(t, "write", configs[1].Operation)
	assert.Equal(t, "c2", configs[2].ClientID)
}

func TestFileLimitRepository_SurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate_limits.json")
	ctx := context.Background()

	repo, err := NewFileLimitRepository(storage.NewFileStore[ratelimitDomain.LimitConfig](path))
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, testLimit("c1", "read", 120, 20)))

	reloaded, err := NewFileLimitRepository(storage.NewFileStore[ratelimitDomain.LimitConfig](path))
	require.NoError(t, err)

	config, err := reloaded.Get(ctx, "c1", "read")
	require.NoError(t, err)
	assert.Equal(t, 120, config.RequestsPerMinute)
}
