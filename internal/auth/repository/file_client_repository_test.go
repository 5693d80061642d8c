package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/storage"
)

func newFileClientRepo(t *testing.T) *FileClientRepository {
	t.Helper()
	store := storage.NewFileStore[authDomain.Client](filepath.Join(t.TempDir(), "clients.json"))
	repo, err := NewFileClientRepository(store)
	require.NoError(t, err)
	return repo
}

func testClient(id string) *authDomain.Client {
	now := time.Now().UTC()
	return &authDomain.Client{
		ID:             id,
		CredentialHash: "hash-" + id,
		Description:    "test client",
		Status:         authDomain.ClientStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestFileClientRepository_CreateAndGet(t *testing.T) {
	repo := newFileClientRepo(t)
	ctx := context.Background()

	client := testClient("c1")
	require.NoError(t, repo.Create(ctx, client))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, client.CredentialHash, got.CredentialHash)
	assert.Equal(t, authDomain.ClientStatusActive, got.Status)
}

func TestFileClientRepository_Create_Duplicate(t *testing.T) {
	repo := newFileClientRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testClient("c1")))
	err := repo.Create(ctx, testClient("c1"))
	assert.ErrorIs(t, err, authDomain.ErrClientExists)
}

func TestFileClientRepository_Get_NotFound(t *testing.T) {
	repo := newFileClientRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
}

func TestFileClientRepository_Update(t *testing.T) {
	repo := newFileClientRepo(t)
	ctx := context.Background()

	client := testClient("c1")
	require.NoError(t, repo.Create(ctx, client))

	client.Status = authDomain.ClientStatusDisabled
	require.NoError(t, repo.Update(ctx, client))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, authDomain.ClientStatusDisabled, got.Status)
}

func TestFileClientRepository_Update_NotFound(t *testing.T) {
	repo := newFileClientRepo(t)

	err := repo.Update(context.Background(), testClient("missing"))
	assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
}

func TestFileClientRepository_List(t *testing.T) {
	repo := newFileClientRepo(t)
	ctx := context.Background()

	for _, id := range []string{"c3", "c1", "c2"} {
		require.NoError(t, repo.Create(ctx, testClient(id)))
	}

	clients, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, "c1", clients[0].ID)
	assert.Equal(t, "c2", clients[1].ID)
	assert.Equal(t, "c3", clients[2].ID)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c2", page[0].ID)
}

func TestFileClientRepository_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clients.json")
	ctx := context.Background()

	repo, err := NewFileClientRepository(storage.NewFileStore[authDomain.Client](path))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, testClient("c1")))

	// A fresh repository over the same file sees the persisted record
	reloaded, err := NewFileClientRepository(storage.NewFileStore[authDomain.Client](path))
	require.NoError(t, err)

	got, err := reloaded.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hash-c1", got.CredentialHash)
}
