package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgreSQLClientRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLClientRepository(db)

	now := time.Now().UTC()
	client := &authDomain.Client{
		ID:             "c1",
		CredentialHash: "hash",
		Description:    "test",
		Status:         authDomain.ClientStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	mock.ExpectExec(`INSERT INTO clients`).
		WithArgs("c1", "hash", "test", authDomain.ClientStatusActive, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), client)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLClientRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLClientRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "credential_hash", "description", "status", "created_at", "updated_at"}).
		AddRow("c1", "hash", "test", "active", now, now)

	mock.ExpectQuery(`SELECT id, credential_hash, description, status, created_at, updated_at`).
		WithArgs("c1").
		WillReturnRows(rows)

	client, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", client.ID)
	assert.Equal(t, authDomain.ClientStatusActive, client.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLClientRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLClientRepository(db)

	mock.ExpectQuery(`SELECT id, credential_hash, description, status, created_at, updated_at`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
}

func TestPostgreSQLClientRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLClientRepository(db)

	now := time.Now().UTC()
	client := &authDomain.Client{
		ID:             "missing",
		CredentialHash: "hash",
		Status:         authDomain.ClientStatusActive,
		UpdatedAt:      now,
	}

	mock.ExpectExec(`UPDATE clients`).
		WithArgs("hash", "", authDomain.ClientStatusActive, now, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), client)
	assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
}

func TestPostgreSQLClientRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLClientRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "credential_hash", "description", "status", "created_at", "updated_at"}).
		AddRow("c1", "h1", "", "active", now, now).
		AddRow("c2", "h2", "", "disabled", now, now)

	mock.ExpectQuery(`SELECT id, credential_hash, description, status, created_at, updated_at`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	clients, err := repo.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "c1", clients[0].ID)
	assert.Equal(t, authDomain.ClientStatusDisabled, clients[1].Status)
}
