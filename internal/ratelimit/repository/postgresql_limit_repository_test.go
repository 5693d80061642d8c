package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgreSQLLimitRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLLimitRepository(db)

	mock.ExpectExec(`INSERT INTO rate_limits`).
		WithArgs("c1", "read", 120, 20).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), testLimit("c1", "read", 120, 20))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLLimitRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLLimitRepository(db)

	rows := sqlmock.NewRows([]string{"client_id", "operation", "requests_per_minute", "burst"}).
		AddRow("c1", "read", 120, 20)

	mock.ExpectQuery(`SELECT client_id, operation, requests_per_minute, burst`).
		WithArgs("c1", "read").
		WillReturnRows(rows)

	config, err := repo.Get(context.Background(), "c1", "read")
	require.NoError(t, err)
	assert.Equal(t, 120, config.RequestsPerMinute)
}

func TestPostgreSQLLimitRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLLimitRepository(db)

	mock.ExpectQuery(`SELECT client_id, operation, requests_per_minute, burst`).
		WithArgs("c1", "read").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "c1", "read")
	assert.ErrorIs(t, err, ratelimitDomain.ErrLimitNotFound)
}

func TestPostgreSQLLimitRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLLimitRepository(db)

	mock.ExpectExec(`DELETE FROM rate_limits`).
		WithArgs("c1", "read").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "c1", "read")
	assert.ErrorIs(t, err, ratelimitDomain.ErrLimitNotFound)
}

func TestPostgreSQLLimitRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLLimitRepository(db)

	rows := sqlmock.NewRows([]string{"client_id", "operation", "requests_per_minute", "burst"}).
		AddRow("c1", "read", 60, 10).
		AddRow("c1", "write", 30, 5)

	mock.ExpectQuery(`SELECT client_id, operation, requests_per_minute, burst`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	configs, err := repo.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "write", configs[1].Operation)
	assert.Equal(t, 5, configs[1].Burst)
}
