package repository

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

// MySQLLimitRepository implements limit-config persistence for MySQL.
type MySQLLimitRepository struct {
	db *sql.DB
}

// Upsert adds a config or replaces the one sharing its key.
func (m *MySQLLimitRepository) Upsert(ctx context.Context, config *ratelimitDomain.LimitConfig) error {
	query := `INSERT INTO rate_limits (client_id, operation, requests_per_minute, burst)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE requests_per_minute = VALUES(requests_per_minute), burst = VALUES(burst)`

	if _, err := m.db.ExecContext(ctx, query, config.ClientID, config.Operation, config.RequestsPerMinute, config.Burst); err != nil {
		return apperrors.Wrap(err, "failed to upsert rate limit config")
	}
	return nil
}

// Delete removes the config with the given key.
func (m *MySQLLimitRepository) Delete(ctx context.Context, clientID, operation string) error {
	query := `DELETE FROM rate_limits WHERE client_id = ? AND operation = ?`

	result, err := m.db.ExecContext(ctx, query, clientID, operation)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete rate limit config")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete rate limit config")
	}
	if affected == 0 {
		return ratelimitDomain.ErrLimitNotFound
	}
	return nil
}

// Get retrieves the config with the given key.
func (m *MySQLLimitRepository) Get(ctx context.Context, clientID, operation string) (*ratelimitDomain.LimitConfig, error) {
	query := `SELECT client_id, operation, requests_per_minute, burst
			  FROM rate_limits WHERE client_id = ? AND operation = ?`

	var config ratelimitDomain.LimitConfig

	err := m.db.QueryRowContext(ctx, query, clientID, operation).Scan(
		&config.ClientID,
		&config.Operation,
		&config.RequestsPerMinute,
		&config.Burst,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ratelimitDomain.ErrLimitNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get rate limit config")
	}

	return &config, nil
}

// List retrieves configs ordered by key with pagination support.
func (m *MySQLLimitRepository) List(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error) {
	query := `SELECT client_id, operation, requests_per_minute, burst
			  FROM rate_limits ORDER BY client_id, operation LIMIT ? OFFSET ?`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rate limit configs")
	}
	defer rows.Close()

	return scanLimitConfigs(rows)
}

// NewMySQLLimitRepository creates a new MySQL limit repository.
func NewMySQLLimitRepository(db *sql.DB) *MySQLLimitRepository {
	return &MySQLLimitRepository{db: db}
}
