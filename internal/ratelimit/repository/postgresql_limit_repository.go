package repository

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

// PostgreSQLLimitRepository implements limit-config persistence for
// PostgreSQL.
type PostgreSQLLimitRepository struct {
	db *sql.DB
}

// Upsert adds a config or replaces the one sharing its key.
func (p *PostgreSQLLimitRepository) Upsert(ctx context.Context, config *ratelimitDomain.LimitConfig) error {
	query := `INSERT INTO rate_limits (client_id, operation, requests_per_minute, burst)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (client_id, operation)
			  DO UPDATE SET requests_per_minute = EXCLUDED.requests_per_minute, burst = EXCLUDED.burst`

	if _, err := p.db.ExecContext(ctx, query, config.ClientID, config.Operation, config.RequestsPerMinute, config.Burst); err != nil {
		return apperrors.Wrap(err, "failed to upsert rate limit config")
	}
	return nil
}

// Delete removes the config with the given key.
func (p *PostgreSQLLimitRepository) Delete(ctx context.Context, clientID, operation string) error {
	query := `DELETE FROM rate_limits WHERE client_id = $1 AND operation = $2`

	result, err := p.db.ExecContext(ctx, query, clientID, operation)
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
func (p *PostgreSQLLimitRepository) Get(ctx context.Context, clientID, operation string) (*ratelimitDomain.LimitConfig, error) {
	query := `SELECT client_id, operation, requests_per_minute, burst
			  FROM rate_limits WHERE client_id = $1 AND operation = $2`

	var config ratelimitDomain.LimitConfig

	err := p.db.QueryRowContext(ctx, query, clientID, operation).Scan(
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
func (p *PostgreSQLLimitRepository) List(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error) {
	query := `SELECT client_id, operation, requests_per_minute, burst
			  FROM rate_limits ORDER BY client_id, operation LIMIT $1 OFFSET $2`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rate limit configs")
	}
	defer rows.Close()

	return scanLimitConfigs(rows)
}

// NewPostgreSQLLimitRepository creates a new PostgreSQL limit repository.
func NewPostgreSQLLimitRepository(db *sql.DB) *PostgreSQLLimitRepository {
	return &PostgreSQLLimitRepository{db: db}
}

func scanLimitConfigs(rows *sql.Rows) ([]*ratelimitDomain.LimitConfig, error) {
	configs := []*ratelimitDomain.LimitConfig{}
	for rows.Next() {
		var config ratelimitDomain.LimitConfig
		if err := rows.Scan(
			&config.ClientID,
			&config.Operation,
			&config.RequestsPerMinute,
			&config.Burst,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan rate limit config")
		}
		configs = append(configs, &config)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list rate limit configs")
	}
	return configs, nil
}
