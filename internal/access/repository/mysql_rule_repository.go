package repository

import (
	"context"
	"database/sql"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// MySQLRuleRepository implements rule persistence for MySQL.
type MySQLRuleRepository struct {
	db *sql.DB
}

// Upsert adds a rule or replaces the one sharing its key in place.
func (m *MySQLRuleRepository) Upsert(ctx context.Context, rule *accessDomain.Rule) error {
	actions, conditions, err := encodeRule(rule)
	if err != nil {
		return err
	}

	query := `INSERT INTO access_rules (client_id, resource_pattern, actions, conditions)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE actions = VALUES(actions), conditions = VALUES(conditions)`

	if _, err := m.db.ExecContext(ctx, query, rule.ClientID, rule.ResourcePattern, actions, conditions); err != nil {
		return apperrors.Wrap(err, "failed to upsert rule")
	}
	return nil
}

// Delete removes the rule with the given key.
func (m *MySQLRuleRepository) Delete(ctx context.Context, clientID, resourcePattern string) error {
	query := `DELETE FROM access_rules WHERE client_id = ? AND resource_pattern = ?`

	result, err := m.db.ExecContext(ctx, query, clientID, resourcePattern)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete rule")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete rule")
	}
	if affected == 0 {
		return accessDomain.ErrRuleNotFound
	}
	return nil
}

// ListByClient retrieves the client's rules in stored order.
func (m *MySQLRuleRepository) ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error) {
	query := `SELECT client_id, resource_pattern, actions, conditions
			  FROM access_rules WHERE client_id = ? ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rules")
	}
	defer rows.Close()

	return scanRules(rows)
}

// List retrieves every rule in stored order with pagination support.
func (m *MySQLRuleRepository) List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error) {
	query := `SELECT client_id, resource_pattern, actions, conditions
			  FROM access_rules ORDER BY id LIMIT ? OFFSET ?`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rules")
	}
	defer rows.Close()

	return scanRules(rows)
}

// NewMySQLRuleRepository creates a new MySQL rule repository.
func NewMySQLRuleRepository(db *sql.DB) *MySQLRuleRepository {
	return &MySQLRuleRepository{db: db}
}
