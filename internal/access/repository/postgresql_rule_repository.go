package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// PostgreSQLRuleRepository implements rule persistence for PostgreSQL.
//
// The access_rules table carries a serial id used only for ordering, so an
// upsert keeps the rule's original evaluation position.
type PostgreSQLRuleRepository struct {
	db *sql.DB
}

// Upsert adds a rule or replaces the one sharing its key in place.
func (p *PostgreSQLRuleRepository) Upsert(ctx context.Context, rule *accessDomain.Rule) error {
	actions, conditions, err := encodeRule(rule)
	if err != nil {
		return err
	}

	query := `INSERT INTO access_rules (client_id, resource_pattern, actions, conditions)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (client_id, resource_pattern)
			  DO UPDATE SET actions = EXCLUDED.actions, conditions = EXCLUDED.conditions`

	if _, err := p.db.ExecContext(ctx, query, rule.ClientID, rule.ResourcePattern, actions, conditions); err != nil {
		return apperrors.Wrap(err, "failed to upsert rule")
	}
	return nil
}

// Delete removes the rule with the given key.
func (p *PostgreSQLRuleRepository) Delete(ctx context.Context, clientID, resourcePattern string) error {
	query := `DELETE FROM access_rules WHERE client_id = $1 AND resource_pattern = $2`

	result, err := p.db.ExecContext(ctx, query, clientID, resourcePattern)
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
func (p *PostgreSQLRuleRepository) ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error) {
	query := `SELECT client_id, resource_pattern, actions, conditions
			  FROM access_rules WHERE client_id = $1 ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rules")
	}
	defer rows.Close()

	return scanRules(rows)
}

// List retrieves every rule in stored order with pagination support.
func (p *PostgreSQLRuleRepository) List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error) {
	query := `SELECT client_id, resource_pattern, actions, conditions
			  FROM access_rules ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rules")
	}
	defer rows.Close()

	return scanRules(rows)
}

// NewPostgreSQLRuleRepository creates a new PostgreSQL rule repository.
func NewPostgreSQLRuleRepository(db *sql.DB) *PostgreSQLRuleRepository {
	return &PostgreSQLRuleRepository{db: db}
}

func encodeRule(rule *accessDomain.Rule) (actions, conditions []byte, err error) {
	actions, err = json.Marshal(rule.Actions)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to encode rule actions")
	}
	conditions, err = json.Marshal(rule.Conditions)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to encode rule conditions")
	}
	return actions, conditions, nil
}

func scanRules(rows *sql.Rows) ([]*accessDomain.Rule, error) {
	rules := []*accessDomain.Rule{}
	for rows.Next() {
		var rule accessDomain.Rule
		var actions, conditions []byte
		if err := rows.Scan(&rule.ClientID, &rule.ResourcePattern, &actions, &conditions); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan rule")
		}
		if err := json.Unmarshal(actions, &rule.Actions); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode rule actions")
		}
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode rule conditions")
		}
		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list rules")
	}
	return rules, nil
}
