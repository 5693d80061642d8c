// Package usecase implements access-rule evaluation and management.
package usecase

import (
	"context"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
)

// RuleRepository defines persistence operations for access rules. Rules form
// a flat ordered list; Upsert replaces the rule with the same
// (client id, resource pattern) key in place.
type RuleRepository interface {
	// Upsert adds a rule or replaces the one sharing its key.
	Upsert(ctx context.Context, rule *accessDomain.Rule) error

	// Delete removes the rule with the given key. Returns ErrRuleNotFound when
	// absent.
	Delete(ctx context.Context, clientID, resourcePattern string) error

	// ListByClient retrieves the client's rules in stored order.
	ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error)

	// List retrieves every rule in stored order with pagination support.
	List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error)
}

// RuleEngine evaluates whether a (client, resource, action) triple is
// permitted and exposes the rule management operations.
type RuleEngine interface {
	// CheckAccess reports whether any of the client's rules permits the action
	// on the resource given the request context. No matching rule means the
	// default applies: deny.
	CheckAccess(ctx context.Context, clientID, resource, action string, reqCtx map[string]any) bool

	Upsert(ctx context.Context, rule *accessDomain.Rule) error
	Delete(ctx context.Context, clientID, resourcePattern string) error
	ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error)
	List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error)
}
