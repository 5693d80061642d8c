package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// ruleEngine implements RuleEngine. Compiled resource patterns are cached per
// pattern string; the cache only grows with the distinct patterns in the rule
// set, which administrative mutation keeps small.
type ruleEngine struct {
	ruleRepo RuleRepository
	logger   *slog.Logger

	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

// NewRuleEngine creates a RuleEngine over the given repository.
func NewRuleEngine(ruleRepo RuleRepository, logger *slog.Logger) RuleEngine {
	return &ruleEngine{
		ruleRepo: ruleRepo,
		logger:   logger,
		compiled: make(map[string]*regexp.Regexp),
	}
}

// CheckAccess walks the client's rules in stored order. A rule matches
// structurally when its pattern matches the resource and its action set
// contains the action (or the wildcard). The first structurally matching
// unconditional rule grants; a conditioned rule grants when the request
// context satisfies all its field equalities. Anything else: deny.
//
// There is deliberately no precedence among multiple conditioned rules beyond
// first match wins; keeping that simple is a documented limitation, not a
// hidden priority system.
//
// A repository failure degrades to an empty rule set (deny) rather than
// propagating the error.
func (e *ruleEngine) CheckAccess(
	ctx context.Context,
	clientID, resource, action string,
	reqCtx map[string]any,
) bool {
	rules, err := e.ruleRepo.ListByClient(ctx, clientID)
	if err != nil {
		e.logger.Error("rule lookup failed, denying",
			slog.String("client_id", clientID),
			slog.Any("error", err))
		return false
	}

	for _, rule := range rules {
		if !rule.MatchesAction(action) {
			continue
		}

		re, err := e.pattern(rule.ResourcePattern)
		if err != nil {
			e.logger.Error("invalid resource pattern, skipping rule",
				slog.String("client_id", rule.ClientID),
				slog.String("pattern", rule.ResourcePattern),
				slog.Any("error", err))
			continue
		}
		if !re.MatchString(resource) {
			continue
		}

		if rule.Unconditional() || rule.ConditionsSatisfied(reqCtx) {
			return true
		}
	}

	return false
}

// Upsert validates the rule's pattern compiles, then stores it.
func (e *ruleEngine) Upsert(ctx context.Context, rule *accessDomain.Rule) error {
	if rule.ClientID == "" || rule.ResourcePattern == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "client id and resource pattern must not be empty")
	}
	if len(rule.Actions) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "rule must allow at least one action")
	}
	if _, err := e.pattern(rule.ResourcePattern); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid resource pattern")
	}
	return e.ruleRepo.Upsert(ctx, rule)
}

// Delete removes the rule with the given key.
func (e *ruleEngine) Delete(ctx context.Context, clientID, resourcePattern string) error {
	return e.ruleRepo.Delete(ctx, clientID, resourcePattern)
}

// ListByClient retrieves the client's rules in stored order.
func (e *ruleEngine) ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error) {
	return e.ruleRepo.ListByClient(ctx, clientID)
}

// List retrieves every rule with pagination support.
func (e *ruleEngine) List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error) {
	return e.ruleRepo.List(ctx, offset, limit)
}

func (e *ruleEngine) pattern(pattern string) (*regexp.Regexp, error) {
	e.mu.RLock()
	re, ok := e.compiled[pattern]
	e.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := accessDomain.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.compiled[pattern] = re
	e.mu.Unlock()
	return re, nil
}
