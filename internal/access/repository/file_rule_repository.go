// Package repository implements persistence for access rules.
//
// Rules are kept as an ordered list: evaluation order is insertion order, and
// an upsert of an existing (client id, resource pattern) key replaces the rule
// in place without changing its position.
package repository

import (
	"context"
	"sync"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	"github.com/allisson/gatekeeper/internal/storage"
)

// FileRuleRepository keeps access rules in memory, mirrored to a JSON array
// file on each mutation.
type FileRuleRepository struct {
	store *storage.FileStore[accessDomain.Rule]
	mu    sync.RWMutex
	rules []accessDomain.Rule
}

// NewFileRuleRepository loads the backing file eagerly and returns the
// repository. A missing file is created empty.
func NewFileRuleRepository(store *storage.FileStore[accessDomain.Rule]) (*FileRuleRepository, error) {
	rules, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	return &FileRuleRepository{
		store: store,
		rules: rules,
	}, nil
}

// Upsert adds a rule or replaces the one sharing its key in place.
func (f *FileRuleRepository) Upsert(ctx context.Context, rule *accessDomain.Rule) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.rules {
		if f.rules[i].ClientID == rule.ClientID && f.rules[i].ResourcePattern == rule.ResourcePattern {
			f.rules[i] = *rule
			return f.store.SaveAll(f.rules)
		}
	}

	f.rules = append(f.rules, *rule)
	return f.store.SaveAll(f.rules)
}

// Delete removes the rule with the given key.
func (f *FileRuleRepository) Delete(ctx context.Context, clientID, resourcePattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.rules {
		if f.rules[i].ClientID == clientID && f.rules[i].ResourcePattern == resourcePattern {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return f.store.SaveAll(f.rules)
		}
	}
	return accessDomain.ErrRuleNotFound
}

// ListByClient retrieves the client's rules in stored order.
func (f *FileRuleRepository) ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := []*accessDomain.Rule{}
	for i := range f.rules {
		if f.rules[i].ClientID == clientID {
			rule := f.rules[i]
			result = append(result, &rule)
		}
	}
	return result, nil
}

// List retrieves every rule in stored order with pagination support.
func (f *FileRuleRepository) List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := []*accessDomain.Rule{}
	for i := offset; i < len(f.rules) && len(result) < limit; i++ {
		rule := f.rules[i]
		result = append(result, &rule)
	}
	return result, nil
}
