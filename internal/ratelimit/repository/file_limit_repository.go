// Package repository implements persistence for rate-limit configs.
package repository

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
	"github.com/allisson/gatekeeper/internal/storage"
)

type limitKey struct {
	clientID  string
	operation string
}

// FileLimitRepository keeps rate-limit configs in memory, mirrored to a JSON
// array file on each mutation.
type FileLimitRepository struct {
	store   *storage.FileStore[ratelimitDomain.LimitConfig]
	mu      sync.RWMutex
	configs map[limitKey]ratelimitDomain.LimitConfig
}

// NewFileLimitRepository loads the backing file eagerly and returns the
// repository. A missing file is created empty.
func NewFileLimitRepository(store *storage.FileStore[ratelimitDomain.LimitConfig]) (*FileLimitRepository, error) {
	records, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	configs := make(map[limitKey]ratelimitDomain.LimitConfig, len(records))
	for _, record := range records {
		configs[limitKey{record.ClientID, record.Operation}] = record
	}

	return &FileLimitRepository{
		store:   store,
		configs: configs,
	}, nil
}

// Upsert adds a config or replaces the one sharing its key.
func (f *FileLimitRepository) Upsert(ctx context.Context, config *ratelimitDomain.LimitConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.configs[limitKey{config.ClientID, config.Operation}] = *config
	return f.saveLocked()
}

// Delete removes the config with the given key.
func (f *FileLimitRepository) Delete(ctx context.Context, clientID, operation string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := limitKey{clientID, operation}
	if _, exists := f.configs[key]; !exists {
		return ratelimitDomain.ErrLimitNotFound
	}

	delete(f.configs, key)
	return f.saveLocked()
}

// Get retrieves the config with the given key.
func (f *FileLimitRepository) Get(ctx context.Context, clientID, operation string) (*ratelimitDomain.LimitConfig, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	config, exists := f.configs[limitKey{clientID, operation}]
	if !exists {
		return nil, ratelimitDomain.ErrLimitNotFound
	}
	return &config, nil
}

// List retrieves configs ordered by key with pagination support.
func (f *FileLimitRepository) List(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	records := f.sortedLocked()

	result := []*ratelimitDomain.LimitConfig{}
	for i := offset; i < len(records) && len(result) < limit; i++ {
		record := records[i]
		result = append(result, &record)
	}
	return result, nil
}

func (f *FileLimitRepository) saveLocked() error {
	if err := f.store.SaveAll(f.sortedLocked()); err != nil {
		return apperrors.Wrap(err, "failed to save rate limit configs")
	}
	return nil
}

func (f *FileLimitRepository) sortedLocked() []ratelimitDomain.LimitConfig {
	records := make([]ratelimitDomain.LimitConfig, 0, len(f.configs))
	for _, config := range f.configs {
		records = append(records, config)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ClientID != records[j].ClientID {
			return records[i].ClientID < records[j].ClientID
		}
		return records[i].Operation < records[j].Operation
	})
	return records
}
