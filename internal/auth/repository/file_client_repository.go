// Package repository implements persistence for client records.
//
// The file implementation is the default: the whole directory is loaded
// eagerly at startup and every administrative mutation saves the full set
// synchronously. PostgreSQL and MySQL implementations back the same interface
// for deployments that already run a database.
package repository

import (
	"context"
	"sort"
	"sync"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/storage"
)

// FileClientRepository keeps client records in memory, mirrored to a JSON
// array file on each mutation.
type FileClientRepository struct {
	store   *storage.FileStore[authDomain.Client]
	mu      sync.RWMutex
	clients map[string]authDomain.Client
}

// NewFileClientRepository loads the backing file eagerly and returns the
// repository. A missing file is created empty.
func NewFileClientRepository(store *storage.FileStore[authDomain.Client]) (*FileClientRepository, error) {
	records, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	clients := make(map[string]authDomain.Client, len(records))
	for _, record := range records {
		clients[record.ID] = record
	}

	return &FileClientRepository{
		store:   store,
		clients: clients,
	}, nil
}

// Create inserts a new client record and persists the directory.
func (f *FileClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.clients[client.ID]; exists {
		return authDomain.ErrClientExists
	}

	f.clients[client.ID] = *client
	return f.saveLocked()
}

// Update replaces an existing client record and persists the directory.
func (f *FileClientRepository) Update(ctx context.Context, client *authDomain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.clients[client.ID]; !exists {
		return authDomain.ErrClientNotFound
	}

	f.clients[client.ID] = *client
	return f.saveLocked()
}

// Get retrieves a client record by id.
func (f *FileClientRepository) Get(ctx context.Context, clientID string) (*authDomain.Client, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	client, exists := f.clients[clientID]
	if !exists {
		return nil, authDomain.ErrClientNotFound
	}
	return &client, nil
}

// List retrieves client records ordered by id with pagination support.
func (f *FileClientRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids := make([]string, 0, len(f.clients))
	for id := range f.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := []*authDomain.Client{}
	for i := offset; i < len(ids) && len(result) < limit; i++ {
		client := f.clients[ids[i]]
		result = append(result, &client)
	}
	return result, nil
}

func (f *FileClientRepository) saveLocked() error {
	records := make([]authDomain.Client, 0, len(f.clients))
	for _, client := range f.clients {
		records = append(records, client)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return f.store.SaveAll(records)
}
