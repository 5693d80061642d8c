package repository

import (
	"context"
	"database/sql"
	"errors"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// MySQLClientRepository implements client persistence for MySQL.
type MySQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new client record into the MySQL database.
func (m *MySQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	query := `INSERT INTO clients (id, credential_hash, description, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := m.db.ExecContext(
		ctx,
		query,
		client.ID,
		client.CredentialHash,
		client.Description,
		client.Status,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// Update modifies an existing client record in the MySQL database.
func (m *MySQLClientRepository) Update(ctx context.Context, client *authDomain.Client) error {
	query := `UPDATE clients
			  SET credential_hash = ?,
				  description = ?,
				  status = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := m.db.ExecContext(
		ctx,
		query,
		client.CredentialHash,
		client.Description,
		client.Status,
		client.UpdatedAt,
		client.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update client")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update client")
	}
	if affected == 0 {
		return authDomain.ErrClientNotFound
	}
	return nil
}

// Get retrieves a client record by id from the MySQL database.
func (m *MySQLClientRepository) Get(ctx context.Context, clientID string) (*authDomain.Client, error) {
	query := `SELECT id, credential_hash, description, status, created_at, updated_at
			  FROM clients WHERE id = ?`

	var client authDomain.Client

	err := m.db.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
		&client.CredentialHash,
		&client.Description,
		&client.Status,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client")
	}

	return &client, nil
}

// List retrieves client records ordered by id with pagination support.
func (m *MySQLClientRepository) List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error) {
	query := `SELECT id, credential_hash, description, status, created_at, updated_at
			  FROM clients ORDER BY id LIMIT ? OFFSET ?`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clients")
	}
	defer rows.Close()

	clients := []*authDomain.Client{}
	for rows.Next() {
		var client authDomain.Client
		if err := rows.Scan(
			&client.ID,
			&client.CredentialHash,
			&client.Description,
			&client.Status,
			&client.CreatedAt,
			&client.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan client")
		}
		clients = append(clients, &client)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list clients")
	}

	return clients, nil
}

// NewMySQLClientRepository creates a new MySQL client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}
