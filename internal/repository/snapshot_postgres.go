package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

// PostgresSnapshotStore persists full registry snapshots in Postgres. Every
// save replaces the whole request set in one transaction, so the table always
// mirrors the registry exactly and partial writes cannot survive a crash.
type PostgresSnapshotStore struct {
	db *sqlx.DB
}

// NewPostgresSnapshotStore creates a snapshot store over the given database.
func NewPostgresSnapshotStore(db *sqlx.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

// EnsureSchema creates the requests table when absent.
func (s *PostgresSnapshotStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS foia_requests (
	tracking_number TEXT PRIMARY KEY,
	requester TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL,
	assigned_officer TEXT NOT NULL DEFAULT '',
	submitted_at TIMESTAMPTZ NOT NULL,
	due_at TIMESTAMPTZ NOT NULL,
	resolved_at TIMESTAMPTZ,
	appealed_at TIMESTAMPTZ,
	documents JSONB NOT NULL DEFAULT '[]',
	exemptions_cited JSONB NOT NULL DEFAULT '[]',
	denial_reason TEXT NOT NULL DEFAULT '',
	appeal_grounds TEXT NOT NULL DEFAULT '',
	notes JSONB NOT NULL DEFAULT '[]'
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Load reads the stored snapshot, oldest submission first.
func (s *PostgresSnapshotStore) Load(ctx context.Context) (*models.RegistrySnapshot, error) {
	const query = `SELECT tracking_number, requester, description, status, assigned_officer, submitted_at, due_at, resolved_at, appealed_at, documents, exemptions_cited, denial_reason, appeal_grounds, notes FROM foia_requests ORDER BY submitted_at ASC, tracking_number ASC`
	var requests []models.Request
	if err := s.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &models.RegistrySnapshot{Requests: requests}, nil
}

// Save replaces the stored snapshot with the given one.
func (s *PostgresSnapshotStore) Save(ctx context.Context, snapshot *models.RegistrySnapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM foia_requests`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	const insert = `INSERT INTO foia_requests (tracking_number, requester, description, status, assigned_officer, submitted_at, due_at, resolved_at, appealed_at, documents, exemptions_cited, denial_reason, appeal_grounds, notes) VALUES (:tracking_number, :requester, :description, :status, :assigned_officer, :submitted_at, :due_at, :resolved_at, :appealed_at, :documents, :exemptions_cited, :denial_reason, :appeal_grounds, :notes)`
	for i := range snapshot.Requests {
		if _, err := tx.NamedExecContext(ctx, insert, &snapshot.Requests[i]); err != nil {
			return fmt.Errorf("insert request %s: %w", snapshot.Requests[i].TrackingNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}
