package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

// OfficerRepository provides database access for desk accounts, their
// refresh-token sessions and the audit trail.
type OfficerRepository struct {
	db *sqlx.DB
}

// NewOfficerRepository creates a new instance of OfficerRepository.
func NewOfficerRepository(db *sqlx.DB) *OfficerRepository {
	return &OfficerRepository{db: db}
}

// EnsureSchema creates the account, session and audit tables when absent.
func (r *OfficerRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS officers (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	last_login TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id TEXT PRIMARY KEY,
	officer_id TEXT NOT NULL REFERENCES officers(id),
	token TEXT NOT NULL UNIQUE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	revoked BOOLEAN NOT NULL DEFAULT FALSE,
	revoked_at TIMESTAMPTZ,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	officer_id TEXT,
	action TEXT NOT NULL,
	resource TEXT NOT NULL,
	resource_id TEXT,
	detail JSONB,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure officer schema: %w", err)
	}
	return nil
}

// FindByEmail returns an officer by email address.
func (r *OfficerRepository) FindByEmail(ctx context.Context, email string) (*models.Officer, error) {
	const query = `SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM officers WHERE email = $1 LIMIT 1`
	var officer models.Officer
	if err := r.db.GetContext(ctx, &officer, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find officer by email: %w", err)
	}
	return &officer, nil
}

// FindByID returns an officer by identifier.
func (r *OfficerRepository) FindByID(ctx context.Context, id string) (*models.Officer, error) {
	const query = `SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM officers WHERE id = $1 LIMIT 1`
	var officer models.Officer
	if err := r.db.GetContext(ctx, &officer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find officer by id: %w", err)
	}
	return &officer, nil
}

// Count reports how many accounts exist, used to decide first-boot seeding.
func (r *OfficerRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM officers`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count officers: %w", err)
	}
	return total, nil
}

// Create inserts a new officer account.
func (r *OfficerRepository) Create(ctx context.Context, officer *models.Officer) error {
	if officer.ID == "" {
		officer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if officer.CreatedAt.IsZero() {
		officer.CreatedAt = now
	}
	officer.UpdatedAt = now

	const query = `INSERT INTO officers (id, email, password_hash, full_name, role, active, created_at, updated_at) VALUES (:id, :email, :password_hash, :full_name, :role, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, officer); err != nil {
		return fmt.Errorf("create officer: %w", err)
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp for an officer.
func (r *OfficerRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE officers SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *OfficerRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE officers SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *OfficerRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, officer_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent) VALUES (:id, :officer_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *OfficerRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, officer_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *OfficerRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeOfficerRefreshTokens revokes all refresh tokens for an officer.
func (r *OfficerRepository) RevokeOfficerRefreshTokens(ctx context.Context, officerID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE officer_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, officerID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke officer refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit trail entry.
func (r *OfficerRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, officer_id, action, resource, resource_id, detail, ip_address, user_agent, created_at) VALUES (:id, :officer_id, :action, :resource, :resource_id, :detail, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
