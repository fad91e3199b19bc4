package models

import "time"

// OfficerRole represents the available roles for desk accounts.
type OfficerRole string

const (
	RoleAdmin   OfficerRole = "ADMIN"
	RoleOfficer OfficerRole = "OFFICER"
)

// Officer represents a desk account stored in the officers table.
// Requesters have no accounts; submission and reading are public.
type Officer struct {
	ID           string      `db:"id" json:"id"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FullName     string      `db:"full_name" json:"full_name"`
	Role         OfficerRole `db:"role" json:"role"`
	Active       bool        `db:"active" json:"active"`
	LastLogin    *time.Time  `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
