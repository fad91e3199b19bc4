package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionSubmit         = "REQUEST_SUBMIT"
	AuditActionAssign         = "REQUEST_ASSIGN"
	AuditActionFulfill        = "REQUEST_FULFILL"
	AuditActionDeny           = "REQUEST_DENY"
	AuditActionAppeal         = "REQUEST_APPEAL"
	AuditActionAddNote        = "REQUEST_NOTE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	OfficerID  *string   `db:"officer_id" json:"officer_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
