package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus enumerates the stored lifecycle states of a FOIA request.
// Overdue is never stored; it is recomputed from due_at at query time.
type RequestStatus string

const (
	RequestStatusSubmitted RequestStatus = "SUBMITTED"
	RequestStatusAssigned  RequestStatus = "ASSIGNED"
	RequestStatusFulfilled RequestStatus = "FULFILLED"
	RequestStatusDenied    RequestStatus = "DENIED"
	RequestStatusAppealed  RequestStatus = "APPEALED"
)

// RequestStatuses lists every stored status in lifecycle order.
var RequestStatuses = []RequestStatus{
	RequestStatusSubmitted,
	RequestStatusAssigned,
	RequestStatusFulfilled,
	RequestStatusDenied,
	RequestStatusAppealed,
}

// ValidRequestStatus reports whether raw names a stored status.
func ValidRequestStatus(raw string) bool {
	switch RequestStatus(raw) {
	case RequestStatusSubmitted, RequestStatusAssigned, RequestStatusFulfilled,
		RequestStatusDenied, RequestStatusAppealed:
		return true
	default:
		return false
	}
}

// MinExemptionCode and MaxExemptionCode bound the fixed set of legal
// exemption grounds. The set is statutory, not configurable.
const (
	MinExemptionCode = 1
	MaxExemptionCode = 9
)

// Document references one released record package in a fulfillment.
// Only metadata is tracked, never document content.
type Document struct {
	Ref                string `json:"ref"`
	Description        string `json:"description,omitempty"`
	Redacted           bool   `json:"redacted"`
	RedactionRationale string `json:"redaction_rationale,omitempty"`
}

// Note is one entry in a request's append-only internal log.
type Note struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentList persists fulfillment packages as JSONB.
type DocumentList []Document

// ExemptionCodes persists cited exemption codes as JSONB, sorted ascending.
type ExemptionCodes []int

// NoteList persists the note log as JSONB, oldest first.
type NoteList []Note

// Request is a tracked FOIA request.
type Request struct {
	TrackingNumber  string         `db:"tracking_number" json:"tracking_number"`
	Requester       string         `db:"requester" json:"requester"`
	Description     string         `db:"description" json:"description"`
	Status          RequestStatus  `db:"status" json:"status"`
	AssignedOfficer string         `db:"assigned_officer" json:"assigned_officer,omitempty"`
	SubmittedAt     time.Time      `db:"submitted_at" json:"submitted_at"`
	DueAt           time.Time      `db:"due_at" json:"due_at"`
	ResolvedAt      *time.Time     `db:"resolved_at" json:"resolved_at,omitempty"`
	AppealedAt      *time.Time     `db:"appealed_at" json:"appealed_at,omitempty"`
	Documents       DocumentList   `db:"documents" json:"documents,omitempty"`
	ExemptionsCited ExemptionCodes `db:"exemptions_cited" json:"exemptions_cited,omitempty"`
	DenialReason    string         `db:"denial_reason" json:"denial_reason,omitempty"`
	AppealGrounds   string         `db:"appeal_grounds" json:"appeal_grounds,omitempty"`
	Notes           NoteList       `db:"notes" json:"notes,omitempty"`
}

// Open reports whether the request still awaits a decision.
func (r *Request) Open() bool {
	return r.Status == RequestStatusSubmitted || r.Status == RequestStatusAssigned
}

// OverdueAsOf reports whether the request is past its statutory deadline at
// the given instant. Strictly after: a request exactly at due_at is not
// overdue. Resolved requests are never overdue.
func (r *Request) OverdueAsOf(asOf time.Time) bool {
	return r.Open() && asOf.After(r.DueAt)
}

// DaysPastDue returns whole days elapsed past due_at, negative while the
// deadline is still ahead.
func (r *Request) DaysPastDue(asOf time.Time) int {
	return int(asOf.Sub(r.DueAt).Hours() / 24)
}

// Clone returns a deep copy so callers can never reach registry state.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	if r.ResolvedAt != nil {
		ts := *r.ResolvedAt
		out.ResolvedAt = &ts
	}
	if r.AppealedAt != nil {
		ts := *r.AppealedAt
		out.AppealedAt = &ts
	}
	if r.Documents != nil {
		out.Documents = make(DocumentList, len(r.Documents))
		copy(out.Documents, r.Documents)
	}
	if r.ExemptionsCited != nil {
		out.ExemptionsCited = make(ExemptionCodes, len(r.ExemptionsCited))
		copy(out.ExemptionsCited, r.ExemptionsCited)
	}
	if r.Notes != nil {
		out.Notes = make(NoteList, len(r.Notes))
		copy(out.Notes, r.Notes)
	}
	return &out
}

// RequestFilter narrows list queries.
type RequestFilter struct {
	Status *RequestStatus
}

// Value marshals the document list to JSON for persistence.
func (d DocumentList) Value() (driver.Value, error) {
	if d == nil {
		d = DocumentList{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal documents: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the document list.
func (d *DocumentList) Scan(value interface{}) error {
	return scanJSON(value, d, "DocumentList")
}

// Value marshals exemption codes to JSON for persistence.
func (e ExemptionCodes) Value() (driver.Value, error) {
	if e == nil {
		e = ExemptionCodes{}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal exemptions: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the exemption codes.
func (e *ExemptionCodes) Scan(value interface{}) error {
	return scanJSON(value, e, "ExemptionCodes")
}

// Value marshals the note log to JSON for persistence.
func (n NoteList) Value() (driver.Value, error) {
	if n == nil {
		n = NoteList{}
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notes: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the note log.
func (n *NoteList) Scan(value interface{}) error {
	return scanJSON(value, n, "NoteList")
}

func scanJSON(value interface{}, dest interface{}, name string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
