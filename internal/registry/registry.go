package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/foia-desk-api/internal/models"
	appErrors "github.com/noah-isme/foia-desk-api/pkg/errors"
)

// Config tunes a RequestRegistry. Zero values fall back to the statutory
// 20 calendar day response window and the FOIA tracking prefix.
type Config struct {
	ResponseWindowDays int
	TrackingPrefix     string
	Clock              func() time.Time
}

// RequestRegistry is the sole owner and mutator of request state. All
// lifecycle invariants are enforced here; collaborators only ever see deep
// copies. Mutations take the write lock, queries the read lock.
type RequestRegistry struct {
	mu       sync.RWMutex
	requests map[string]*models.Request

	windowDays int
	prefix     string
	now        func() time.Time
}

// NewRequestRegistry constructs an empty registry.
func NewRequestRegistry(cfg Config) *RequestRegistry {
	if cfg.ResponseWindowDays <= 0 {
		cfg.ResponseWindowDays = 20
	}
	if cfg.TrackingPrefix == "" {
		cfg.TrackingPrefix = "FOIA"
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &RequestRegistry{
		requests:   make(map[string]*models.Request),
		windowDays: cfg.ResponseWindowDays,
		prefix:     cfg.TrackingPrefix,
		now:        cfg.Clock,
	}
}

// Submit creates a request in SUBMITTED with a fresh unique tracking number
// and a due date exactly one response window after submission.
func (r *RequestRegistry) Submit(requester, description string) (*models.Request, error) {
	if strings.TrimSpace(requester) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requester is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	req := &models.Request{
		TrackingNumber: r.nextTrackingNumber(now),
		Requester:      requester,
		Description:    description,
		Status:         models.RequestStatusSubmitted,
		SubmittedAt:    now,
		DueAt:          now.AddDate(0, 0, r.windowDays),
	}
	r.requests[req.TrackingNumber] = req
	return req.Clone(), nil
}

// Assign routes a request to an officer. Reassignment is permitted while the
// request is still open.
func (r *RequestRegistry) Assign(trackingNumber, officer string) (*models.Request, error) {
	if strings.TrimSpace(officer) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "officer is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.locked(trackingNumber)
	if err != nil {
		return nil, err
	}
	if !req.Open() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot assign a request in status %s", req.Status))
	}

	req.AssignedOfficer = officer
	req.Status = models.RequestStatusAssigned
	return req.Clone(), nil
}

// Fulfill releases document packages and closes the request as FULFILLED.
func (r *RequestRegistry) Fulfill(trackingNumber string, documents []models.Document) (*models.Request, error) {
	if len(documents) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one document package is required")
	}
	for i, doc := range documents {
		if strings.TrimSpace(doc.Ref) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("document %d is missing its package reference", i+1))
		}
		if doc.Redacted && strings.TrimSpace(doc.RedactionRationale) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("document %s is redacted without a rationale", doc.Ref))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.locked(trackingNumber)
	if err != nil {
		return nil, err
	}
	if !req.Open() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot fulfill a request in status %s", req.Status))
	}

	now := r.now().UTC()
	req.Documents = make(models.DocumentList, len(documents))
	copy(req.Documents, documents)
	req.Status = models.RequestStatusFulfilled
	req.ResolvedAt = &now
	return req.Clone(), nil
}

// Deny closes the request as DENIED, recording the cited exemptions and the
// written reason.
func (r *RequestRegistry) Deny(trackingNumber string, exemptions []int, reason string) (*models.Request, error) {
	codes, err := normalizeExemptions(exemptions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "denial reason is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.locked(trackingNumber)
	if err != nil {
		return nil, err
	}
	if !req.Open() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot deny a request in status %s", req.Status))
	}

	now := r.now().UTC()
	req.ExemptionsCited = codes
	req.DenialReason = reason
	req.Status = models.RequestStatusDenied
	req.ResolvedAt = &now
	return req.Clone(), nil
}

// Appeal contests a denial. Only DENIED requests are eligible; APPEALED is
// terminal.
func (r *RequestRegistry) Appeal(trackingNumber, grounds string) (*models.Request, error) {
	if strings.TrimSpace(grounds) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appeal grounds are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.locked(trackingNumber)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusDenied {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot appeal a request in status %s", req.Status))
	}

	now := r.now().UTC()
	req.AppealGrounds = grounds
	req.Status = models.RequestStatusAppealed
	req.AppealedAt = &now
	return req.Clone(), nil
}

// AddNote appends to the internal log. Notes are permitted in any status and
// never deleted.
func (r *RequestRegistry) AddNote(trackingNumber, author, text string) (*models.Request, error) {
	if strings.TrimSpace(author) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "note author is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "note text is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := r.locked(trackingNumber)
	if err != nil {
		return nil, err
	}

	req.Notes = append(req.Notes, models.Note{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		CreatedAt: r.now().UTC(),
	})
	return req.Clone(), nil
}

// Get returns a copy of one request.
func (r *RequestRegistry) Get(trackingNumber string) (*models.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, err := r.locked(trackingNumber)
	if err != nil {
		return nil, err
	}
	return req.Clone(), nil
}

// List returns copies of all requests, optionally narrowed by status,
// ordered by submission time ascending with tracking number as tiebreaker.
func (r *RequestRegistry) List(filter models.RequestFilter) []models.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Request, 0, len(r.requests))
	for _, req := range r.requests {
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, *req.Clone())
	}
	sortBySubmission(out)
	return out
}

// Overdue returns copies of open requests strictly past their deadline at
// asOf, most days overdue first, ties broken by tracking number ascending.
func (r *RequestRegistry) Overdue(asOf time.Time) []models.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Request, 0)
	for _, req := range r.requests {
		if req.OverdueAsOf(asOf) {
			out = append(out, *req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].DaysPastDue(asOf), out[j].DaysPastDue(asOf)
		if di != dj {
			return di > dj
		}
		return out[i].TrackingNumber < out[j].TrackingNumber
	})
	return out
}

// Snapshot captures the full registry state for persistence.
func (r *RequestRegistry) Snapshot() *models.RegistrySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requests := make([]models.Request, 0, len(r.requests))
	for _, req := range r.requests {
		requests = append(requests, *req.Clone())
	}
	sortBySubmission(requests)
	return &models.RegistrySnapshot{
		SavedAt:  r.now().UTC(),
		Requests: requests,
	}
}

// Restore replaces registry contents from a snapshot. Stored due dates are
// trusted verbatim so historical requests keep their original deadlines even
// if the configured window has since changed.
func (r *RequestRegistry) Restore(snapshot *models.RegistrySnapshot) error {
	if snapshot == nil {
		return nil
	}

	restored := make(map[string]*models.Request, len(snapshot.Requests))
	for i := range snapshot.Requests {
		req := snapshot.Requests[i]
		if strings.TrimSpace(req.TrackingNumber) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "snapshot contains a request without a tracking number")
		}
		if !models.ValidRequestStatus(string(req.Status)) {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("snapshot request %s has unknown status %q", req.TrackingNumber, req.Status))
		}
		if _, dup := restored[req.TrackingNumber]; dup {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("snapshot contains duplicate tracking number %s", req.TrackingNumber))
		}
		restored[req.TrackingNumber] = req.Clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = restored
	return nil
}

// Len reports how many requests the registry holds.
func (r *RequestRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.requests)
}

// locked fetches a live entry. Callers must hold the lock.
func (r *RequestRegistry) locked(trackingNumber string) (*models.Request, error) {
	req, ok := r.requests[trackingNumber]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	return req, nil
}

// nextTrackingNumber generates FOIA-<year>-<6 hex> identifiers, regenerating
// on the rare suffix collision. Callers must hold the write lock.
func (r *RequestRegistry) nextTrackingNumber(now time.Time) string {
	for {
		id := uuid.New()
		tn := fmt.Sprintf("%s-%d-%X", r.prefix, now.Year(), id[:3])
		if _, exists := r.requests[tn]; !exists {
			return tn
		}
	}
}

func normalizeExemptions(codes []int) (models.ExemptionCodes, error) {
	if len(codes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one exemption code is required")
	}
	seen := make(map[int]struct{}, len(codes))
	out := make(models.ExemptionCodes, 0, len(codes))
	for _, code := range codes {
		if code < models.MinExemptionCode || code > models.MaxExemptionCode {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("exemption code %d is not in the recognized set %d-%d",
					code, models.MinExemptionCode, models.MaxExemptionCode))
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Ints(out)
	return out, nil
}

func sortBySubmission(requests []models.Request) {
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].SubmittedAt.Equal(requests[j].SubmittedAt) {
			return requests[i].SubmittedAt.Before(requests[j].SubmittedAt)
		}
		return requests[i].TrackingNumber < requests[j].TrackingNumber
	})
}
