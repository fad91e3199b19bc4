package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

type requestRegistry interface {
	Submit(requester, description string) (*models.Request, error)
	Assign(trackingNumber, officer string) (*models.Request, error)
	Fulfill(trackingNumber string, documents []models.Document) (*models.Request, error)
	Deny(trackingNumber string, exemptions []int, reason string) (*models.Request, error)
	Appeal(trackingNumber, grounds string) (*models.Request, error)
	AddNote(trackingNumber, author, text string) (*models.Request, error)
	Get(trackingNumber string) (*models.Request, error)
	List(filter models.RequestFilter) []models.Request
	Overdue(asOf time.Time) []models.Request
	Snapshot() *models.RegistrySnapshot
}

type snapshotWriter interface {
	Save(ctx context.Context, snapshot *models.RegistrySnapshot) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Actor carries the origin of a mutation for the audit trail. OfficerID is
// nil for public operations such as submission and appeal.
type Actor struct {
	OfficerID *string
	IP        string
	UserAgent string
}

// RequestServiceParams wires the request service dependencies.
type RequestServiceParams struct {
	Registry  requestRegistry
	Snapshots snapshotWriter
	Audit     auditWriter
	Cache     *CacheService
	Metrics   *MetricsService
	Logger    *zap.Logger
	Clock     func() time.Time
}

// RequestService fronts the in-memory registry. Every successful mutation is
// written through to the snapshot store, invalidates cached statistics, and
// leaves an audit record. The registry remains the source of truth, so a
// failed snapshot write is logged and counted rather than surfaced to the
// caller whose mutation has already been applied.
type RequestService struct {
	registry  requestRegistry
	snapshots snapshotWriter
	audit     auditWriter
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService constructs the request service.
func NewRequestService(params RequestServiceParams) *RequestService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &RequestService{
		registry:  params.Registry,
		snapshots: params.Snapshots,
		audit:     params.Audit,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logger:    logger,
		now:       now,
	}
}

// Submit registers a new request and returns it with its tracking number.
func (s *RequestService) Submit(ctx context.Context, requester, description string, actor Actor) (*models.Request, error) {
	req, err := s.registry.Submit(requester, description)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.AuditActionSubmit, req.TrackingNumber, actor, map[string]string{
		"requester": req.Requester,
	})
	return req, nil
}

// Assign routes a request to an officer. Reassignment is permitted while the
// request is open.
func (s *RequestService) Assign(ctx context.Context, trackingNumber, officer string, actor Actor) (*models.Request, error) {
	req, err := s.registry.Assign(trackingNumber, officer)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.AuditActionAssign, req.TrackingNumber, actor, map[string]string{
		"assigned_officer": req.AssignedOfficer,
	})
	return req, nil
}

// Fulfill releases documents and closes the request.
func (s *RequestService) Fulfill(ctx context.Context, trackingNumber string, documents []models.Document, actor Actor) (*models.Request, error) {
	req, err := s.registry.Fulfill(trackingNumber, documents)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.AuditActionFulfill, req.TrackingNumber, actor, map[string]string{
		"documents": strconv.Itoa(len(req.Documents)),
	})
	return req, nil
}

// Deny closes the request citing one or more statutory exemptions.
func (s *RequestService) Deny(ctx context.Context, trackingNumber string, exemptions []int, reason string, actor Actor) (*models.Request, error) {
	req, err := s.registry.Deny(trackingNumber, exemptions, reason)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.AuditActionDeny, req.TrackingNumber, actor, map[string]string{
		"denial_reason": req.DenialReason,
	})
	return req, nil
}

// Appeal contests a denial.
func (s *RequestService) Appeal(ctx context.Context, trackingNumber, grounds string, actor Actor) (*models.Request, error) {
	req, err := s.registry.Appeal(trackingNumber, grounds)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.AuditActionAppeal, req.TrackingNumber, actor, nil)
	return req, nil
}

// AddNote appends a case note. Notes never change status, so the audit entry
// is the only side effect beyond the note itself.
func (s *RequestService) AddNote(ctx context.Context, trackingNumber, author, text string, actor Actor) (*models.Request, error) {
	req, err := s.registry.AddNote(trackingNumber, author, text)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.AuditActionAddNote, req.TrackingNumber, actor, map[string]string{
		"author": author,
	})
	return req, nil
}

// Get returns a single request by tracking number.
func (s *RequestService) Get(ctx context.Context, trackingNumber string) (*models.Request, error) {
	return s.registry.Get(trackingNumber)
}

// List returns requests ordered by submission time, optionally filtered by status.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) []models.Request {
	return s.registry.List(filter)
}

// Overdue returns open requests past their due date, most delinquent first.
func (s *RequestService) Overdue(ctx context.Context) []models.Request {
	return s.OverdueAsOf(ctx, s.now())
}

// OverdueAsOf evaluates the overdue set at an explicit instant.
func (s *RequestService) OverdueAsOf(ctx context.Context, asOf time.Time) []models.Request {
	return s.registry.Overdue(asOf.UTC())
}

func (s *RequestService) afterMutation(ctx context.Context, action, trackingNumber string, actor Actor, detail map[string]string) {
	s.persistSnapshot(ctx)

	if s.cache != nil {
		_ = s.cache.InvalidateStatistics(ctx)
	}

	if s.audit != nil {
		var payload []byte
		if len(detail) > 0 {
			payload, _ = json.Marshal(detail)
		}
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			OfficerID:  actor.OfficerID,
			Action:     action,
			Resource:   "request",
			ResourceID: &trackingNumber,
			Detail:     payload,
			IPAddress:  actor.IP,
			UserAgent:  actor.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record audit log",
				zap.String("action", action),
				zap.String("tracking_number", trackingNumber),
				zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(action)
	}
}

func (s *RequestService) persistSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	start := time.Now()
	err := s.snapshots.Save(ctx, s.registry.Snapshot())
	if s.metrics != nil {
		s.metrics.ObserveSnapshotSave(time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("failed to persist registry snapshot", zap.Error(err))
	}
}
