package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foia-desk-api/internal/dto"
	"github.com/noah-isme/foia-desk-api/internal/middleware"
	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/service"
	appErrors "github.com/noah-isme/foia-desk-api/pkg/errors"
)

type requestServiceMock struct {
	resp          *models.Request
	err           error
	listResp      []models.Request
	overdueResp   []models.Request
	lastRequester string
	lastOfficer   string
	lastAuthor    string
	lastText      string
	lastActor     service.Actor
	lastFilter    models.RequestFilter
	lastAsOf      *time.Time
}

func (m *requestServiceMock) Submit(ctx context.Context, requester, description string, actor service.Actor) (*models.Request, error) {
	m.lastRequester = requester
	m.lastActor = actor
	return m.resp, m.err
}

func (m *requestServiceMock) Assign(ctx context.Context, trackingNumber, officer string, actor service.Actor) (*models.Request, error) {
	m.lastOfficer = officer
	m.lastActor = actor
	return m.resp, m.err
}

func (m *requestServiceMock) Fulfill(ctx context.Context, trackingNumber string, documents []models.Document, actor service.Actor) (*models.Request, error) {
	m.lastActor = actor
	return m.resp, m.err
}

func (m *requestServiceMock) Deny(ctx context.Context, trackingNumber string, exemptions []int, reason string, actor service.Actor) (*models.Request, error) {
	m.lastActor = actor
	return m.resp, m.err
}

func (m *requestServiceMock) Appeal(ctx context.Context, trackingNumber, grounds string, actor service.Actor) (*models.Request, error) {
	m.lastActor = actor
	return m.resp, m.err
}

func (m *requestServiceMock) AddNote(ctx context.Context, trackingNumber, author, text string, actor service.Actor) (*models.Request, error) {
	m.lastAuthor = author
	m.lastText = text
	m.lastActor = actor
	return m.resp, m.err
}

func (m *requestServiceMock) Get(ctx context.Context, trackingNumber string) (*models.Request, error) {
	return m.resp, m.err
}

func (m *requestServiceMock) List(ctx context.Context, filter models.RequestFilter) []models.Request {
	m.lastFilter = filter
	return m.listResp
}

func (m *requestServiceMock) Overdue(ctx context.Context) []models.Request {
	return m.overdueResp
}

func (m *requestServiceMock) OverdueAsOf(ctx context.Context, asOf time.Time) []models.Request {
	m.lastAsOf = &asOf
	return m.overdueResp
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestRequestHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{
		resp: &models.Request{TrackingNumber: "FOIA-2026-0001", Status: models.RequestStatusSubmitted},
	}
	handler := NewRequestHandler(mockSvc)

	payload, _ := json.Marshal(dto.SubmitRequestRequest{Requester: "Jane Doe", Description: "contracts 2025"})
	c, w := newGinContext(http.MethodPost, "/requests", payload)

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "FOIA-2026-0001")
	require.Equal(t, "Jane Doe", mockSvc.lastRequester)
	require.Nil(t, mockSvc.lastActor.OfficerID)
}

func TestRequestHandlerSubmitValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "requester is required")}
	handler := NewRequestHandler(mockSvc)

	payload, _ := json.Marshal(dto.SubmitRequestRequest{Description: "contracts 2025"})
	c, w := newGinContext(http.MethodPost, "/requests", payload)

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "VALIDATION")
}

func TestRequestHandlerListStatusFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{listResp: []models.Request{{TrackingNumber: "FOIA-2026-0001"}}}
	handler := NewRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/requests?status=denied", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastFilter.Status)
	require.Equal(t, models.RequestStatusDenied, *mockSvc.lastFilter.Status)
}

func TestRequestHandlerListUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRequestHandler(&requestServiceMock{})

	c, w := newGinContext(http.MethodGet, "/requests?status=closed", nil)
	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerOverdueAsOf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{}
	handler := NewRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/requests/overdue?as_of=2026-03-15", nil)
	handler.Overdue(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastAsOf)
	require.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), *mockSvc.lastAsOf)

	c, w = newGinContext(http.MethodGet, "/requests/overdue?as_of=15-03-2026", nil)
	handler.Overdue(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "request not found")}
	handler := NewRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/requests/FOIA-2026-9999", nil)
	c.Params = gin.Params{{Key: "tracking", Value: "FOIA-2026-9999"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestHandlerDenyInvalidTransition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{err: appErrors.Clone(appErrors.ErrInvalidTransition, "cannot deny a fulfilled request")}
	handler := NewRequestHandler(mockSvc)

	payload, _ := json.Marshal(dto.DenyRequestRequest{Exemptions: []int{5}, Reason: "personnel records"})
	c, w := newGinContext(http.MethodPost, "/requests/FOIA-2026-0001/deny", payload)
	c.Params = gin.Params{{Key: "tracking", Value: "FOIA-2026-0001"}}

	handler.Deny(c)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_TRANSITION")
}

func TestRequestHandlerAddNote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &requestServiceMock{resp: &models.Request{TrackingNumber: "FOIA-2026-0001"}}
	handler := NewRequestHandler(mockSvc)

	payload, _ := json.Marshal(dto.AddNoteRequest{Text: "requester called for an update"})
	c, w := newGinContext(http.MethodPost, "/requests/FOIA-2026-0001/notes", payload)
	c.Params = gin.Params{{Key: "tracking", Value: "FOIA-2026-0001"}}
	c.Set(middleware.ContextOfficerKey, &models.JWTClaims{OfficerID: "off-1", FullName: "Dana Smith", Role: models.RoleOfficer})

	handler.AddNote(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Dana Smith", mockSvc.lastAuthor)
	require.NotNil(t, mockSvc.lastActor.OfficerID)
	require.Equal(t, "off-1", *mockSvc.lastActor.OfficerID)
}

func TestRequestHandlerAddNoteRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRequestHandler(&requestServiceMock{})

	payload, _ := json.Marshal(dto.AddNoteRequest{Text: "note"})
	c, w := newGinContext(http.MethodPost, "/requests/FOIA-2026-0001/notes", payload)
	c.Params = gin.Params{{Key: "tracking", Value: "FOIA-2026-0001"}}

	handler.AddNote(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
