package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/foia-desk-api/internal/dto"
	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/service"
	appErrors "github.com/noah-isme/foia-desk-api/pkg/errors"
	"github.com/noah-isme/foia-desk-api/pkg/response"
)

type requestService interface {
	Submit(ctx context.Context, requester, description string, actor service.Actor) (*models.Request, error)
	Assign(ctx context.Context, trackingNumber, officer string, actor service.Actor) (*models.Request, error)
	Fulfill(ctx context.Context, trackingNumber string, documents []models.Document, actor service.Actor) (*models.Request, error)
	Deny(ctx context.Context, trackingNumber string, exemptions []int, reason string, actor service.Actor) (*models.Request, error)
	Appeal(ctx context.Context, trackingNumber, grounds string, actor service.Actor) (*models.Request, error)
	AddNote(ctx context.Context, trackingNumber, author, text string, actor service.Actor) (*models.Request, error)
	Get(ctx context.Context, trackingNumber string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) []models.Request
	Overdue(ctx context.Context) []models.Request
	OverdueAsOf(ctx context.Context, asOf time.Time) []models.Request
}

// RequestHandler exposes the request lifecycle endpoints.
type RequestHandler struct {
	service requestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Submit godoc
// @Summary Submit a new FOIA request
// @Description Registers a request and returns it with its tracking number
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.SubmitRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	created, err := h.service.Submit(c.Request.Context(), req.Requester, req.Description, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List requests
// @Description Requests ordered by submission time, oldest first
// @Tags Requests
// @Produce json
// @Param status query string false "Filter by stored status"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	var filter models.RequestFilter
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		upper := strings.ToUpper(status)
		if !models.ValidRequestStatus(upper) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status"))
			return
		}
		s := models.RequestStatus(upper)
		filter.Status = &s
	}
	requests := h.service.List(c.Request.Context(), filter)
	response.JSON(c, http.StatusOK, requests, nil)
}

// Overdue godoc
// @Summary List overdue requests
// @Description Open requests past their statutory deadline, most overdue first
// @Tags Requests
// @Produce json
// @Param as_of query string false "Evaluate as of this date (YYYY-MM-DD). Defaults to now"
// @Success 200 {object} response.Envelope
// @Router /requests/overdue [get]
func (h *RequestHandler) Overdue(c *gin.Context) {
	asOfStr := strings.TrimSpace(c.Query("as_of"))
	if asOfStr == "" {
		response.JSON(c, http.StatusOK, h.service.Overdue(c.Request.Context()), nil)
		return
	}
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid as_of format, expected YYYY-MM-DD"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.OverdueAsOf(c.Request.Context(), asOf), nil)
}

// Get godoc
// @Summary Get a request
// @Tags Requests
// @Produce json
// @Param tracking path string true "Tracking number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{tracking} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.service.Get(c.Request.Context(), c.Param("tracking"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Assign godoc
// @Summary Assign a request to an officer
// @Description Routes an open request; reassignment is permitted
// @Tags Requests
// @Accept json
// @Produce json
// @Param tracking path string true "Tracking number"
// @Param payload body dto.AssignRequestRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{tracking}/assign [post]
func (h *RequestHandler) Assign(c *gin.Context) {
	var req dto.AssignRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	updated, err := h.service.Assign(c.Request.Context(), c.Param("tracking"), req.Officer, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Fulfill godoc
// @Summary Fulfill a request
// @Description Releases documents and closes the request
// @Tags Requests
// @Accept json
// @Produce json
// @Param tracking path string true "Tracking number"
// @Param payload body dto.FulfillRequestRequest true "Released documents"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{tracking}/fulfill [post]
func (h *RequestHandler) Fulfill(c *gin.Context) {
	var req dto.FulfillRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid fulfillment payload"))
		return
	}
	documents := make([]models.Document, len(req.Documents))
	for i, d := range req.Documents {
		documents[i] = models.Document{
			Ref:                d.Ref,
			Description:        d.Description,
			Redacted:           d.Redacted,
			RedactionRationale: d.RedactionRationale,
		}
	}
	updated, err := h.service.Fulfill(c.Request.Context(), c.Param("tracking"), documents, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Deny godoc
// @Summary Deny a request
// @Description Closes the request citing one or more statutory exemptions
// @Tags Requests
// @Accept json
// @Produce json
// @Param tracking path string true "Tracking number"
// @Param payload body dto.DenyRequestRequest true "Denial payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{tracking}/deny [post]
func (h *RequestHandler) Deny(c *gin.Context) {
	var req dto.DenyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid denial payload"))
		return
	}
	updated, err := h.service.Deny(c.Request.Context(), c.Param("tracking"), req.Exemptions, req.Reason, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Appeal godoc
// @Summary Appeal a denial
// @Description Contests a denied request; appeals are terminal
// @Tags Requests
// @Accept json
// @Produce json
// @Param tracking path string true "Tracking number"
// @Param payload body dto.AppealRequestRequest true "Appeal payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{tracking}/appeal [post]
func (h *RequestHandler) Appeal(c *gin.Context) {
	var req dto.AppealRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appeal payload"))
		return
	}
	updated, err := h.service.Appeal(c.Request.Context(), c.Param("tracking"), req.Grounds, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// AddNote godoc
// @Summary Add an internal case note
// @Description Appends to the request's note log; the author is the authenticated officer
// @Tags Requests
// @Accept json
// @Produce json
// @Param tracking path string true "Tracking number"
// @Param payload body dto.AddNoteRequest true "Note payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{tracking}/notes [post]
func (h *RequestHandler) AddNote(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}
	updated, err := h.service.AddNote(c.Request.Context(), c.Param("tracking"), claims.FullName, req.Text, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}
