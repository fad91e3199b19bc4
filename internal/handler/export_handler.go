package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/foia-desk-api/internal/dto"
	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/service"
	appErrors "github.com/noah-isme/foia-desk-api/pkg/errors"
	"github.com/noah-isme/foia-desk-api/pkg/response"
)

type exportService interface {
	CreateJob(ctx context.Context, exportType, format, createdBy string) (*models.ExportJob, error)
	GetStatus(ctx context.Context, id string) (*models.ExportJob, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler manages asynchronous export endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// CreateExport godoc
// @Summary Queue a dataset export
// @Description Renders requests, overdue, statistics, or exemptions as CSV or PDF
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports/export [post]
func (h *ExportHandler) CreateExport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), req.Type, req.Format, claims.OfficerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, dto.ExportJobResponse{ID: job.ID, Status: job.Status}, nil)
}

// ExportStatus godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/export/{id} [get]
func (h *ExportHandler) ExportStatus(c *gin.Context) {
	job, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ExportStatusResponse{
		ID:          job.ID,
		Type:        job.Type,
		Format:      job.Format,
		Status:      job.Status,
		DownloadURL: job.DownloadURL,
		Error:       job.ErrorMessage,
		CreatedAt:   job.CreatedAt,
		FinishedAt:  job.FinishedAt,
	}, nil)
}

// Download godoc
// @Summary Download a rendered export via signed token
// @Description The token is the credential; no session is required
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}
