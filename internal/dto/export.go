package dto

import (
	"time"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

// ExportRequest captures POST /reports/export payload.
type ExportRequest struct {
	Type   string `json:"type"`
	Format string `json:"format"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID          string              `json:"id"`
	Type        models.ExportType   `json:"type"`
	Format      models.ExportFormat `json:"format"`
	Status      models.ExportStatus `json:"status"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	Error       *string             `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	FinishedAt  *time.Time          `json:"finishedAt,omitempty"`
}
