package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
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

type exportServiceMock struct {
	createResp    *models.ExportJob
	createErr     error
	statusResp    *models.ExportJob
	statusErr     error
	download      *service.ExportDownload
	downloadErr   error
	lastCreatedBy string
}

func (m *exportServiceMock) CreateJob(ctx context.Context, exportType, format, createdBy string) (*models.ExportJob, error) {
	m.lastCreatedBy = createdBy
	return m.createResp, m.createErr
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id string) (*models.ExportJob, error) {
	return m.statusResp, m.statusErr
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func TestExportHandlerCreateExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		createResp: &models.ExportJob{ID: "job-1", Status: models.ExportStatusQueued},
	}
	handler := NewExportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ExportRequest{Type: "requests", Format: "csv"})
	c, w := newGinContext(http.MethodPost, "/reports/export", payload)
	c.Set(middleware.ContextOfficerKey, &models.JWTClaims{OfficerID: "off-1", Role: models.RoleAdmin})

	handler.CreateExport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), "job-1")
	require.Equal(t, "off-1", mockSvc.lastCreatedBy)
}

func TestExportHandlerCreateExportRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	payload, _ := json.Marshal(dto.ExportRequest{Type: "requests", Format: "csv"})
	c, w := newGinContext(http.MethodPost, "/reports/export", payload)

	handler.CreateExport(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportHandlerExportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	url := "http://localhost:8080/api/v1/export/token-1"
	mockSvc := &exportServiceMock{
		statusResp: &models.ExportJob{
			ID:          "job-1",
			Type:        models.ExportTypeOverdue,
			Format:      models.ExportFormatCSV,
			Status:      models.ExportStatusFinished,
			DownloadURL: &url,
		},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/export/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextOfficerKey, &models.JWTClaims{OfficerID: "off-1", Role: models.RoleOfficer})

	handler.ExportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "token-1")
	require.Contains(t, w.Body.String(), "FINISHED")
}

func TestExportHandlerExportStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{statusErr: appErrors.Clone(appErrors.ErrNotFound, "export job not found")}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/export/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.ExportStatus(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "export*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("Tracking Number,Requester\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "requests_20260821.csv",
			Format:    models.ExportFormatCSV,
			MimeType:  "text/csv",
			SizeBytes: int64(len("Tracking Number,Requester\n")),
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/export/token-1", nil)
	c.Params = gin.Params{{Key: "token", Value: "token-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "requests_20260821.csv")
	require.Contains(t, w.Body.String(), "Tracking Number")
}

func TestExportHandlerDownloadForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/export/bad-token", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad-token"}}

	handler.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
