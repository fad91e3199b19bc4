package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/foia-desk-api/internal/middleware"
	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/pkg/response"
)

type reportService interface {
	DetailReport(ctx context.Context, trackingNumber string) (*models.RequestDetailReport, error)
	Statistics(ctx context.Context) (*models.AgencyStatistics, bool, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// DetailReport godoc
// @Summary Request detail report
// @Description Full lifecycle view of one request including overdue standing
// @Tags Reports
// @Produce json
// @Param tracking path string true "Tracking number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{tracking}/report [get]
func (h *ReportHandler) DetailReport(c *gin.Context) {
	report, err := h.service.DetailReport(c.Request.Context(), c.Param("tracking"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Statistics godoc
// @Summary Agency-wide statistics
// @Description Aggregate counts, rates, and exemption citation frequencies
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *ReportHandler) Statistics(c *gin.Context) {
	start := time.Now()
	stats, cacheHit, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, stats, nil, meta)
}
