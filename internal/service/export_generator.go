package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/registry"
	"github.com/noah-isme/foia-desk-api/pkg/export"
	"github.com/noah-isme/foia-desk-api/pkg/storage"
)

type exportRegistry interface {
	List(filter models.RequestFilter) []models.Request
	Overdue(asOf time.Time) []models.Request
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportGeneratorConfig tunes export generation.
type ExportGeneratorConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportGenerator builds datasets from the registry and persists rendered
// files, returning a signed download token.
type ExportGenerator struct {
	registry exportRegistry
	engine   *registry.ReportEngine
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportGeneratorConfig
	now      func() time.Time
}

// NewExportGenerator constructs an ExportGenerator.
func NewExportGenerator(reg exportRegistry, engine *registry.ReportEngine, store fileStorage, signer *storage.SignedURLSigner, cfg ExportGeneratorConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, clock func() time.Time) *ExportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if engine == nil {
		engine = registry.NewReportEngine()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if clock == nil {
		clock = time.Now
	}
	return &ExportGenerator{
		registry: reg,
		engine:   engine,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      clock,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (g *ExportGenerator) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := g.buildDataset(job.Type)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = g.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = g.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := g.buildFilename(job)
	relPath, err := g.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := g.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(g.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (g *ExportGenerator) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return g.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (g *ExportGenerator) Open(relPath string) (*os.File, error) {
	return g.storage.Open(relPath)
}

// Delete removes a stored export file.
func (g *ExportGenerator) Delete(relPath string) error {
	return g.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (g *ExportGenerator) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = g.cfg.ResultTTL
	}
	return g.storage.CleanupOlderThan(ttl)
}

func (g *ExportGenerator) buildFilename(job *models.ExportJob) string {
	timestamp := g.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", job.Type, timestamp, job.Format)
}

func (g *ExportGenerator) buildDataset(exportType models.ExportType) (export.Dataset, string, error) {
	switch exportType {
	case models.ExportTypeRequests:
		return g.buildRequestsDataset()
	case models.ExportTypeOverdue:
		return g.buildOverdueDataset()
	case models.ExportTypeStatistics:
		return g.buildStatisticsDataset()
	case models.ExportTypeExemptions:
		return g.buildExemptionsDataset()
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", exportType)
	}
}

func (g *ExportGenerator) buildRequestsDataset() (export.Dataset, string, error) {
	requests := g.registry.List(models.RequestFilter{})
	rows := make([]map[string]string, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		rows = append(rows, map[string]string{
			"Tracking Number":  req.TrackingNumber,
			"Requester":        req.Requester,
			"Status":           string(req.Status),
			"Assigned Officer": req.AssignedOfficer,
			"Submitted":        formatExportTime(&req.SubmittedAt),
			"Due":              formatExportTime(&req.DueAt),
			"Resolved":         formatExportTime(req.ResolvedAt),
		})
	}
	dataset := export.Dataset{
		Headers:    []string{"Tracking Number", "Requester", "Status", "Assigned Officer", "Submitted", "Due", "Resolved"},
		Rows:       rows,
		FooterNote: g.footerNote(),
	}
	return dataset, "FOIA Request Register", nil
}

func (g *ExportGenerator) buildOverdueDataset() (export.Dataset, string, error) {
	asOf := g.now().UTC()
	overdue := g.registry.Overdue(asOf)
	rows := make([]map[string]string, 0, len(overdue))
	for i := range overdue {
		req := &overdue[i]
		rows = append(rows, map[string]string{
			"Tracking Number":  req.TrackingNumber,
			"Requester":        req.Requester,
			"Assigned Officer": req.AssignedOfficer,
			"Due":              formatExportTime(&req.DueAt),
			"Days Past Due":    strconv.Itoa(req.DaysPastDue(asOf)),
		})
	}
	dataset := export.Dataset{
		Headers:    []string{"Tracking Number", "Requester", "Assigned Officer", "Due", "Days Past Due"},
		Rows:       rows,
		FooterNote: g.footerNote(),
	}
	return dataset, "Overdue FOIA Requests", nil
}

func (g *ExportGenerator) buildStatisticsDataset() (export.Dataset, string, error) {
	stats := g.engine.AgencyStatistics(g.registry.List(models.RequestFilter{}), g.now().UTC())
	rows := []map[string]string{
		{"Metric": "Total Requests", "Value": strconv.Itoa(stats.TotalRequests)},
		{"Metric": "Overdue Requests", "Value": strconv.Itoa(stats.OverdueCount)},
		{"Metric": "Average Response Days", "Value": fmt.Sprintf("%.2f", stats.AverageResponseDays)},
		{"Metric": "Fulfillment Rate", "Value": fmt.Sprintf("%.2f", stats.FulfillmentRate)},
		{"Metric": "Denial Rate", "Value": fmt.Sprintf("%.2f", stats.DenialRate)},
		{"Metric": "Appeal Rate", "Value": fmt.Sprintf("%.2f", stats.AppealRate)},
	}
	for _, status := range models.RequestStatuses {
		rows = append(rows, map[string]string{
			"Metric": fmt.Sprintf("Requests %s", status),
			"Value":  strconv.Itoa(stats.CountsByStatus[status]),
		})
	}
	dataset := export.Dataset{
		Headers:    []string{"Metric", "Value"},
		Rows:       rows,
		FooterNote: g.footerNote(),
	}
	return dataset, "Agency FOIA Statistics", nil
}

func (g *ExportGenerator) buildExemptionsDataset() (export.Dataset, string, error) {
	stats := g.engine.AgencyStatistics(g.registry.List(models.RequestFilter{}), g.now().UTC())
	rows := make([]map[string]string, 0, len(stats.MostCitedExemptions))
	for _, entry := range stats.MostCitedExemptions {
		rows = append(rows, map[string]string{
			"Exemption Code": strconv.Itoa(entry.Code),
			"Citations":      strconv.Itoa(entry.Count),
		})
	}
	dataset := export.Dataset{
		Headers:    []string{"Exemption Code", "Citations"},
		Rows:       rows,
		FooterNote: g.footerNote(),
	}
	return dataset, "Cited FOIA Exemptions", nil
}

func (g *ExportGenerator) footerNote() string {
	return fmt.Sprintf("Generated at %s", g.now().UTC().Format(time.RFC3339))
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
