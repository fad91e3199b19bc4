package models

import "time"

// ExportType enumerates exportable datasets.
type ExportType string

const (
	ExportTypeRequests   ExportType = "requests"
	ExportTypeOverdue    ExportType = "overdue"
	ExportTypeStatistics ExportType = "statistics"
	ExportTypeExemptions ExportType = "exemptions"
)

// ExportFormat enumerates supported output formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background export lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is the operational record of one asynchronous export. Jobs are
// held in memory only; registry snapshots cover request state, not job
// bookkeeping.
type ExportJob struct {
	ID           string       `json:"id"`
	Type         ExportType   `json:"type"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	DownloadURL  *string      `json:"download_url,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

// ValidExportType reports whether raw names an exportable dataset.
func ValidExportType(raw string) bool {
	switch ExportType(raw) {
	case ExportTypeRequests, ExportTypeOverdue, ExportTypeStatistics, ExportTypeExemptions:
		return true
	default:
		return false
	}
}

// ValidExportFormat reports whether raw names a supported format.
func ValidExportFormat(raw string) bool {
	switch ExportFormat(raw) {
	case ExportFormatCSV, ExportFormatPDF:
		return true
	default:
		return false
	}
}
