package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

// ErrJobNotFound is returned when an export job id is unknown.
var ErrJobNotFound = errors.New("export job not found")

// UpdateExportJobParams carries optional fields for job updates.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	DownloadURL  *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// ExportJobStore keeps export jobs in memory. Jobs are throwaway download
// bookkeeping; the rendered files on disk outlive a restart but the job
// records do not.
type ExportJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportJobStore constructs an empty store.
func NewExportJobStore() *ExportJobStore {
	return &ExportJobStore{jobs: make(map[string]*models.ExportJob)}
}

// Create registers a new job, assigning an id and creation time when unset.
func (s *ExportJobStore) Create(ctx context.Context, job *models.ExportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

// GetByID returns a copy of the job with the given id.
func (s *ExportJobStore) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

// Update applies the provided fields to the stored job.
func (s *ExportJobStore) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.DownloadURL != nil {
		job.DownloadURL = params.DownloadURL
	}
	if params.ErrorMessage != nil {
		if *params.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			job.ErrorMessage = params.ErrorMessage
		}
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

// ListFinishedBefore returns finished or failed jobs whose completion time is
// older than the cutoff, oldest first, up to limit entries.
func (s *ExportJobStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.FinishedAt == nil || !job.FinishedAt.Before(cutoff) {
			continue
		}
		if job.Status != models.ExportStatusFinished && job.Status != models.ExportStatusFailed {
			continue
		}
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.Before(*out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a job record.
func (s *ExportJobStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}
