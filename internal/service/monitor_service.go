package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

type monitorRegistry interface {
	List(filter models.RequestFilter) []models.Request
	Overdue(asOf time.Time) []models.Request
}

// MonitorServiceParams wires the monitor dependencies.
type MonitorServiceParams struct {
	Registry monitorRegistry
	Metrics  *MetricsService
	Logger   *zap.Logger
	Interval time.Duration
	Clock    func() time.Time
}

// MonitorService periodically sweeps the registry, publishing open and
// overdue gauges and logging when requests slip past their due date.
type MonitorService struct {
	registry monitorRegistry
	metrics  *MetricsService
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// NewMonitorService constructs the monitor.
func NewMonitorService(params MonitorServiceParams) *MonitorService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &MonitorService{
		registry: params.Registry,
		metrics:  params.Metrics,
		logger:   logger,
		interval: interval,
		now:      now,
	}
}

// Start sweeps once immediately, then on every tick until ctx is cancelled.
func (s *MonitorService) Start(ctx context.Context) {
	s.Sweep()
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Sweep recomputes the gauges from the current registry contents and returns
// the open and overdue counts.
func (s *MonitorService) Sweep() (open, overdue int) {
	asOf := s.now().UTC()
	for _, req := range s.registry.List(models.RequestFilter{}) {
		if req.Open() {
			open++
		}
	}
	late := s.registry.Overdue(asOf)
	overdue = len(late)

	if s.metrics != nil {
		s.metrics.SetRequestGauges(open, overdue)
	}
	if overdue > 0 {
		s.logger.Warn("requests past statutory deadline",
			zap.Int("count", overdue),
			zap.String("most_delinquent", late[0].TrackingNumber),
			zap.Int("days_past_due", late[0].DaysPastDue(asOf)))
	}
	return open, overdue
}
