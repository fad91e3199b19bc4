package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/registry"
)

// StatsCacheKey stores the agency-wide statistics payload.
const StatsCacheKey = "stats:agency"

type reportRegistry interface {
	Get(trackingNumber string) (*models.Request, error)
	List(filter models.RequestFilter) []models.Request
}

// ReportServiceParams wires the report service dependencies.
type ReportServiceParams struct {
	Registry reportRegistry
	Engine   *registry.ReportEngine
	Cache    *CacheService
	Logger   *zap.Logger
	CacheTTL time.Duration
	Clock    func() time.Time
}

// ReportService derives detail reports and agency statistics from the
// registry. Statistics are cached because they scan every request; detail
// reports are cheap and always computed fresh.
type ReportService struct {
	registry reportRegistry
	engine   *registry.ReportEngine
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(params ReportServiceParams) *ReportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := params.Engine
	if engine == nil {
		engine = registry.NewReportEngine()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportService{
		registry: params.Registry,
		engine:   engine,
		cache:    params.Cache,
		logger:   logger,
		cacheTTL: ttl,
		now:      now,
	}
}

// DetailReport renders the per-request report for the given tracking number.
func (s *ReportService) DetailReport(ctx context.Context, trackingNumber string) (*models.RequestDetailReport, error) {
	req, err := s.registry.Get(trackingNumber)
	if err != nil {
		return nil, err
	}
	return s.engine.DetailReport(req, s.now().UTC()), nil
}

// Statistics returns the agency-wide aggregate and whether it was served
// from cache.
func (s *ReportService) Statistics(ctx context.Context) (*models.AgencyStatistics, bool, error) {
	if s.cache.Enabled() {
		var cached models.AgencyStatistics
		hit, err := s.cache.Get(ctx, StatsCacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	stats := s.engine.AgencyStatistics(s.registry.List(models.RequestFilter{}), s.now().UTC())

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, StatsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache statistics", zap.Error(err))
		}
	}
	return stats, false, nil
}
