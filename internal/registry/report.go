package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

// ReportEngine derives reports from request state. It never mutates anything
// and is deterministic given a fixed instant and fixed inputs, so callers
// pass now explicitly instead of the engine reading the wall clock.
type ReportEngine struct{}

// NewReportEngine constructs a ReportEngine.
func NewReportEngine() *ReportEngine {
	return &ReportEngine{}
}

// DetailReport expands one request into its full derived view at an instant.
func (e *ReportEngine) DetailReport(req *models.Request, now time.Time) *models.RequestDetailReport {
	report := &models.RequestDetailReport{
		Request:     *req.Clone(),
		Overdue:     req.OverdueAsOf(now),
		GeneratedAt: now,
	}

	switch {
	case req.Open() && report.Overdue:
		past := req.DaysPastDue(now)
		report.DaysUntilDue = -past
		report.Timeline = fmt.Sprintf("overdue by %d days", past)
	case req.Open():
		remaining := -req.DaysPastDue(now)
		report.DaysUntilDue = remaining
		report.Timeline = fmt.Sprintf("due in %d days", remaining)
	default:
		report.Timeline = resolutionTimeline(req)
	}
	return report
}

// AgencyStatistics aggregates one consistent set of requests at an instant.
func (e *ReportEngine) AgencyStatistics(requests []models.Request, now time.Time) *models.AgencyStatistics {
	stats := &models.AgencyStatistics{
		TotalRequests:  len(requests),
		CountsByStatus: make(map[models.RequestStatus]int, len(models.RequestStatuses)),
		GeneratedAt:    now,
	}
	for _, status := range models.RequestStatuses {
		stats.CountsByStatus[status] = 0
	}

	responseDays := 0
	resolved := 0
	exemptionCounts := make(map[int]int)

	for i := range requests {
		req := &requests[i]
		stats.CountsByStatus[req.Status]++
		if req.OverdueAsOf(now) {
			stats.OverdueCount++
		}
		if req.ResolvedAt != nil {
			responseDays += int(req.ResolvedAt.Sub(req.SubmittedAt).Hours() / 24)
			resolved++
		}
		for _, code := range req.ExemptionsCited {
			exemptionCounts[code]++
		}
	}

	if resolved > 0 {
		stats.AverageResponseDays = float64(responseDays) / float64(resolved)
	}
	stats.MostCitedExemptions = rankExemptions(exemptionCounts)

	denied := stats.CountsByStatus[models.RequestStatusDenied]
	appealed := stats.CountsByStatus[models.RequestStatusAppealed]
	fulfilled := stats.CountsByStatus[models.RequestStatusFulfilled]

	// Appealed requests were denied first, so they stay in the denial
	// denominator after the status moves on.
	if denied+appealed > 0 {
		stats.AppealRate = float64(appealed) / float64(denied+appealed)
	}
	if stats.TotalRequests > 0 {
		stats.FulfillmentRate = float64(fulfilled) / float64(stats.TotalRequests)
		stats.DenialRate = float64(denied+appealed) / float64(stats.TotalRequests)
	}
	return stats
}

func rankExemptions(counts map[int]int) []models.ExemptionCount {
	ranked := make([]models.ExemptionCount, 0, len(counts))
	for code, count := range counts {
		ranked = append(ranked, models.ExemptionCount{Code: code, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Code < ranked[j].Code
	})
	return ranked
}

func resolutionTimeline(req *models.Request) string {
	if req.ResolvedAt == nil {
		return "resolved"
	}
	days := int(req.ResolvedAt.Sub(req.SubmittedAt).Hours() / 24)
	switch req.Status {
	case models.RequestStatusFulfilled:
		return fmt.Sprintf("fulfilled in %d days", days)
	case models.RequestStatusDenied:
		return fmt.Sprintf("denied in %d days", days)
	case models.RequestStatusAppealed:
		return fmt.Sprintf("under appeal; denied in %d days", days)
	default:
		return "resolved"
	}
}
