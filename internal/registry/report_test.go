package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

func openRequest(tn string, submitted time.Time) models.Request {
	return models.Request{
		TrackingNumber: tn,
		Requester:      "Alice",
		Description:    "budget documents",
		Status:         models.RequestStatusSubmitted,
		SubmittedAt:    submitted,
		DueAt:          submitted.AddDate(0, 0, 20),
	}
}

func resolvedRequest(tn string, status models.RequestStatus, submitted time.Time, afterDays int) models.Request {
	req := openRequest(tn, submitted)
	req.Status = status
	resolved := submitted.AddDate(0, 0, afterDays)
	req.ResolvedAt = &resolved
	return req
}

func TestDetailReportBeforeDeadline(t *testing.T) {
	engine := NewReportEngine()
	submitted := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	req := openRequest("FOIA-2024-000001", submitted)

	report := engine.DetailReport(&req, submitted.AddDate(0, 0, 15))
	require.False(t, report.Overdue)
	require.Equal(t, 5, report.DaysUntilDue)
	require.Equal(t, "due in 5 days", report.Timeline)
	require.Equal(t, req.TrackingNumber, report.Request.TrackingNumber)
	require.Len(t, report.Request.Notes, 0)
}

func TestDetailReportOverdue(t *testing.T) {
	engine := NewReportEngine()
	submitted := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	req := openRequest("FOIA-2024-000001", submitted)
	req.Notes = models.NoteList{
		{ID: "n1", Author: "officer1", Text: "checking archives", CreatedAt: submitted},
	}

	report := engine.DetailReport(&req, submitted.AddDate(0, 0, 23))
	require.True(t, report.Overdue)
	require.Equal(t, -3, report.DaysUntilDue)
	require.Equal(t, "overdue by 3 days", report.Timeline)
	require.Len(t, report.Request.Notes, 1, "full note history included")
}

func TestDetailReportResolvedTimelines(t *testing.T) {
	engine := NewReportEngine()
	submitted := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := submitted.AddDate(0, 2, 0)

	fulfilled := resolvedRequest("FOIA-2024-000001", models.RequestStatusFulfilled, submitted, 12)
	report := engine.DetailReport(&fulfilled, now)
	require.False(t, report.Overdue, "resolved requests are never overdue")
	require.Equal(t, 0, report.DaysUntilDue)
	require.Equal(t, "fulfilled in 12 days", report.Timeline)

	denied := resolvedRequest("FOIA-2024-000002", models.RequestStatusDenied, submitted, 5)
	require.Equal(t, "denied in 5 days", engine.DetailReport(&denied, now).Timeline)

	appealed := resolvedRequest("FOIA-2024-000003", models.RequestStatusAppealed, submitted, 5)
	require.Equal(t, "under appeal; denied in 5 days", engine.DetailReport(&appealed, now).Timeline)
}

func TestDetailReportIsolatedFromInput(t *testing.T) {
	engine := NewReportEngine()
	submitted := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	req := openRequest("FOIA-2024-000001", submitted)
	req.Notes = models.NoteList{{ID: "n1", Author: "officer1", Text: "original", CreatedAt: submitted}}

	report := engine.DetailReport(&req, submitted)
	req.Notes[0].Text = "mutated"
	require.Equal(t, "original", report.Request.Notes[0].Text)
}

func TestAgencyStatisticsCountsAndOverdue(t *testing.T) {
	engine := NewReportEngine()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := base.AddDate(0, 0, 25)

	requests := []models.Request{
		openRequest("FOIA-2024-000001", base),
		openRequest("FOIA-2024-000002", now.AddDate(0, 0, -1)),
		resolvedRequest("FOIA-2024-000003", models.RequestStatusFulfilled, base, 10),
		resolvedRequest("FOIA-2024-000004", models.RequestStatusDenied, base, 20),
		resolvedRequest("FOIA-2024-000005", models.RequestStatusAppealed, base, 20),
	}

	stats := engine.AgencyStatistics(requests, now)
	require.Equal(t, 5, stats.TotalRequests)
	require.Equal(t, 2, stats.CountsByStatus[models.RequestStatusSubmitted])
	require.Equal(t, 0, stats.CountsByStatus[models.RequestStatusAssigned], "all statuses are always present")
	require.Equal(t, 1, stats.CountsByStatus[models.RequestStatusFulfilled])
	require.Equal(t, 1, stats.CountsByStatus[models.RequestStatusDenied])
	require.Equal(t, 1, stats.CountsByStatus[models.RequestStatusAppealed])
	require.Equal(t, 1, stats.OverdueCount, "only the aged open request is overdue")
	require.Equal(t, now, stats.GeneratedAt)
}

func TestAgencyStatisticsAverageResponseDays(t *testing.T) {
	engine := NewReportEngine()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	requests := []models.Request{
		resolvedRequest("FOIA-2024-000001", models.RequestStatusFulfilled, base, 10),
		resolvedRequest("FOIA-2024-000002", models.RequestStatusDenied, base, 20),
		openRequest("FOIA-2024-000003", base),
	}

	stats := engine.AgencyStatistics(requests, base.AddDate(0, 0, 30))
	require.InDelta(t, 15.0, stats.AverageResponseDays, 1e-9, "open requests are excluded from the average")
}

func TestAgencyStatisticsAppealRate(t *testing.T) {
	engine := NewReportEngine()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	none := engine.AgencyStatistics([]models.Request{
		openRequest("FOIA-2024-000001", base),
		resolvedRequest("FOIA-2024-000002", models.RequestStatusFulfilled, base, 10),
	}, base)
	require.Zero(t, none.AppealRate, "no denials means rate 0, not a division fault")

	mixed := engine.AgencyStatistics([]models.Request{
		resolvedRequest("FOIA-2024-000003", models.RequestStatusDenied, base, 5),
		resolvedRequest("FOIA-2024-000004", models.RequestStatusAppealed, base, 5),
	}, base)
	require.InDelta(t, 0.5, mixed.AppealRate, 1e-9, "appealed requests stay in the denominator")
}

func TestAgencyStatisticsExemptionRanking(t *testing.T) {
	engine := NewReportEngine()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first := resolvedRequest("FOIA-2024-000001", models.RequestStatusDenied, base, 5)
	first.ExemptionsCited = models.ExemptionCodes{5, 7}
	second := resolvedRequest("FOIA-2024-000002", models.RequestStatusDenied, base, 5)
	second.ExemptionsCited = models.ExemptionCodes{5}
	third := resolvedRequest("FOIA-2024-000003", models.RequestStatusAppealed, base, 5)
	third.ExemptionsCited = models.ExemptionCodes{1, 7}

	stats := engine.AgencyStatistics([]models.Request{first, second, third}, base)
	require.Equal(t, []models.ExemptionCount{
		{Code: 5, Count: 2},
		{Code: 7, Count: 2},
		{Code: 1, Count: 1},
	}, stats.MostCitedExemptions, "frequency descending, ties by code ascending")
}

func TestAgencyStatisticsRates(t *testing.T) {
	engine := NewReportEngine()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	empty := engine.AgencyStatistics(nil, base)
	require.Zero(t, empty.TotalRequests)
	require.Zero(t, empty.FulfillmentRate)
	require.Zero(t, empty.DenialRate)
	require.Zero(t, empty.AverageResponseDays)
	require.Empty(t, empty.MostCitedExemptions)

	stats := engine.AgencyStatistics([]models.Request{
		resolvedRequest("FOIA-2024-000001", models.RequestStatusFulfilled, base, 10),
		resolvedRequest("FOIA-2024-000002", models.RequestStatusDenied, base, 5),
		resolvedRequest("FOIA-2024-000003", models.RequestStatusAppealed, base, 5),
		openRequest("FOIA-2024-000004", base),
	}, base)
	require.InDelta(t, 0.25, stats.FulfillmentRate, 1e-9)
	require.InDelta(t, 0.5, stats.DenialRate, 1e-9, "appealed requests count as denials")
}
