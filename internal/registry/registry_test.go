package registry

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foia-desk-api/internal/models"
	appErrors "github.com/noah-isme/foia-desk-api/pkg/errors"
)

func requireCode(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, want, appErr.Code)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSubmitGeneratesUniqueTrackingAndDueDate(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{Clock: fixedClock(start)})

	pattern := regexp.MustCompile(`^FOIA-2024-[0-9A-F]{6}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		req, err := reg.Submit("Alice Example", "budget documents")
		require.NoError(t, err)
		require.Regexp(t, pattern, req.TrackingNumber)
		require.Equal(t, models.RequestStatusSubmitted, req.Status)
		require.Equal(t, start, req.SubmittedAt)
		require.Equal(t, start.AddDate(0, 0, 20), req.DueAt)

		_, dup := seen[req.TrackingNumber]
		require.False(t, dup, "tracking number %s issued twice", req.TrackingNumber)
		seen[req.TrackingNumber] = struct{}{}
	}
	require.Equal(t, 50, reg.Len())
}

func TestSubmitHonorsConfiguredWindowAndPrefix(t *testing.T) {
	start := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{
		ResponseWindowDays: 10,
		TrackingPrefix:     "PRA",
		Clock:              fixedClock(start),
	})

	req, err := reg.Submit("Bob", "contracts")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^PRA-2024-[0-9A-F]{6}$`), req.TrackingNumber)
	require.Equal(t, start.AddDate(0, 0, 10), req.DueAt)
}

func TestSubmitValidatesInput(t *testing.T) {
	reg := NewRequestRegistry(Config{})

	_, err := reg.Submit("", "budget documents")
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.Submit("Alice", "   ")
	requireCode(t, err, appErrors.ErrValidation.Code)

	require.Equal(t, 0, reg.Len())
}

func TestAssignAndReassign(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	assigned, err := reg.Assign(req.TrackingNumber, "officer1")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusAssigned, assigned.Status)
	require.Equal(t, "officer1", assigned.AssignedOfficer)

	reassigned, err := reg.Assign(req.TrackingNumber, "officer2")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusAssigned, reassigned.Status)
	require.Equal(t, "officer2", reassigned.AssignedOfficer)
}

func TestAssignUnknownTrackingNumber(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	_, err := reg.Assign("FOIA-2024-ABCDEF", "officer1")
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestTerminalStatusRejectsFurtherTransitions(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)
	_, err = reg.Assign(req.TrackingNumber, "officer1")
	require.NoError(t, err)
	_, err = reg.Fulfill(req.TrackingNumber, []models.Document{{Ref: "doc1.pdf"}})
	require.NoError(t, err)

	_, err = reg.Assign(req.TrackingNumber, "officer2")
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)

	_, err = reg.Fulfill(req.TrackingNumber, []models.Document{{Ref: "doc2.pdf"}})
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)

	_, err = reg.Deny(req.TrackingNumber, []int{5}, "privacy")
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)

	got, err := reg.Get(req.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusFulfilled, got.Status)
}

func TestFulfillValidatesDocuments(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	_, err = reg.Fulfill(req.TrackingNumber, nil)
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.Fulfill(req.TrackingNumber, []models.Document{{Ref: ""}})
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.Fulfill(req.TrackingNumber, []models.Document{
		{Ref: "doc1.pdf"},
		{Ref: "doc2.pdf", Redacted: true},
	})
	requireCode(t, err, appErrors.ErrValidation.Code)

	got, err := reg.Get(req.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusSubmitted, got.Status)
	require.Empty(t, got.Documents)
	require.Nil(t, got.ResolvedAt)
}

func TestFulfillRecordsDocumentsAndResolution(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{Clock: func() time.Time { return now }})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	now = now.AddDate(0, 0, 12)
	docs := []models.Document{
		{Ref: "doc1.pdf", Description: "FY24 budget"},
		{Ref: "doc2.pdf", Redacted: true, RedactionRationale: "personnel data"},
	}
	fulfilled, err := reg.Fulfill(req.TrackingNumber, docs)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusFulfilled, fulfilled.Status)
	require.Len(t, fulfilled.Documents, 2)
	require.Equal(t, "doc1.pdf", fulfilled.Documents[0].Ref)
	require.NotNil(t, fulfilled.ResolvedAt)
	require.Equal(t, now, *fulfilled.ResolvedAt)
}

func TestDenyValidationLeavesStatusUnchanged(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	_, err = reg.Deny(req.TrackingNumber, nil, "privacy")
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.Deny(req.TrackingNumber, []int{10}, "privacy")
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.Deny(req.TrackingNumber, []int{0}, "privacy")
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.Deny(req.TrackingNumber, []int{5}, "  ")
	requireCode(t, err, appErrors.ErrValidation.Code)

	got, err := reg.Get(req.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusSubmitted, got.Status)
	require.Empty(t, got.ExemptionsCited)
	require.Empty(t, got.DenialReason)
}

func TestDenyRecordsSortedUniqueExemptions(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	denied, err := reg.Deny(req.TrackingNumber, []int{5, 1, 5, 3}, "privacy")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusDenied, denied.Status)
	require.Equal(t, models.ExemptionCodes{1, 3, 5}, denied.ExemptionsCited)
	require.Equal(t, "privacy", denied.DenialReason)
	require.NotNil(t, denied.ResolvedAt)
}

func TestAppealOnlyFromDenied(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	_, err = reg.Appeal(req.TrackingNumber, "improper exemption")
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)

	got, err := reg.Get(req.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusSubmitted, got.Status)

	_, err = reg.Deny(req.TrackingNumber, []int{5}, "privacy")
	require.NoError(t, err)

	_, err = reg.Appeal(req.TrackingNumber, "   ")
	requireCode(t, err, appErrors.ErrValidation.Code)

	appealed, err := reg.Appeal(req.TrackingNumber, "improper exemption")
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusAppealed, appealed.Status)
	require.Equal(t, "improper exemption", appealed.AppealGrounds)
	require.NotNil(t, appealed.AppealedAt)
	require.NotNil(t, appealed.ResolvedAt, "denial resolution timestamp is retained")

	_, err = reg.Deny(req.TrackingNumber, []int{5}, "privacy")
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)

	_, err = reg.Appeal(req.TrackingNumber, "again")
	requireCode(t, err, appErrors.ErrInvalidTransition.Code)
}

func TestAddNotePermittedInAnyStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{Clock: func() time.Time { return now }})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	_, err = reg.AddNote(req.TrackingNumber, "officer1", "")
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.AddNote(req.TrackingNumber, "", "checking archives")
	requireCode(t, err, appErrors.ErrValidation.Code)

	_, err = reg.AddNote(req.TrackingNumber, "officer1", "checking archives")
	require.NoError(t, err)

	_, err = reg.Fulfill(req.TrackingNumber, []models.Document{{Ref: "doc1.pdf"}})
	require.NoError(t, err)

	now = now.Add(time.Hour)
	updated, err := reg.AddNote(req.TrackingNumber, "officer2", "released in full")
	require.NoError(t, err)
	require.Len(t, updated.Notes, 2)
	require.Equal(t, "checking archives", updated.Notes[0].Text)
	require.Equal(t, "officer1", updated.Notes[0].Author)
	require.Equal(t, "released in full", updated.Notes[1].Text)
	require.Equal(t, now, updated.Notes[1].CreatedAt)
	require.NotEmpty(t, updated.Notes[0].ID)
}

func TestAddNoteUnknownTrackingNumber(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	_, err := reg.AddNote("FOIA-2024-ABCDEF", "officer1", "text")
	requireCode(t, err, appErrors.ErrNotFound.Code)
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	reg := NewRequestRegistry(Config{})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)
	_, err = reg.Deny(req.TrackingNumber, []int{5}, "privacy")
	require.NoError(t, err)

	first, err := reg.Get(req.TrackingNumber)
	require.NoError(t, err)
	first.Requester = "tampered"
	first.ExemptionsCited[0] = 9
	first.Status = models.RequestStatusFulfilled

	second, err := reg.Get(req.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, "Alice", second.Requester)
	require.Equal(t, models.ExemptionCodes{5}, second.ExemptionsCited)
	require.Equal(t, models.RequestStatusDenied, second.Status)
}

func TestListOrdersBySubmissionAndFilters(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{})
	err := reg.Restore(&models.RegistrySnapshot{Requests: []models.Request{
		{
			TrackingNumber: "FOIA-2024-00000C",
			Requester:      "Carol",
			Description:    "contracts",
			Status:         models.RequestStatusSubmitted,
			SubmittedAt:    base.AddDate(0, 0, 2),
			DueAt:          base.AddDate(0, 0, 22),
		},
		{
			TrackingNumber: "FOIA-2024-00000B",
			Requester:      "Bob",
			Description:    "emails",
			Status:         models.RequestStatusFulfilled,
			SubmittedAt:    base,
			DueAt:          base.AddDate(0, 0, 20),
		},
		{
			TrackingNumber: "FOIA-2024-00000A",
			Requester:      "Alice",
			Description:    "budget",
			Status:         models.RequestStatusSubmitted,
			SubmittedAt:    base,
			DueAt:          base.AddDate(0, 0, 20),
		},
	}})
	require.NoError(t, err)

	all := reg.List(models.RequestFilter{})
	require.Len(t, all, 3)
	require.Equal(t, "FOIA-2024-00000A", all[0].TrackingNumber)
	require.Equal(t, "FOIA-2024-00000B", all[1].TrackingNumber)
	require.Equal(t, "FOIA-2024-00000C", all[2].TrackingNumber)

	submitted := models.RequestStatusSubmitted
	open := reg.List(models.RequestFilter{Status: &submitted})
	require.Len(t, open, 2)
	require.Equal(t, "FOIA-2024-00000A", open[0].TrackingNumber)
	require.Equal(t, "FOIA-2024-00000C", open[1].TrackingNumber)
}

func TestOverdueUsesStrictInequality(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{Clock: fixedClock(start)})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)

	require.Empty(t, reg.Overdue(start.AddDate(0, 0, 19)))
	require.Empty(t, reg.Overdue(req.DueAt), "a request exactly at due_at is not overdue")

	late := reg.Overdue(start.AddDate(0, 0, 21))
	require.Len(t, late, 1)
	require.Equal(t, req.TrackingNumber, late[0].TrackingNumber)
}

func TestOverdueExcludesResolvedRequests(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{Clock: fixedClock(start)})
	req, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)
	_, err = reg.Assign(req.TrackingNumber, "officer1")
	require.NoError(t, err)
	_, err = reg.Fulfill(req.TrackingNumber, []models.Document{{Ref: "doc1.pdf"}})
	require.NoError(t, err)

	require.Empty(t, reg.Overdue(start.AddDate(0, 1, 0)), "fulfilled requests never show up overdue")
}

func TestOverdueOrdering(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{})
	err := reg.Restore(&models.RegistrySnapshot{Requests: []models.Request{
		{
			TrackingNumber: "FOIA-2024-00000B",
			Requester:      "Bob",
			Description:    "emails",
			Status:         models.RequestStatusSubmitted,
			SubmittedAt:    base,
			DueAt:          base.AddDate(0, 0, 20),
		},
		{
			TrackingNumber: "FOIA-2024-00000A",
			Requester:      "Alice",
			Description:    "budget",
			Status:         models.RequestStatusAssigned,
			SubmittedAt:    base,
			DueAt:          base.AddDate(0, 0, 20),
		},
		{
			TrackingNumber: "FOIA-2024-00000C",
			Requester:      "Carol",
			Description:    "contracts",
			Status:         models.RequestStatusSubmitted,
			SubmittedAt:    base.AddDate(0, 0, -10),
			DueAt:          base.AddDate(0, 0, 10),
		},
	}})
	require.NoError(t, err)

	asOf := base.AddDate(0, 0, 25)
	late := reg.Overdue(asOf)
	require.Len(t, late, 3)
	require.Equal(t, "FOIA-2024-00000C", late[0].TrackingNumber, "15 days late sorts first")
	require.Equal(t, "FOIA-2024-00000A", late[1].TrackingNumber, "5 days late, tie broken by tracking number")
	require.Equal(t, "FOIA-2024-00000B", late[2].TrackingNumber)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{Clock: func() time.Time { return now }})

	first, err := reg.Submit("Alice", "budget documents")
	require.NoError(t, err)
	_, err = reg.AddNote(first.TrackingNumber, "officer1", "checking archives")
	require.NoError(t, err)
	now = now.AddDate(0, 0, 5)
	_, err = reg.Deny(first.TrackingNumber, []int{2, 7}, "active investigation")
	require.NoError(t, err)
	_, err = reg.Appeal(first.TrackingNumber, "overbroad")
	require.NoError(t, err)

	second, err := reg.Submit("Bob", "emails")
	require.NoError(t, err)
	_, err = reg.Fulfill(second.TrackingNumber, []models.Document{
		{Ref: "doc1.pdf", Redacted: true, RedactionRationale: "personnel data"},
	})
	require.NoError(t, err)

	snap := reg.Snapshot()
	require.Len(t, snap.Requests, 2)

	restored := NewRequestRegistry(Config{})
	require.NoError(t, restored.Restore(snap))

	for _, tn := range []string{first.TrackingNumber, second.TrackingNumber} {
		want, err := reg.Get(tn)
		require.NoError(t, err)
		got, err := restored.Get(tn)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	// The snapshot is a copy, so mutating it cannot reach either registry.
	snap.Requests[0].Status = models.RequestStatusFulfilled
	got, err := restored.Get(snap.Requests[0].TrackingNumber)
	require.NoError(t, err)
	require.NotEqual(t, models.RequestStatusFulfilled, got.Status)
}

func TestRestoreRejectsDuplicatesAndUnknownStatus(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reg := NewRequestRegistry(Config{})

	err := reg.Restore(&models.RegistrySnapshot{Requests: []models.Request{
		{TrackingNumber: "FOIA-2024-000001", Status: models.RequestStatusSubmitted, SubmittedAt: base, DueAt: base.AddDate(0, 0, 20)},
		{TrackingNumber: "FOIA-2024-000001", Status: models.RequestStatusSubmitted, SubmittedAt: base, DueAt: base.AddDate(0, 0, 20)},
	}})
	requireCode(t, err, appErrors.ErrValidation.Code)

	err = reg.Restore(&models.RegistrySnapshot{Requests: []models.Request{
		{TrackingNumber: "FOIA-2024-000002", Status: "CLOSED", SubmittedAt: base, DueAt: base.AddDate(0, 0, 20)},
	}})
	requireCode(t, err, appErrors.ErrValidation.Code)
}

func TestRestorePreservesStoredDueDates(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	dueAt := base.AddDate(0, 0, 20)
	reg := NewRequestRegistry(Config{ResponseWindowDays: 10})

	err := reg.Restore(&models.RegistrySnapshot{Requests: []models.Request{{
		TrackingNumber: "FOIA-2023-0000AA",
		Requester:      "Alice",
		Description:    "budget",
		Status:         models.RequestStatusSubmitted,
		SubmittedAt:    base,
		DueAt:          dueAt,
	}}})
	require.NoError(t, err)

	got, err := reg.Get("FOIA-2023-0000AA")
	require.NoError(t, err)
	require.Equal(t, dueAt, got.DueAt, "stored deadlines survive window reconfiguration")
}
