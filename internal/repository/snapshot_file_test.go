package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foia-desk-api/internal/models"
)

func TestFileSnapshotStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "foia_requests.json")
	store := NewFileSnapshotStore(path)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	resolved := base.AddDate(0, 0, 8)
	appealed := base.AddDate(0, 0, 10)

	in := &models.RegistrySnapshot{
		SavedAt: base.AddDate(0, 0, 11),
		Requests: []models.Request{
			{
				TrackingNumber: "FOIA-2024-000001",
				Requester:      "Alice",
				Description:    "inspection reports",
				Status:         models.RequestStatusSubmitted,
				SubmittedAt:    base,
				DueAt:          base.AddDate(0, 0, 20),
				Notes: models.NoteList{
					{ID: "n1", Author: "clerk", Text: "received by mail", CreatedAt: base},
				},
			},
			{
				TrackingNumber:  "FOIA-2024-000002",
				Requester:       "Bob",
				Description:     "contract emails",
				Status:          models.RequestStatusAppealed,
				AssignedOfficer: "officer2",
				SubmittedAt:     base,
				DueAt:           base.AddDate(0, 0, 20),
				ResolvedAt:      &resolved,
				AppealedAt:      &appealed,
				ExemptionsCited: models.ExemptionCodes{4, 5},
				DenialReason:    "trade secrets",
				AppealGrounds:   "public interest outweighs exemption",
			},
		},
	}
	require.NoError(t, store.Save(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestFileSnapshotStoreLoadMissingFile(t *testing.T) {
	store := NewFileSnapshotStore(filepath.Join(t.TempDir(), "absent.json"))

	snapshot, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, snapshot.Requests)
}

func TestFileSnapshotStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileSnapshotStore(path)
	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestFileSnapshotStoreSaveOverwritesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foia_requests.json")
	store := NewFileSnapshotStore(path)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := &models.RegistrySnapshot{Requests: []models.Request{{
		TrackingNumber: "FOIA-2024-000001",
		Requester:      "Alice",
		Description:    "old",
		Status:         models.RequestStatusSubmitted,
		SubmittedAt:    base,
		DueAt:          base.AddDate(0, 0, 20),
	}}}
	require.NoError(t, store.Save(context.Background(), first))

	second := &models.RegistrySnapshot{Requests: []models.Request{{
		TrackingNumber: "FOIA-2024-000002",
		Requester:      "Bob",
		Description:    "new",
		Status:         models.RequestStatusSubmitted,
		SubmittedAt:    base,
		DueAt:          base.AddDate(0, 0, 20),
	}}}
	require.NoError(t, store.Save(context.Background(), second))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Requests, 1)
	require.Equal(t, "FOIA-2024-000002", out.Requests[0].TrackingNumber)
}
