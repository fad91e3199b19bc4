package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/registry"
	"github.com/noah-isme/foia-desk-api/pkg/storage"
)

func newExportGeneratorForTest(t *testing.T, clock func() time.Time) (*ExportGenerator, *registry.RequestRegistry, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	reg := registry.NewRequestRegistry(registry.Config{Clock: clock})
	gen := NewExportGenerator(reg, registry.NewReportEngine(), store, signer,
		ExportGeneratorConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, zap.NewNop(), nil, nil, clock)
	return gen, reg, store
}

func TestExportGeneratorRequestsCSV(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	gen, reg, store := newExportGeneratorForTest(t, clock)

	req, err := reg.Submit("Alice", "budget records")
	require.NoError(t, err)

	result, err := gen.Generate(context.Background(), &models.ExportJob{
		ID:     "job-1",
		Type:   models.ExportTypeRequests,
		Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/export/")

	raw, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "Tracking Number")
	assert.Contains(t, content, req.TrackingNumber)
	assert.Contains(t, content, "SUBMITTED")
}

func TestExportGeneratorOverdueCSV(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	gen, reg, store := newExportGeneratorForTest(t, clock)

	late, err := reg.Submit("Alice", "budget records")
	require.NoError(t, err)
	onTimeSubmitted := now.AddDate(0, 0, 20)
	now = onTimeSubmitted
	fresh, err := reg.Submit("Bob", "contract emails")
	require.NoError(t, err)
	now = onTimeSubmitted.AddDate(0, 0, 5)

	result, err := gen.Generate(context.Background(), &models.ExportJob{
		ID:     "job-2",
		Type:   models.ExportTypeOverdue,
		Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, late.TrackingNumber)
	assert.NotContains(t, content, fresh.TrackingNumber)
	assert.Contains(t, content, ",5\n")
}

func TestExportGeneratorStatisticsPDF(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	gen, reg, store := newExportGeneratorForTest(t, clock)

	req, err := reg.Submit("Alice", "budget records")
	require.NoError(t, err)
	_, err = reg.Deny(req.TrackingNumber, []int{5}, "privacy")
	require.NoError(t, err)

	result, err := gen.Generate(context.Background(), &models.ExportJob{
		ID:     "job-3",
		Type:   models.ExportTypeStatistics,
		Format: models.ExportFormatPDF,
	})
	require.NoError(t, err)
	require.Equal(t, models.ExportFormatPDF, result.Format)

	info, err := os.Stat(store.Path(result.RelativePath))
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportGeneratorExemptionsCSV(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	gen, reg, store := newExportGeneratorForTest(t, clock)

	first, err := reg.Submit("Alice", "budget records")
	require.NoError(t, err)
	_, err = reg.Deny(first.TrackingNumber, []int{5, 7}, "privacy")
	require.NoError(t, err)
	second, err := reg.Submit("Bob", "contract emails")
	require.NoError(t, err)
	_, err = reg.Deny(second.TrackingNumber, []int{5}, "privacy")
	require.NoError(t, err)

	result, err := gen.Generate(context.Background(), &models.ExportJob{
		ID:     "job-4",
		Type:   models.ExportTypeExemptions,
		Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "Exemption Code")
	assert.Contains(t, content, "5,2")
	assert.Contains(t, content, "7,1")
}

func TestExportGeneratorUnsupportedType(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	gen, _, _ := newExportGeneratorForTest(t, func() time.Time { return now })

	_, err := gen.Generate(context.Background(), &models.ExportJob{
		ID:     "job-5",
		Type:   models.ExportType("ledger"),
		Format: models.ExportFormatCSV,
	})
	require.Error(t, err)
}
