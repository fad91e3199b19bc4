package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/foia-desk-api/internal/registry"
)

func TestMonitorServiceSweepCountsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	reg := registry.NewRequestRegistry(registry.Config{Clock: clock})
	_, err := reg.Submit("Alice", "budget records")
	require.NoError(t, err)

	svc := NewMonitorService(MonitorServiceParams{Registry: reg, Logger: zap.NewNop(), Clock: clock})

	open, overdue := svc.Sweep()
	assert.Equal(t, 1, open)
	assert.Zero(t, overdue)

	now = now.AddDate(0, 0, 25)
	open, overdue = svc.Sweep()
	assert.Equal(t, 1, open)
	assert.Equal(t, 1, overdue)
}

func TestMonitorServiceSweepIgnoresResolved(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	reg := registry.NewRequestRegistry(registry.Config{Clock: clock})
	req, err := reg.Submit("Alice", "budget records")
	require.NoError(t, err)
	_, err = reg.Deny(req.TrackingNumber, []int{5}, "privacy")
	require.NoError(t, err)

	svc := NewMonitorService(MonitorServiceParams{Registry: reg, Logger: zap.NewNop(), Clock: clock})

	now = now.AddDate(0, 0, 40)
	open, overdue := svc.Sweep()
	assert.Zero(t, open)
	assert.Zero(t, overdue)
}
