package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/stats"
	"OIerFinder/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsSyncSwapsTable(t *testing.T) {
	backend := testutil.NewBackend(t, 99)
	old := &stats.Table{}
	old.Add(2000, "NOI", "北京", "金牌", 1)
	estimator := stats.NewEstimator(old)
	path := filepath.Join(t.TempDir(), "filter_stats.json")

	svc := NewStatsSyncService(backend, estimator, path, quietLogger())
	table, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, table, estimator.Table())
	assert.Equal(t, 6, table.Buckets())

	saved, err := stats.Load(path)
	require.NoError(t, err)
	assert.Equal(t, table.Stats, saved.Stats)
}

func TestStatsSyncKeepsTableOnFailure(t *testing.T) {
	backend := testutil.NewBackend(t, 99)
	backend.FailOn = func(string) error { return errors.New("database is locked") }
	old := &stats.Table{}
	old.Add(2000, "NOI", "北京", "金牌", 1)
	estimator := stats.NewEstimator(old)

	_, err := NewStatsSyncService(backend, estimator, "", quietLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
	assert.Same(t, old, estimator.Table())
}

func TestStatsSyncStart(t *testing.T) {
	backend := testutil.NewBackend(t, 99)
	old := &stats.Table{}
	estimator := stats.NewEstimator(old)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewStatsSyncService(backend, estimator, "", quietLogger()).Start(ctx, 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		return estimator.Table() != old
	}, 2*time.Second, 10*time.Millisecond)
}
