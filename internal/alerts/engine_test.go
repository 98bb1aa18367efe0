package alerts

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthmon/internal/db"
	"healthmon/internal/models"
	"healthmon/internal/profile"
	"healthmon/internal/reporter"
)

func newTestEngine(t *testing.T) (*Engine, *db.Repository, *clockwork.FakeClock) {
	t.Helper()
	sqldb, err := db.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })
	require.NoError(t, db.Migrate(sqldb))
	repo := db.NewRepository(sqldb)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC))
	e := NewEngine(repo, profile.Select(profile.Production), slog.New(slog.NewTextHandler(io.Discard, nil)), clock, "run-1")
	return e, repo, clock
}

func report(status models.Status, maxUsage float64) reporter.Report {
	return reporter.Report{
		Status:   status,
		Sample:   &models.MetricsSample{CPUPct: maxUsage, MemPct: 1, DiskPct: 1},
		MaxUsage: maxUsage,
	}
}

func TestObserveFiresOnceAndRecovers(t *testing.T) {
	e, repo, clock := newTestEngine(t)
	ctx := context.Background()

	e.Observe(ctx, report(models.StatusOptimal, 10))
	assertActive(t, repo, 0)

	e.Observe(ctx, report(models.StatusWarning, 91))
	assertActive(t, repo, 1)

	clock.Advance(time.Minute)
	e.Observe(ctx, report(models.StatusWarning, 95))
	assertActive(t, repo, 1)

	clock.Advance(time.Minute)
	e.Observe(ctx, report(models.StatusOptimal, 20))
	assertActive(t, repo, 0)

	st, err := repo.GetAlertState(ctx, profile.Production)
	require.NoError(t, err)
	assert.Equal(t, db.StateOK, st.State)
	require.NotNil(t, st.LastFired)
	require.NotNil(t, st.LastRecovered)

	events, err := repo.RecentAlerts(ctx, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 91.0, events[0].MaxUsage)
	assert.Equal(t, 80.0, events[0].Threshold)
	assert.Contains(t, events[0].Summary, "ALERT production")
}

func TestObserveIgnoresUnknown(t *testing.T) {
	e, repo, _ := newTestEngine(t)
	ctx := context.Background()

	e.Observe(ctx, report(models.StatusWarning, 99))
	e.Observe(ctx, reporter.Report{Status: models.StatusUnknown})
	assertActive(t, repo, 1)
}

func assertActive(t *testing.T, repo *db.Repository, want int) {
	t.Helper()
	got, err := repo.ActiveAlertCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
