package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertStateRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetAlertState(ctx, "production")
	require.ErrorIs(t, err, sql.ErrNoRows)

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertAlertState(ctx, "production", AlertState{State: StateFiring, Since: now, LastFired: &now}))

	st, err := repo.GetAlertState(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, StateFiring, st.State)
	assert.True(t, st.Since.Equal(now))
	require.NotNil(t, st.LastFired)
	assert.True(t, st.LastFired.Equal(now))
	assert.Nil(t, st.LastRecovered)

	later := now.Add(time.Minute)
	require.NoError(t, repo.UpsertAlertState(ctx, "production", AlertState{State: StateOK, Since: later, LastFired: &now, LastRecovered: &later}))
	st, err = repo.GetAlertState(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, StateOK, st.State)
	require.NotNil(t, st.LastRecovered)
	assert.True(t, st.LastRecovered.Equal(later))
}

func TestCreateAndCloseAlert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

	id, err := repo.CreateAlert(ctx, "experimental", "WARNING max usage 91.00% > 75%", AlertDetails{MaxUsage: 91, Threshold: 75}, now)
	require.NoError(t, err)
	assert.NotZero(t, id)

	n, err := repo.ActiveAlertCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.CloseAlert(ctx, "experimental", now.Add(time.Minute)))
	n, err = repo.ActiveAlertCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	events, err := repo.RecentAlerts(ctx, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, AlertRecovered, events[0].Status)
	assert.Equal(t, 91.0, events[0].MaxUsage)
	assert.Equal(t, 75.0, events[0].Threshold)
	require.NotNil(t, events[0].EndedTS)
}

func TestDeleteResolvedBeforeKeepsFiring(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.CreateAlert(ctx, "a", "old resolved", AlertDetails{}, old)
	require.NoError(t, err)
	require.NoError(t, repo.CloseAlert(ctx, "a", old.Add(time.Minute)))
	_, err = repo.CreateAlert(ctx, "b", "old firing", AlertDetails{}, old)
	require.NoError(t, err)

	deleted, err := repo.DeleteResolvedBefore(ctx, old.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err := repo.RecentAlerts(ctx, old.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].Profile)
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	sqldb, err := Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })
	require.NoError(t, Migrate(sqldb))
	return NewRepository(sqldb)
}
