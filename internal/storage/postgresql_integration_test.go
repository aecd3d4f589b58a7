//go:build integration

package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/church-dashboard/internal/migrations"
	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/storage"
)

func setupTestDB(t *testing.T) *storage.Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := storage.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(st.DB, filepath.Join(root, "migrations")))
	require.NoError(t, storage.CheckDatabaseReady(ctx, st))
	return st
}

func snapshot(takenAt time.Time, failures ...string) models.Snapshot {
	return models.Snapshot{
		ID:      uuid.NewString(),
		TakenAt: takenAt,
		Stats: models.DashboardStats{
			WeeklyAttendance:    12,
			AttendanceRate:      60,
			MonthlyTithes:       decimal.RequireFromString("1500.50"),
			MonthlyTithesChange: 12.5,
		},
		Failures: failures,
	}
}

func TestStorage_Snapshots(t *testing.T) {
	st := setupTestDB(t)
	ctx := context.Background()

	_, err := st.LatestSnapshot(ctx)
	require.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	first := snapshot(base)
	second := snapshot(base.Add(24*time.Hour), "tithes")
	third := snapshot(base.Add(48 * time.Hour))
	for _, s := range []models.Snapshot{first, second, third} {
		require.NoError(t, st.SaveSnapshot(ctx, s))
	}

	latest, err := st.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, third.ID, latest.ID)
	assert.True(t, third.TakenAt.Equal(latest.TakenAt))
	assert.True(t, decimal.RequireFromString("1500.50").Equal(latest.Stats.MonthlyTithes))
	assert.Equal(t, 60, latest.Stats.AttendanceRate)
	assert.Nil(t, latest.Failures)

	page, err := st.ListSnapshots(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, third.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)
	assert.Equal(t, []string{"tithes"}, page[1].Failures)

	page, err = st.ListSnapshots(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestStorage_DuplicateID(t *testing.T) {
	st := setupTestDB(t)
	ctx := context.Background()

	s := snapshot(time.Now().UTC())
	require.NoError(t, st.SaveSnapshot(ctx, s))
	err := st.SaveSnapshot(ctx, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.SaveSnapshot")
}

func TestStorage_ContextCancelled(t *testing.T) {
	st := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.ListSnapshots(ctx, 10, 0)
	require.Error(t, err)
}
