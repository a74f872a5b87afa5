package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/wxscrape/pkg/forecast"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC)
	first := Run{
		URL:        "https://example.com/62",
		StartedAt:  base,
		FinishedAt: base.Add(42 * time.Second),
		Status:     StatusOK,
		Counts:     forecast.Counts{Locations: 2, DailyEntries: 3},
		JSONPath:   "out/Universal_Monthly_20251127_000042.json",
	}
	second := Run{
		URL:        "https://example.com/62",
		StartedAt:  base.Add(24 * time.Hour),
		FinishedAt: base.Add(24*time.Hour + 5*time.Second),
		Status:     StatusFetchFailed,
		Error:      "navigation failed: timeout",
	}

	id1, err := s.Record(ctx, first)
	require.NoError(t, err)
	require.NotEmpty(t, id1)
	_, err = s.Record(ctx, second)
	require.NoError(t, err)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// newest first
	assert.Equal(t, StatusFetchFailed, runs[0].Status)
	assert.Equal(t, "navigation failed: timeout", runs[0].Error)
	assert.Empty(t, runs[0].JSONPath)

	got := runs[1]
	assert.Equal(t, id1, got.ID)
	assert.Equal(t, first.Counts, got.Counts)
	assert.True(t, got.StartedAt.Equal(first.StartedAt), "StartedAt = %v, want %v", got.StartedAt, first.StartedAt)
	assert.Equal(t, 42*time.Second, got.Duration())
}

func TestList_Limit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		at := start.Add(time.Duration(i) * time.Minute)
		_, err := s.Record(ctx, Run{URL: "u", StartedAt: at, FinishedAt: at, Status: StatusNoData})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].StartedAt.After(runs[2].StartedAt), "List() should order newest first")
}

func TestRecord_KeepsGivenID(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.Record(context.Background(), Run{ID: "fixed-id", URL: "u", Status: StatusOK})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	_, err = s.Record(context.Background(), Run{ID: "fixed-id", URL: "u"})
	assert.Error(t, err, "duplicate ID should fail")
}

func TestOpen_ReopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "h.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Run{URL: "u", Status: StatusOK})
	require.NoError(t, err)
	_ = s.Close()

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, path, s.Path())
}

func TestRun_Values(t *testing.T) {
	started := time.Now().Add(-2 * time.Hour)
	r := Run{
		URL:        "https://example.com/62",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Status:     StatusOK,
		Counts:     forecast.Counts{Locations: 2, HourlyEntries: 24, MonthlyEntries: 30},
		JSONPath:   "out/a.json",
	}

	vals := r.Values()
	require.Len(t, vals, len(r.Columns()))
	assert.Equal(t, []string{"ok", "1m30s", "2", "24", "30"}, vals[1:6])
	assert.Equal(t, "out/a.json", vals[7])

	r.Error = "boom"
	assert.Equal(t, "boom", r.Values()[7])
}
