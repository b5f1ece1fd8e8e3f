package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
	"github.com/AyushPoddar351/E-Commerce-Assistant/workflow"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(runID string, route types.RouteDecision) workflow.RunRecord {
	return workflow.RunRecord{
		RunID:        runID,
		Query:        "price of Samsung Galaxy S25",
		FinalQuery:   "Samsung Galaxy S25 price",
		Route:        route,
		Rewrites:     1,
		EvidenceUsed: 2,
		Grounded:     true,
		Status:       "ok",
		Duration:     1500 * time.Millisecond,
		CreatedAt:    time.Now(),
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, sampleRecord("run-1", types.RouteProductGrounded)))

	run, err := s.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "price of Samsung Galaxy S25", run.Query)
	assert.Equal(t, "Samsung Galaxy S25 price", run.FinalQuery)
	assert.Equal(t, 1, run.Rewrites)
	assert.Equal(t, 2, run.EvidenceUsed)
	assert.True(t, run.Grounded)
	assert.Equal(t, int64(1500), run.DurationMS)
}

func TestStore_DuplicateRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, sampleRecord("run-1", types.RouteGeneral)))
	assert.Error(t, s.Record(ctx, sampleRecord("run-1", types.RouteGeneral)),
		"duplicate run ID must hit the unique index")
}

func TestStore_RecentNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		rec := sampleRecord(string(rune('a'+i)), types.RouteProductGrounded)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Record(ctx, rec))
	}

	runs, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "e", runs[0].RunID)
	assert.Equal(t, "c", runs[2].RunID)
}

func TestStore_ByRoute(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, sampleRecord("run-p", types.RouteProductGrounded)))
	require.NoError(t, s.Record(ctx, sampleRecord("run-g", types.RouteGeneral)))

	runs, err := s.ByRoute(ctx, types.RouteGeneral, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-g", runs[0].RunID)
}
