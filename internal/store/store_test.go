package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary(runID string) *RunSummary {
	started := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	return &RunSummary{
		RunID:            runID,
		Program:          "two-boxes",
		Status:           "converged",
		Iterations:       2,
		Cuts:             1,
		RelaxedObjective: -1,
		FinalObjective:   -1,
		Gap:              0,
		FinalValues:      map[string]float64{"x1": 3, "x2": 2},
		StartedAt:        started,
		FinishedAt:       started.Add(40 * time.Millisecond),
		Config: RunConfig{
			ContinuousSolver: "simplex",
			DiscreteSolver:   "branchbound",
			Epsilon:          0.001,
			CutTolerance:     1e-8,
			MaxIterations:    50,
			BigM:             1e6,
		},
	}
}

func TestFSStoreSaveAndLoad(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	summary := sampleSummary(NewRunID())
	require.NoError(t, s.SaveSummary(summary))

	loaded, err := s.LoadSummary(summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, summary, loaded)
}

func TestFSStoreSaveOverwrites(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	summary := sampleSummary(NewRunID())
	require.NoError(t, s.SaveSummary(summary))

	summary.Status = "stalled"
	summary.Cuts = 4
	require.NoError(t, s.SaveSummary(summary))

	loaded, err := s.LoadSummary(summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, "stalled", loaded.Status)
	assert.Equal(t, 4, loaded.Cuts)
}

func TestFSStoreLoadMissing(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.LoadSummary("no-such-run")
	assert.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no-such-run", nf.RunID)
}

func TestFSStoreSaveRejectsInvalid(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*RunSummary)
		field  string
	}{
		{"empty run id", func(s *RunSummary) { s.RunID = "" }, "RunID"},
		{"empty program", func(s *RunSummary) { s.Program = "" }, "Program"},
		{"empty status", func(s *RunSummary) { s.Status = "" }, "Status"},
		{"negative iterations", func(s *RunSummary) { s.Iterations = -1 }, "Iterations"},
		{"negative cuts", func(s *RunSummary) { s.Cuts = -2 }, "Cuts"},
		{"zero start time", func(s *RunSummary) { s.StartedAt = time.Time{} }, "StartedAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := sampleSummary(NewRunID())
			tt.mutate(summary)

			err := s.SaveSummary(summary)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestFSStoreListRuns(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	infos, err := s.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, infos)

	ids := []string{NewRunID(), NewRunID(), NewRunID()}
	for _, id := range ids {
		require.NoError(t, s.SaveSummary(sampleSummary(id)))
	}

	infos, err = s.ListRuns()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	seen := make(map[string]bool)
	for _, info := range infos {
		seen[info.RunID] = true
		assert.Equal(t, "two-boxes", info.Program)
		assert.Equal(t, "converged", info.Status)
	}
	for _, id := range ids {
		assert.True(t, seen[id])
	}
}

func TestFSStoreListSkipsUnreadable(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.SaveSummary(sampleSummary(NewRunID())))

	// A run directory without a summary, as left by a crashed run.
	require.NoError(t, os.MkdirAll(filepath.Join(s.BaseDir(), "runs", "partial-run"), 0755))

	infos, err := s.ListRuns()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestFSStoreDeleteRun(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	summary := sampleSummary(NewRunID())
	require.NoError(t, s.SaveSummary(summary))
	require.NoError(t, s.DeleteRun(summary.RunID))

	_, err = s.LoadSummary(summary.RunID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteRun(summary.RunID), ErrNotFound)
}

func TestTraceWriterRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	runID := NewRunID()

	tw, err := NewTraceWriter(baseDir, runID)
	require.NoError(t, err)

	entries := []TraceEntry{
		{Iteration: 0, Objective: -3, Delta: 0, DistanceSq: 2, CutAdded: true, Timestamp: time.Now().UTC()},
		{Iteration: 1, Objective: -1, Delta: -2, DistanceSq: 0, CutAdded: false, Timestamp: time.Now().UTC()},
	}
	for _, e := range entries {
		require.NoError(t, tw.Write(e))
	}
	require.NoError(t, tw.Flush())
	require.NoError(t, tw.Close())

	got, err := ReadTrace(baseDir, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range entries {
		assert.Equal(t, entries[i].Iteration, got[i].Iteration)
		assert.Equal(t, entries[i].Objective, got[i].Objective)
		assert.Equal(t, entries[i].CutAdded, got[i].CutAdded)
		assert.True(t, entries[i].Timestamp.Equal(got[i].Timestamp))
	}
}

func TestReadTraceMissing(t *testing.T) {
	_, err := ReadTrace(t.TempDir(), "absent")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewRunIDUnique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
