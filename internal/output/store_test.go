package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/logger"
)

func TestStoreSavesDatedArtifact(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "results"), logger.NewNop())

	path, err := s.Save(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results", "2025-06-02.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded contracts.ScreenReport
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "swing", loaded.Strategy)
	assert.Equal(t, 3, loaded.Evaluated)
	require.Len(t, loaded.Candidates, 1)
	assert.Equal(t, "RELIANCE", loaded.Candidates[0].Symbol)
	assert.InDelta(t, 59.34, loaded.Candidates[0].Score, 1e-9)
	require.NotNil(t, loaded.Candidates[0].Setup)
	assert.InDelta(t, 98.9, loaded.Candidates[0].Setup.Stop, 1e-9)
	require.NotNil(t, loaded.Sentiment)
	assert.Equal(t, "Bullish", loaded.Sentiment.GapLabel)
	assert.Equal(t, map[string]int{"trend_structure": 1, "daily_history": 1}, loaded.StageCounts)
}

func TestStoreOverwritesSameDate(t *testing.T) {
	s := NewStore(t.TempDir(), logger.NewNop())
	report := sampleReport()

	_, err := s.Save(report)
	require.NoError(t, err)

	report.Passed = 99
	path, err := s.Save(report)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded contracts.ScreenReport
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, 99, loaded.Passed)
}

func TestStoreLatestPicksNewestDate(t *testing.T) {
	s := NewStore(t.TempDir(), logger.NewNop())

	older := sampleReport()
	older.RunAt = time.Date(2025, 5, 30, 15, 40, 0, 0, time.UTC)
	older.Strategy = "breakout"
	_, err := s.Save(older)
	require.NoError(t, err)

	newer := sampleReport()
	_, err = s.Save(newer)
	require.NoError(t, err)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "swing", latest.Strategy)
	assert.Equal(t, newer.RunAt, latest.RunAt)
}

func TestStoreLatestIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, logger.NewNop())

	// Non-artifact files must not shadow real reports.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "9999-notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zzz.json"), []byte("{}"), 0o644))

	_, err := s.Latest()
	require.ErrorIs(t, err, ErrNoReports)

	_, err = s.Save(sampleReport())
	require.NoError(t, err)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "swing", latest.Strategy)
}

func TestStoreLatestMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "never-created"), logger.NewNop())

	_, err := s.Latest()
	require.ErrorIs(t, err, ErrNoReports)
}
