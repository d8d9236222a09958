package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
	"github.com/couchcryptid/road-accident-insight/internal/observability"
	"github.com/couchcryptid/road-accident-insight/internal/pipeline"
)

// countingLoader records how many times the pipeline actually ran and
// returns a table derived from the file contents so cache hits are
// distinguishable from reloads.
type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) Load(r io.Reader) (domain.Table, pipeline.Diagnostics, error) {
	l.calls++
	if l.err != nil {
		return nil, pipeline.Diagnostics{}, l.err
	}
	data, _ := io.ReadAll(r)
	return domain.Table{{AccidentIndex: strings.TrimSpace(string(data))}}, pipeline.Diagnostics{RowsClean: 1}, nil
}

func newTestStore(loader Loader, maxEntries int) *Store {
	return New(loader, slog.Default(), observability.NewMetricsForTesting(), maxEntries)
}

func writeDataset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStore_CacheHit(t *testing.T) {
	loader := &countingLoader{}
	s := newTestStore(loader, 4)
	path := writeDataset(t, t.TempDir(), "a.csv", "first")

	table1, _, err := s.Load(path)
	require.NoError(t, err)
	table2, _, err := s.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls, "second load should come from cache")
	assert.Equal(t, table1, table2)
}

func TestStore_InvalidatesOnFingerprintChange(t *testing.T) {
	loader := &countingLoader{}
	s := newTestStore(loader, 4)
	dir := t.TempDir()
	path := writeDataset(t, dir, "a.csv", "first")

	_, _, err := s.Load(path)
	require.NoError(t, err)

	// Rewriting with different content changes the size fingerprint.
	writeDataset(t, dir, "a.csv", "second version")

	table, _, err := s.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, "second version", table[0].AccidentIndex)
}

func TestStore_MissingFile(t *testing.T) {
	loader := &countingLoader{}
	s := newTestStore(loader, 4)

	_, _, err := s.Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat dataset")
	assert.Zero(t, loader.calls)
}

func TestStore_LoaderErrorNotCached(t *testing.T) {
	loader := &countingLoader{err: errors.New("boom")}
	s := newTestStore(loader, 4)
	path := writeDataset(t, t.TempDir(), "a.csv", "broken")

	_, _, err := s.Load(path)
	require.Error(t, err)

	loader.err = nil
	_, _, err = s.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls, "a failed load must not poison the cache")
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	loader := &countingLoader{}
	s := newTestStore(loader, 1)
	dir := t.TempDir()
	pathA := writeDataset(t, dir, "a.csv", "aaa")
	pathB := writeDataset(t, dir, "b.csv", "bbb")

	_, _, err := s.Load(pathA)
	require.NoError(t, err)
	_, _, err = s.Load(pathB)
	require.NoError(t, err)
	_, _, err = s.Load(pathA)
	require.NoError(t, err)

	assert.Equal(t, 3, loader.calls, "A should have been evicted by B")
}

func TestStore_CheckReadiness(t *testing.T) {
	loader := &countingLoader{}
	s := newTestStore(loader, 4)

	require.Error(t, s.CheckReadiness(context.Background()))

	path := writeDataset(t, t.TempDir(), "a.csv", "data")
	_, _, err := s.Load(path)
	require.NoError(t, err)

	assert.NoError(t, s.CheckReadiness(context.Background()))
}
