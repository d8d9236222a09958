// Package store caches cleaned datasets by source identity so repeated
// filter and aggregation calls do not re-run the pipeline. A cache entry is
// valid only while the source file's fingerprint (modification time and
// size) is unchanged; a changed fingerprint invalidates the entry and
// triggers a reload.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
	"github.com/couchcryptid/road-accident-insight/internal/observability"
	"github.com/couchcryptid/road-accident-insight/internal/pipeline"
)

// Loader runs the cleaning pipeline over a raw dataset stream.
type Loader interface {
	Load(r io.Reader) (domain.Table, pipeline.Diagnostics, error)
}

// Store is a thread-safe LRU cache of cleaned datasets keyed by file path.
type Store struct {
	loader  Loader
	logger  *slog.Logger
	metrics *observability.Metrics

	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type fingerprint struct {
	modTime time.Time
	size    int64
}

func (fp fingerprint) equal(other fingerprint) bool {
	return fp.modTime.Equal(other.modTime) && fp.size == other.size
}

type entry struct {
	key   string
	fp    fingerprint
	table domain.Table
	diag  pipeline.Diagnostics
	prev  *entry
	next  *entry
}

// New creates a Store retaining at most maxEntries cleaned datasets.
func New(loader Loader, logger *slog.Logger, metrics *observability.Metrics, maxEntries int) *Store {
	return &Store{
		loader:     loader,
		logger:     logger,
		metrics:    metrics,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

// Load returns the cleaned table and diagnostics for the dataset at path,
// reusing the cached result while the file's fingerprint is unchanged.
func (s *Store) Load(path string) (domain.Table, pipeline.Diagnostics, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, pipeline.Diagnostics{}, fmt.Errorf("stat dataset: %w", err)
	}
	fp := fingerprint{modTime: info.ModTime(), size: info.Size()}

	if table, diag, ok := s.lookup(path, fp); ok {
		s.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return table, diag, nil
	}
	s.metrics.DatasetCache.WithLabelValues("miss").Inc()

	f, err := os.Open(path)
	if err != nil {
		return nil, pipeline.Diagnostics{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	table, diag, err := s.loader.Load(f)
	if err != nil {
		return nil, pipeline.Diagnostics{}, err
	}

	s.put(path, fp, table, diag)
	s.logger.Info("dataset cached", "path", path, "rows", diag.RowsClean)
	return table, diag, nil
}

// CheckReadiness reports whether at least one dataset has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return errors.New("no dataset has been loaded yet")
	}
	return nil
}

func (s *Store) lookup(key string, fp fingerprint) (domain.Table, pipeline.Diagnostics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.fp.equal(fp) {
		return nil, pipeline.Diagnostics{}, false
	}
	s.moveToFront(e)
	return e.table, e.diag, true
}

func (s *Store) put(key string, fp fingerprint, table domain.Table, diag pipeline.Diagnostics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.fp = fp
		e.table = table
		e.diag = diag
		s.moveToFront(e)
		return
	}

	e := &entry{key: key, fp: fp, table: table, diag: diag}
	s.entries[key] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
}

func (s *Store) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *Store) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.remove(s.tail)
}
