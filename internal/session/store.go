// Package session keeps one uploaded dataset per browser session, entirely
// in memory. Nothing touches disk or a database; an idle session ages out
// and its dataset is gone with it.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/BurningYang107/sensor-data-viewer/adapters/tabular"
	"github.com/BurningYang107/sensor-data-viewer/domain/core"
	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/internal"
	"github.com/BurningYang107/sensor-data-viewer/internal/errors"
)

// Session binds one immutable dataset to a browser.
type Session struct {
	ID        core.SessionID   `json:"id"`
	Dataset   *dataset.Dataset `json:"-"`
	CreatedAt time.Time        `json:"created_at"`
	LastSeen  time.Time        `json:"last_seen"`
}

// Store is the in-memory session registry. HTTP handlers race on the map, so
// it sits behind an RWMutex. Parsing an upload holds the whole file in
// memory, so concurrent loads are bounded by a weighted semaphore.
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session

	ttl     time.Duration
	loadSem *semaphore.Weighted
	logger  *internal.Logger
}

// NewStore creates a session store. ttl is how long an idle session keeps
// its dataset; maxConcurrentLoads bounds parallel upload parsing.
func NewStore(ttl time.Duration, maxConcurrentLoads int64) *Store {
	if maxConcurrentLoads < 1 {
		maxConcurrentLoads = 1
	}
	return &Store{
		sessions: make(map[core.SessionID]*Session),
		ttl:      ttl,
		loadSem:  semaphore.NewWeighted(maxConcurrentLoads),
		logger:   internal.DefaultLogger,
	}
}

// CreateFromReader parses a stream and registers a fresh session for it. A
// parse failure creates nothing.
func (s *Store) CreateFromReader(ctx context.Context, rd io.Reader, filename string) (*Session, error) {
	if err := s.loadSem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "waiting for a dataset load slot")
	}
	defer s.loadSem.Release(1)

	table, err := tabular.ReadFrom(rd, filename)
	if err != nil {
		return nil, errors.LoadFailed("failed to parse uploaded file", err)
	}

	return s.register(filename, table)
}

// CreateFromFile loads a file from disk; used for the startup preload.
func (s *Store) CreateFromFile(ctx context.Context, path string) (*Session, error) {
	if err := s.loadSem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "waiting for a dataset load slot")
	}
	defer s.loadSem.Release(1)

	table, err := tabular.NewDataReader(path).ReadData()
	if err != nil {
		return nil, errors.LoadFailed("failed to load data file", err)
	}

	return s.register(path, table)
}

func (s *Store) register(sourceName string, table *tabular.TableData) (*Session, error) {
	ds, err := dataset.New(sourceName, table.Headers, cellMaps(table.Rows))
	if err != nil {
		return nil, errors.LoadFailed("failed to build dataset", err)
	}

	now := time.Now()
	sess := &Session{
		ID:        core.NewSessionID(),
		Dataset:   ds,
		CreatedAt: now,
		LastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session %s created: %s (%d rows, %d columns, fingerprint %s)",
		sess.ID, ds.SourceName, ds.RowCount(), len(ds.Columns), ds.Fingerprint.Short())

	return sess, nil
}

// Get returns a live session and bumps its idle clock.
func (s *Store) Get(id core.SessionID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	sess.LastSeen = time.Now()
	return sess, nil
}

// Delete removes a session; replacing an upload deletes its predecessor.
func (s *Store) Delete(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupExpired drops sessions idle for longer than olderThan and reports
// how many were removed.
func (s *Store) CleanupExpired(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor evicts expired sessions on an interval until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.CleanupExpired(s.ttl); removed > 0 {
					s.logger.Info("janitor removed %d expired session(s), %d remain", removed, s.Len())
				}
			}
		}
	}()
}

func cellMaps(rows []tabular.RawRowData) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		out[i] = map[string]string(r)
	}
	return out
}
