package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"playmateserver/matching"
	"playmateserver/models"
	"playmateserver/persist"

	"go.uber.org/zap"
)

// MatchStore maps match ID to record. One mutex guards the whole map so
// lifecycle transitions on a record are atomic with respect to concurrent
// requests; under the expected load a per-record lock buys nothing.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[int64]*models.Matching
	flusher *Flusher
	logger  *zap.Logger
}

type matchSnapshot struct {
	Matchings []*models.Matching `json:"matchings"`
}

func NewMatchStore(sink persist.Sink, logger *zap.Logger) *MatchStore {
	s := &MatchStore{
		matches: make(map[int64]*models.Matching),
		logger:  logger,
	}
	s.flusher = NewFlusher("matchings", sink, s.marshal, logger)
	return s
}

// Load restores the last snapshot. A missing snapshot means a fresh
// store; a corrupt one is an error the caller decides about.
func (s *MatchStore) Load(ctx context.Context) error {
	data, ok, err := s.flusher.sink.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("no matching snapshot found, starting empty")
		return nil
	}
	var snap matchSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = make(map[int64]*models.Matching, len(snap.Matchings))
	for _, m := range snap.Matchings {
		s.matches[m.ID] = m
	}
	s.logger.Info("matchings loaded", zap.Int("count", len(s.matches)))
	return nil
}

// Start launches the snapshot writer.
func (s *MatchStore) Start() { s.flusher.Start() }

// Stop flushes once more and stops the writer.
func (s *MatchStore) Stop() { s.flusher.Stop() }

// Flush writes a snapshot synchronously.
func (s *MatchStore) Flush(ctx context.Context) error { return s.flusher.Flush(ctx) }

// Degraded reports whether the latest snapshot write failed.
func (s *MatchStore) Degraded() bool { return s.flusher.Degraded() }

// allocateIDLocked returns a fresh match ID: the current wall-clock
// milliseconds, probed upward until unused so two creations within the
// same millisecond cannot collide.
func (s *MatchStore) allocateIDLocked() int64 {
	id := time.Now().UnixMilli()
	for {
		if _, taken := s.matches[id]; !taken {
			return id
		}
		id++
	}
}

// Create allocates an ID, builds a recruiting record for host, lets fill
// populate the capacity and eligibility fields, and stores it.
func (s *MatchStore) Create(host models.HostProfile, fill func(m *models.Matching)) *models.Matching {
	s.mu.Lock()
	id := s.allocateIDLocked()
	m := matching.NewMatching(id, host)
	if fill != nil {
		fill(m)
	}
	s.matches[id] = m
	out := m.Clone()
	s.mu.Unlock()
	s.flusher.Request()
	return out
}

// Get returns a copy of the record or ErrNotFound.
func (s *MatchStore) Get(id int64) (*models.Matching, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.Clone(), nil
}

// Update runs fn on the live record under the store lock. fn either fully
// applies its transition or fails without mutating, so no partial state
// is ever visible or persisted. The updated copy is returned on success.
func (s *MatchStore) Update(id int64, fn func(m *models.Matching) error) (*models.Matching, error) {
	s.mu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrNotFound
	}
	if err := fn(m); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	out := m.Clone()
	s.mu.Unlock()
	s.flusher.Request()
	return out, nil
}

// Delete removes the record entirely, distinct from cancelling it.
// Deleting an unknown ID fails with ErrNotFound.
func (s *MatchStore) Delete(id int64, callerID int) error {
	s.mu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.mu.Unlock()
		return models.ErrNotFound
	}
	if err := matching.AuthorizeDelete(m, callerID); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.matches, id)
	s.mu.Unlock()
	s.flusher.Request()
	return nil
}

// ListAll returns copies of every record, newest first.
func (s *MatchStore) ListAll() []*models.Matching {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Matching, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ListForUser returns the matches userID hosts or participates in.
func (s *MatchStore) ListForUser(userID int) []*models.Matching {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Matching
	for _, m := range s.matches {
		if m.HostID() == userID || m.HasParticipant(userID) {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// CancelStaleRecruiting cancels recruiting matches whose date passed more
// than cutoff ago. Run by the daily cron job.
func (s *MatchStore) CancelStaleRecruiting(cutoff time.Duration) int {
	deadline := time.Now().Add(-cutoff)
	s.mu.Lock()
	n := 0
	for _, m := range s.matches {
		if m.Status == models.StatusRecruiting && !m.Date.IsZero() && m.Date.Before(deadline) {
			if err := matching.Cancel(m, m.HostID()); err == nil {
				n++
			}
		}
	}
	s.mu.Unlock()
	if n > 0 {
		s.flusher.Request()
	}
	return n
}

// Len returns the number of stored records.
func (s *MatchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func (s *MatchStore) marshal() ([]byte, error) {
	s.mu.RLock()
	snap := matchSnapshot{Matchings: make([]*models.Matching, 0, len(s.matches))}
	for _, m := range s.matches {
		snap.Matchings = append(snap.Matchings, m.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(snap.Matchings, func(i, j int) bool { return snap.Matchings[i].ID < snap.Matchings[j].ID })
	return json.MarshalIndent(snap, "", "  ")
}
