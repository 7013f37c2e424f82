package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"playmateserver/models"
	"playmateserver/persist"

	"go.uber.org/zap"
)

// ReviewStore keeps post-match reviews. At most one review per
// reviewer/matching/reviewee triple.
type ReviewStore struct {
	mu      sync.RWMutex
	reviews map[int64]*models.Review
	nextID  int64
	flusher *Flusher
	logger  *zap.Logger
}

type reviewSnapshot struct {
	Reviews []*models.Review `json:"reviews"`
	NextID  int64            `json:"nextId"`
}

func NewReviewStore(sink persist.Sink, logger *zap.Logger) *ReviewStore {
	s := &ReviewStore{
		reviews: make(map[int64]*models.Review),
		nextID:  1,
		logger:  logger,
	}
	s.flusher = NewFlusher("reviews", sink, s.marshal, logger)
	return s
}

func (s *ReviewStore) Load(ctx context.Context) error {
	data, ok, err := s.flusher.sink.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("no review snapshot found, starting empty")
		return nil
	}
	var snap reviewSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = make(map[int64]*models.Review, len(snap.Reviews))
	for _, r := range snap.Reviews {
		s.reviews[r.ID] = r
	}
	s.nextID = snap.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}
	s.logger.Info("reviews loaded", zap.Int("count", len(s.reviews)))
	return nil
}

func (s *ReviewStore) Start() { s.flusher.Start() }
func (s *ReviewStore) Stop()  { s.flusher.Stop() }

func (s *ReviewStore) Flush(ctx context.Context) error { return s.flusher.Flush(ctx) }
func (s *ReviewStore) Degraded() bool                  { return s.flusher.Degraded() }

func (s *ReviewStore) Create(r *models.Review) (*models.Review, error) {
	s.mu.Lock()
	for _, existing := range s.reviews {
		if existing.ReviewerID == r.ReviewerID &&
			existing.MatchingID == r.MatchingID &&
			existing.RevieweeID == r.RevieweeID {
			s.mu.Unlock()
			return nil, models.ErrAlreadyReviewed
		}
	}
	r.ID = s.nextID
	s.nextID++
	r.CreatedAt = time.Now()
	if r.Tags == nil {
		r.Tags = []string{}
	}
	s.reviews[r.ID] = r
	out := *r
	s.mu.Unlock()
	s.flusher.Request()
	return &out, nil
}

// ByReviewer lists reviews written by userID, newest first.
func (s *ReviewStore) ByReviewer(userID int) []*models.Review {
	return s.filter(func(r *models.Review) bool { return r.ReviewerID == userID })
}

// AboutUser lists reviews received by userID, newest first.
func (s *ReviewStore) AboutUser(userID int) []*models.Review {
	return s.filter(func(r *models.Review) bool { return r.RevieweeID == userID })
}

func (s *ReviewStore) filter(keep func(*models.Review) bool) []*models.Review {
	s.mu.RLock()
	var out []*models.Review
	for _, r := range s.reviews {
		if keep(r) {
			c := *r
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *ReviewStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}

func (s *ReviewStore) marshal() ([]byte, error) {
	s.mu.RLock()
	snap := reviewSnapshot{NextID: s.nextID}
	for _, r := range s.reviews {
		c := *r
		snap.Reviews = append(snap.Reviews, &c)
	}
	s.mu.RUnlock()
	sort.Slice(snap.Reviews, func(i, j int) bool { return snap.Reviews[i].ID < snap.Reviews[j].ID })
	return json.MarshalIndent(snap, "", "  ")
}
