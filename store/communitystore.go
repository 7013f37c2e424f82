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

// CommunityStore keeps the community board posts.
type CommunityStore struct {
	mu            sync.RWMutex
	posts         map[int64]*models.Post
	nextPostID    int64
	nextCommentID int64
	flusher       *Flusher
	logger        *zap.Logger
}

type communitySnapshot struct {
	Posts         []*models.Post `json:"posts"`
	NextPostID    int64          `json:"nextPostId"`
	NextCommentID int64          `json:"nextCommentId"`
}

func NewCommunityStore(sink persist.Sink, logger *zap.Logger) *CommunityStore {
	s := &CommunityStore{
		posts:         make(map[int64]*models.Post),
		nextPostID:    1,
		nextCommentID: 1,
		logger:        logger,
	}
	s.flusher = NewFlusher("community", sink, s.marshal, logger)
	return s
}

func (s *CommunityStore) Load(ctx context.Context) error {
	data, ok, err := s.flusher.sink.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("no community snapshot found, starting empty")
		return nil
	}
	var snap communitySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = make(map[int64]*models.Post, len(snap.Posts))
	for _, p := range snap.Posts {
		s.posts[p.ID] = p
	}
	s.nextPostID = snap.NextPostID
	s.nextCommentID = snap.NextCommentID
	if s.nextPostID < 1 {
		s.nextPostID = 1
	}
	if s.nextCommentID < 1 {
		s.nextCommentID = 1
	}
	s.logger.Info("community posts loaded", zap.Int("count", len(s.posts)))
	return nil
}

func (s *CommunityStore) Start() { s.flusher.Start() }
func (s *CommunityStore) Stop()  { s.flusher.Stop() }

func (s *CommunityStore) Flush(ctx context.Context) error { return s.flusher.Flush(ctx) }
func (s *CommunityStore) Degraded() bool                  { return s.flusher.Degraded() }

func (s *CommunityStore) Create(p *models.Post) *models.Post {
	s.mu.Lock()
	now := time.Now()
	p.ID = s.nextPostID
	s.nextPostID++
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.LikedUserIDs == nil {
		p.LikedUserIDs = []int{}
	}
	if p.Comments == nil {
		p.Comments = []models.PostComment{}
	}
	s.posts[p.ID] = p
	out := clonePost(p)
	s.mu.Unlock()
	s.flusher.Request()
	return out
}

// List returns a page of posts, newest first, optionally filtered by
// category. The second result is the total before paging.
func (s *CommunityStore) List(category string, page, limit int) ([]*models.Post, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	s.mu.RLock()
	var all []*models.Post
	for _, p := range s.posts {
		if category != "" && p.Category != category {
			continue
		}
		all = append(all, clonePost(p))
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total
}

// Get returns the post and bumps its view count.
func (s *CommunityStore) Get(id int64) (*models.Post, error) {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrPostNotFound
	}
	p.ViewCount++
	out := clonePost(p)
	s.mu.Unlock()
	s.flusher.Request()
	return out, nil
}

// Update lets the author change title, content or category.
func (s *CommunityStore) Update(id int64, callerID int, fn func(p *models.Post)) (*models.Post, error) {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrPostNotFound
	}
	if p.AuthorID != callerID {
		s.mu.Unlock()
		return nil, models.ErrNotAuthor
	}
	fn(p)
	p.UpdatedAt = time.Now()
	out := clonePost(p)
	s.mu.Unlock()
	s.flusher.Request()
	return out, nil
}

func (s *CommunityStore) Delete(id int64, callerID int) error {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return models.ErrPostNotFound
	}
	if p.AuthorID != callerID {
		s.mu.Unlock()
		return models.ErrNotAuthor
	}
	delete(s.posts, id)
	s.mu.Unlock()
	s.flusher.Request()
	return nil
}

// ToggleLike flips userID's like on the post and returns the new state.
func (s *CommunityStore) ToggleLike(id int64, userID int) (liked bool, count int, err error) {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return false, 0, models.ErrPostNotFound
	}
	if p.LikedBy(userID) {
		removeID(&p.LikedUserIDs, userID)
		liked = false
	} else {
		p.LikedUserIDs = append(p.LikedUserIDs, userID)
		liked = true
	}
	p.UpdatedAt = time.Now()
	count = len(p.LikedUserIDs)
	s.mu.Unlock()
	s.flusher.Request()
	return liked, count, nil
}

func (s *CommunityStore) AddComment(id int64, c models.PostComment) (*models.Post, error) {
	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrPostNotFound
	}
	c.ID = s.nextCommentID
	s.nextCommentID++
	c.CreatedAt = time.Now()
	p.Comments = append(p.Comments, c)
	p.UpdatedAt = c.CreatedAt
	out := clonePost(p)
	s.mu.Unlock()
	s.flusher.Request()
	return out, nil
}

func (s *CommunityStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.LikedUserIDs = append([]int(nil), p.LikedUserIDs...)
	c.Comments = append([]models.PostComment(nil), p.Comments...)
	return &c
}

func (s *CommunityStore) marshal() ([]byte, error) {
	s.mu.RLock()
	snap := communitySnapshot{
		NextPostID:    s.nextPostID,
		NextCommentID: s.nextCommentID,
	}
	for _, p := range s.posts {
		snap.Posts = append(snap.Posts, clonePost(p))
	}
	s.mu.RUnlock()
	sort.Slice(snap.Posts, func(i, j int) bool { return snap.Posts[i].ID < snap.Posts[j].ID })
	return json.MarshalIndent(snap, "", "  ")
}
