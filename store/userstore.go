package store

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"playmateserver/models"
	"playmateserver/persist"

	"go.uber.org/zap"
)

// User IDs come from a fixed 6-digit namespace.
const (
	UserIDMin = 100000
	UserIDMax = 999999
)

// maxRandomAttempts bounds the random draw before the allocator falls
// back to a linear scan of the namespace.
const maxRandomAttempts = 1000

// UserStore keeps every account in memory, keyed by ID with a secondary
// email index for duplicate checks and login.
type UserStore struct {
	mu      sync.RWMutex
	users   map[int]*models.User
	byEmail map[string]*models.User
	flusher *Flusher
	logger  *zap.Logger
}

type userSnapshot struct {
	Users []*models.User `json:"users"`
}

func NewUserStore(sink persist.Sink, logger *zap.Logger) *UserStore {
	s := &UserStore{
		users:   make(map[int]*models.User),
		byEmail: make(map[string]*models.User),
		logger:  logger,
	}
	s.flusher = NewFlusher("users", sink, s.marshal, logger)
	return s
}

func (s *UserStore) Load(ctx context.Context) error {
	data, ok, err := s.flusher.sink.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("no user snapshot found, starting empty")
		return nil
	}
	var snap userSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[int]*models.User, len(snap.Users))
	s.byEmail = make(map[string]*models.User, len(snap.Users))
	for _, u := range snap.Users {
		s.users[u.ID] = u
		s.byEmail[u.Email] = u
	}
	s.logger.Info("users loaded", zap.Int("count", len(s.users)))
	return nil
}

func (s *UserStore) Start() { s.flusher.Start() }
func (s *UserStore) Stop()  { s.flusher.Stop() }

func (s *UserStore) Flush(ctx context.Context) error { return s.flusher.Flush(ctx) }
func (s *UserStore) Degraded() bool                  { return s.flusher.Degraded() }

// allocateIDLocked draws a random ID from [UserIDMin, UserIDMax],
// retrying on collision up to maxRandomAttempts, then scans the namespace
// from the bottom for the first free slot. Returns
// ErrIdentitySpaceExhausted when all ~900k IDs are taken.
func (s *UserStore) allocateIDLocked() (int, error) {
	for i := 0; i < maxRandomAttempts; i++ {
		id := UserIDMin + rand.Intn(UserIDMax-UserIDMin+1)
		if _, taken := s.users[id]; !taken {
			return id, nil
		}
	}
	for id := UserIDMin; id <= UserIDMax; id++ {
		if _, taken := s.users[id]; !taken {
			return id, nil
		}
	}
	return 0, models.ErrIdentitySpaceExhausted
}

// Register allocates an ID for the new account and stores it. The
// password field must already be hashed. Fails with ErrEmailExists on a
// duplicate email and ErrIdentitySpaceExhausted when no ID is free.
func (s *UserStore) Register(u *models.User) (*models.User, error) {
	s.mu.Lock()
	if _, dup := s.byEmail[u.Email]; dup {
		s.mu.Unlock()
		return nil, models.ErrEmailExists
	}
	id, err := s.allocateIDLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	now := time.Now()
	u.ID = id
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.FollowingIDs == nil {
		u.FollowingIDs = []int{}
	}
	if u.FollowerIDs == nil {
		u.FollowerIDs = []int{}
	}
	if u.MannerScore == 0 {
		u.MannerScore = 5.0
	}
	s.users[id] = u
	s.byEmail[u.Email] = u
	out := u.Clone()
	s.mu.Unlock()
	s.flusher.Request()
	return out, nil
}

func (s *UserStore) GetByID(id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u.Clone(), nil
}

// Update runs fn on the live record under the lock, keeping the email
// index in step if fn changes the address.
func (s *UserStore) Update(id int, fn func(u *models.User) error) (*models.User, error) {
	s.mu.Lock()
	u, ok := s.users[id]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrUserNotFound
	}
	oldEmail := u.Email
	if err := fn(u); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if u.Email != oldEmail {
		delete(s.byEmail, oldEmail)
		s.byEmail[u.Email] = u
	}
	u.UpdatedAt = time.Now()
	out := u.Clone()
	s.mu.Unlock()
	s.flusher.Request()
	return out, nil
}

// Deactivate is the soft delete: the account stays so the ID is never
// reused, but it stops showing up in search.
func (s *UserStore) Deactivate(id int) error {
	_, err := s.Update(id, func(u *models.User) error {
		u.IsActive = false
		return nil
	})
	return err
}

// Search matches active users by case-insensitive nickname substring.
func (s *UserStore) Search(query string, limit int) []*models.User {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(u.Nickname), q) {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Follow records followerID following targetID, on both sides.
func (s *UserStore) Follow(followerID, targetID int) error {
	s.mu.Lock()
	follower, ok := s.users[followerID]
	if !ok {
		s.mu.Unlock()
		return models.ErrUserNotFound
	}
	target, ok := s.users[targetID]
	if !ok {
		s.mu.Unlock()
		return models.ErrUserNotFound
	}
	if !follower.Follows(targetID) {
		follower.FollowingIDs = append(follower.FollowingIDs, targetID)
		target.FollowerIDs = append(target.FollowerIDs, followerID)
		now := time.Now()
		follower.UpdatedAt = now
		target.UpdatedAt = now
	}
	s.mu.Unlock()
	s.flusher.Request()
	return nil
}

// Unfollow removes the relationship on both sides. A no-op when absent.
func (s *UserStore) Unfollow(followerID, targetID int) error {
	s.mu.Lock()
	follower, ok := s.users[followerID]
	if !ok {
		s.mu.Unlock()
		return models.ErrUserNotFound
	}
	target, ok := s.users[targetID]
	if !ok {
		s.mu.Unlock()
		return models.ErrUserNotFound
	}
	removeID(&follower.FollowingIDs, targetID)
	removeID(&target.FollowerIDs, followerID)
	now := time.Now()
	follower.UpdatedAt = now
	target.UpdatedAt = now
	s.mu.Unlock()
	s.flusher.Request()
	return nil
}

// ApplyReview folds a new rating into the reviewee's running manner-score
// average.
func (s *UserStore) ApplyReview(revieweeID int, rating int) error {
	_, err := s.Update(revieweeID, func(u *models.User) error {
		total := u.MannerScore*float64(u.ReviewCount) + float64(rating)
		u.ReviewCount++
		u.MannerScore = total / float64(u.ReviewCount)
		return nil
	})
	return err
}

func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *UserStore) marshal() ([]byte, error) {
	s.mu.RLock()
	snap := userSnapshot{Users: make([]*models.User, 0, len(s.users))}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	return json.MarshalIndent(snap, "", "  ")
}

func removeID(ids *[]int, id int) {
	for i, v := range *ids {
		if v == id {
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			return
		}
	}
}
