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

// NotificationStore keeps per-user in-app notifications.
type NotificationStore struct {
	mu      sync.RWMutex
	items   map[int64]*models.Notification
	nextID  int64
	flusher *Flusher
	logger  *zap.Logger
}

type notificationSnapshot struct {
	Notifications []*models.Notification `json:"notifications"`
	NextID        int64                  `json:"nextId"`
}

func NewNotificationStore(sink persist.Sink, logger *zap.Logger) *NotificationStore {
	s := &NotificationStore{
		items:  make(map[int64]*models.Notification),
		nextID: 1,
		logger: logger,
	}
	s.flusher = NewFlusher("notifications", sink, s.marshal, logger)
	return s
}

func (s *NotificationStore) Load(ctx context.Context) error {
	data, ok, err := s.flusher.sink.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("no notification snapshot found, starting empty")
		return nil
	}
	var snap notificationSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]*models.Notification, len(snap.Notifications))
	for _, n := range snap.Notifications {
		s.items[n.ID] = n
	}
	s.nextID = snap.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}
	s.logger.Info("notifications loaded", zap.Int("count", len(s.items)))
	return nil
}

func (s *NotificationStore) Start() { s.flusher.Start() }
func (s *NotificationStore) Stop()  { s.flusher.Stop() }

func (s *NotificationStore) Flush(ctx context.Context) error { return s.flusher.Flush(ctx) }
func (s *NotificationStore) Degraded() bool                  { return s.flusher.Degraded() }

// Notify creates a notification for each recipient. Self-notifications
// are skipped so lifecycle side effects can pass rosters verbatim.
func (s *NotificationStore) Notify(recipients []int, senderID int, typ, message string, matchingID int64) {
	s.mu.Lock()
	now := time.Now()
	for _, rid := range recipients {
		if rid == senderID {
			continue
		}
		n := &models.Notification{
			ID:          s.nextID,
			RecipientID: rid,
			SenderID:    senderID,
			Type:        typ,
			Message:     message,
			MatchingID:  matchingID,
			CreatedAt:   now,
		}
		s.nextID++
		s.items[n.ID] = n
	}
	s.mu.Unlock()
	s.flusher.Request()
}

// ListFor returns userID's notifications, newest first, with the unread
// count across all of them.
func (s *NotificationStore) ListFor(userID int, unreadOnly bool) ([]*models.Notification, int) {
	s.mu.RLock()
	var out []*models.Notification
	unread := 0
	for _, n := range s.items {
		if n.RecipientID != userID {
			continue
		}
		if !n.IsRead {
			unread++
		}
		if unreadOnly && n.IsRead {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, unread
}

// MarkRead marks one notification read. Only the recipient may do so.
func (s *NotificationStore) MarkRead(id int64, callerID int) error {
	s.mu.Lock()
	n, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return models.ErrNotificationNotFound
	}
	if n.RecipientID != callerID {
		s.mu.Unlock()
		return models.ErrNotRecipient
	}
	if !n.IsRead {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
	}
	s.mu.Unlock()
	s.flusher.Request()
	return nil
}

// MarkAllRead marks every unread notification of callerID read.
func (s *NotificationStore) MarkAllRead(callerID int) int {
	s.mu.Lock()
	now := time.Now()
	n := 0
	for _, item := range s.items {
		if item.RecipientID == callerID && !item.IsRead {
			item.IsRead = true
			item.ReadAt = &now
			n++
		}
	}
	s.mu.Unlock()
	if n > 0 {
		s.flusher.Request()
	}
	return n
}

func (s *NotificationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *NotificationStore) marshal() ([]byte, error) {
	s.mu.RLock()
	snap := notificationSnapshot{NextID: s.nextID}
	for _, n := range s.items {
		c := *n
		snap.Notifications = append(snap.Notifications, &c)
	}
	s.mu.RUnlock()
	sort.Slice(snap.Notifications, func(i, j int) bool { return snap.Notifications[i].ID < snap.Notifications[j].ID })
	return json.MarshalIndent(snap, "", "  ")
}
