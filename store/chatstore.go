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

// ChatStore keeps direct chat rooms and their messages. Room and message
// IDs are simple counters restored from the snapshot.
type ChatStore struct {
	mu            sync.RWMutex
	rooms         map[int64]*models.ChatRoom
	messages      map[int64][]*models.ChatMessage // keyed by room ID
	nextRoomID    int64
	nextMessageID int64
	flusher       *Flusher
	logger        *zap.Logger
}

type chatSnapshot struct {
	Rooms         []*models.ChatRoom    `json:"rooms"`
	Messages      []*models.ChatMessage `json:"messages"`
	NextRoomID    int64                 `json:"nextRoomId"`
	NextMessageID int64                 `json:"nextMessageId"`
}

func NewChatStore(sink persist.Sink, logger *zap.Logger) *ChatStore {
	s := &ChatStore{
		rooms:         make(map[int64]*models.ChatRoom),
		messages:      make(map[int64][]*models.ChatMessage),
		nextRoomID:    1,
		nextMessageID: 1,
		logger:        logger,
	}
	s.flusher = NewFlusher("chat", sink, s.marshal, logger)
	return s
}

func (s *ChatStore) Load(ctx context.Context) error {
	data, ok, err := s.flusher.sink.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("no chat snapshot found, starting empty")
		return nil
	}
	var snap chatSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = make(map[int64]*models.ChatRoom, len(snap.Rooms))
	for _, r := range snap.Rooms {
		s.rooms[r.ID] = r
	}
	s.messages = make(map[int64][]*models.ChatMessage)
	for _, m := range snap.Messages {
		s.messages[m.RoomID] = append(s.messages[m.RoomID], m)
	}
	s.nextRoomID = snap.NextRoomID
	s.nextMessageID = snap.NextMessageID
	if s.nextRoomID < 1 {
		s.nextRoomID = 1
	}
	if s.nextMessageID < 1 {
		s.nextMessageID = 1
	}
	s.logger.Info("chat loaded", zap.Int("rooms", len(s.rooms)), zap.Int("messages", len(snap.Messages)))
	return nil
}

func (s *ChatStore) Start() { s.flusher.Start() }
func (s *ChatStore) Stop()  { s.flusher.Stop() }

func (s *ChatStore) Flush(ctx context.Context) error { return s.flusher.Flush(ctx) }
func (s *ChatStore) Degraded() bool                  { return s.flusher.Degraded() }

// RoomsForUser lists the active rooms userID belongs to, most recent
// activity first.
func (s *ChatStore) RoomsForUser(userID int) []*models.ChatRoom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ChatRoom
	for _, r := range s.rooms {
		if r.IsActive && r.HasParticipant(userID) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lastActivity(out[i]).After(lastActivity(out[j]))
	})
	return out
}

func lastActivity(r *models.ChatRoom) time.Time {
	if r.LastMessage != nil {
		return r.LastMessage.SentAt
	}
	return r.CreatedAt
}

// OpenDirectRoom returns the existing direct room between the two users
// or creates one. Self-chat is a validation error.
func (s *ChatStore) OpenDirectRoom(a, b models.ChatParticipant, matchingID int64) (*models.ChatRoom, error) {
	if a.UserID == b.UserID {
		return nil, models.ValidationError("cannot open a chat room with yourself")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Type == "direct" && r.IsActive && len(r.Participants) == 2 &&
			r.HasParticipant(a.UserID) && r.HasParticipant(b.UserID) {
			return r.Clone(), nil
		}
	}
	now := time.Now()
	a.JoinedAt, b.JoinedAt = now, now
	a.LastReadAt, b.LastReadAt = now, now
	room := &models.ChatRoom{
		ID:           s.nextRoomID,
		Type:         "direct",
		MatchingID:   matchingID,
		Participants: []models.ChatParticipant{a, b},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextRoomID++
	s.rooms[room.ID] = room
	s.flusher.Request()
	return room.Clone(), nil
}

// Room returns the room after checking userID is a member.
func (s *ChatStore) Room(roomID int64, userID int) (*models.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	if !ok || !r.IsActive {
		return nil, models.ErrRoomNotFound
	}
	if !r.HasParticipant(userID) {
		return nil, models.ErrNotRoomMember
	}
	return r.Clone(), nil
}

// AppendMessage persists a message, bumps the room's last-message preview
// and the other participants' unread counters.
func (s *ChatStore) AppendMessage(roomID int64, senderID int, senderNickname, content string) (*models.ChatMessage, error) {
	s.mu.Lock()
	r, ok := s.rooms[roomID]
	if !ok || !r.IsActive {
		s.mu.Unlock()
		return nil, models.ErrRoomNotFound
	}
	if !r.HasParticipant(senderID) {
		s.mu.Unlock()
		return nil, models.ErrNotRoomMember
	}
	now := time.Now()
	msg := &models.ChatMessage{
		ID:             s.nextMessageID,
		RoomID:         roomID,
		SenderID:       senderID,
		SenderNickname: senderNickname,
		Content:        content,
		SentAt:         now,
	}
	s.nextMessageID++
	s.messages[roomID] = append(s.messages[roomID], msg)
	r.LastMessage = &models.LastMessage{SenderID: senderID, Content: content, SentAt: now}
	r.UpdatedAt = now
	for i := range r.Participants {
		if r.Participants[i].UserID != senderID {
			r.Participants[i].UnreadCount++
		}
	}
	out := *msg
	s.mu.Unlock()
	s.flusher.Request()
	return &out, nil
}

// Messages returns a page of the room's messages, oldest first, and
// marks the room read for userID.
func (s *ChatStore) Messages(roomID int64, userID int, page, limit int) ([]*models.ChatMessage, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok || !r.IsActive {
		return nil, 0, models.ErrRoomNotFound
	}
	if !r.HasParticipant(userID) {
		return nil, 0, models.ErrNotRoomMember
	}
	msgs := s.messages[roomID]
	total := len(msgs)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]*models.ChatMessage, 0, end-start)
	for _, m := range msgs[start:end] {
		c := *m
		out = append(out, &c)
	}
	now := time.Now()
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			r.Participants[i].UnreadCount = 0
			r.Participants[i].LastReadAt = now
		}
	}
	s.flusher.Request()
	return out, total, nil
}

// LeaveRoom removes userID from the room; an emptied room is deactivated.
func (s *ChatStore) LeaveRoom(roomID int64, userID int) error {
	s.mu.Lock()
	r, ok := s.rooms[roomID]
	if !ok || !r.IsActive {
		s.mu.Unlock()
		return models.ErrRoomNotFound
	}
	if !r.HasParticipant(userID) {
		s.mu.Unlock()
		return models.ErrNotRoomMember
	}
	kept := r.Participants[:0]
	for _, p := range r.Participants {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	r.Participants = kept
	if len(r.Participants) == 0 {
		r.IsActive = false
	}
	r.UpdatedAt = time.Now()
	s.mu.Unlock()
	s.flusher.Request()
	return nil
}

// RoomCount returns the number of active rooms.
func (s *ChatStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.rooms {
		if r.IsActive {
			n++
		}
	}
	return n
}

func (s *ChatStore) marshal() ([]byte, error) {
	s.mu.RLock()
	snap := chatSnapshot{
		NextRoomID:    s.nextRoomID,
		NextMessageID: s.nextMessageID,
	}
	for _, r := range s.rooms {
		snap.Rooms = append(snap.Rooms, r.Clone())
	}
	for _, msgs := range s.messages {
		for _, m := range msgs {
			c := *m
			snap.Messages = append(snap.Messages, &c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(snap.Rooms, func(i, j int) bool { return snap.Rooms[i].ID < snap.Rooms[j].ID })
	sort.Slice(snap.Messages, func(i, j int) bool { return snap.Messages[i].ID < snap.Messages[j].ID })
	return json.MarshalIndent(snap, "", "  ")
}
