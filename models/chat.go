package models

import "time"

// ChatParticipant is one member of a chat room.
type ChatParticipant struct {
	UserID      int       `json:"userId"`
	Nickname    string    `json:"nickname"`
	JoinedAt    time.Time `json:"joinedAt"`
	LastReadAt  time.Time `json:"lastReadAt"`
	UnreadCount int       `json:"unreadCount"`
}

// LastMessage is the room-list preview of the most recent message.
type LastMessage struct {
	SenderID int       `json:"senderId"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}

// ChatRoom is a direct conversation between two users, optionally tied
// to the matching that spawned it.
type ChatRoom struct {
	ID           int64             `json:"id"`
	Type         string            `json:"type"` // "direct"
	Name         string            `json:"name"`
	MatchingID   int64             `json:"matchingId,omitempty"`
	Participants []ChatParticipant `json:"participants"`
	LastMessage  *LastMessage      `json:"lastMessage"`
	IsActive     bool              `json:"isActive"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// HasParticipant reports whether userID is a member of the room.
func (r *ChatRoom) HasParticipant(userID int) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand outside the store lock.
func (r *ChatRoom) Clone() *ChatRoom {
	c := *r
	c.Participants = append([]ChatParticipant(nil), r.Participants...)
	if r.LastMessage != nil {
		m := *r.LastMessage
		c.LastMessage = &m
	}
	return &c
}

// ChatMessage is one persisted message.
type ChatMessage struct {
	ID             int64     `json:"id"`
	RoomID         int64     `json:"roomId"`
	SenderID       int       `json:"senderId"`
	SenderNickname string    `json:"senderNickname"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sentAt"`
}
