package models

import "time"

// Notification types mirror the lifecycle and review events that create them.
const (
	NotifyMatchApplied   = "match_applied"
	NotifyMatchConfirmed = "match_confirmed"
	NotifyMatchCancelled = "match_cancelled"
	NotifyReviewReceived = "review_received"
)

// Notification is one in-app notification for a single recipient.
type Notification struct {
	ID          int64      `json:"id"`
	RecipientID int        `json:"recipientId"`
	SenderID    int        `json:"senderId"`
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	MatchingID  int64      `json:"matchingId,omitempty"`
	IsRead      bool       `json:"isRead"`
	ReadAt      *time.Time `json:"readAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}
