package models

import "time"

// Review is a post-match rating of one participant by another.
type Review struct {
	ID         int64     `json:"id"`
	ReviewerID int       `json:"reviewerId"`
	RevieweeID int       `json:"revieweeId"`
	MatchingID int64     `json:"matchingId"`
	Rating     int       `json:"rating"` // 1..5
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
}
