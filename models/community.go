package models

import "time"

// PostComment is one comment on a community post.
type PostComment struct {
	ID             int64     `json:"id"`
	AuthorID       int       `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Post is a community board posting.
type Post struct {
	ID             int64         `json:"id"`
	AuthorID       int           `json:"authorId"`
	AuthorNickname string        `json:"authorNickname"`
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	Category       string        `json:"category"`
	LikedUserIDs   []int         `json:"likedUserIds"`
	Comments       []PostComment `json:"comments"`
	ViewCount      int           `json:"viewCount"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID int) bool {
	for _, id := range p.LikedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
