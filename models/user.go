package models

import "time"

// User is an account record. IDs are drawn from the fixed 6-digit
// namespace [100000, 999999] and never reused while the account exists.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Password     string    `json:"password"` // bcrypt hash; snapshots keep it, handlers never echo it
	Nickname     string    `json:"nickname"`
	BirthYear    int       `json:"birthYear"`
	Gender       string    `json:"gender"`
	ProfileImage string    `json:"profileImage"`
	Bio          string    `json:"bio"`
	Location     string    `json:"location"`
	SkillLevel   int       `json:"skillLevel"`
	NtrpScore    float64   `json:"ntrpScore"`
	MannerScore  float64   `json:"mannerScore"`
	ReviewCount  int       `json:"reviewCount"`
	FollowingIDs []int     `json:"followingIds"`
	FollowerIDs  []int     `json:"followerIds"`
	IsVerified   bool      `json:"isVerified"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a deep copy safe to hand outside the store lock.
func (u *User) Clone() *User {
	c := *u
	c.FollowingIDs = append([]int(nil), u.FollowingIDs...)
	c.FollowerIDs = append([]int(nil), u.FollowerIDs...)
	return &c
}

// Follows reports whether the user follows targetID.
func (u *User) Follows(targetID int) bool {
	for _, id := range u.FollowingIDs {
		if id == targetID {
			return true
		}
	}
	return false
}
