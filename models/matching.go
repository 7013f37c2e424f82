package models

import "time"

// MatchStatus is the lifecycle state of a matching.
type MatchStatus string

const (
	StatusRecruiting MatchStatus = "recruiting"
	StatusConfirmed  MatchStatus = "confirmed"
	StatusCompleted  MatchStatus = "completed"
	StatusCancelled  MatchStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s MatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HostProfile is the host's public profile embedded in the matching so
// listings render without a user lookup.
type HostProfile struct {
	ID           int       `json:"id"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Matching is one hosted game posting with its participant rosters.
// AppliedUserIDs and ConfirmedUserIDs are disjoint; a user appears in at
// most one of them, and never the host.
type Matching struct {
	ID     int64       `json:"id"`
	Type   string      `json:"type"`
	Status MatchStatus `json:"status"`
	Host   HostProfile `json:"host"`

	CourtName string    `json:"courtName"`
	CourtLat  float64   `json:"courtLat"`
	CourtLng  float64   `json:"courtLng"`
	Date      time.Time `json:"date"`
	TimeSlot  string    `json:"timeSlot"`
	GameType  string    `json:"gameType"`

	MinLevel           int    `json:"minLevel"`
	MaxLevel           int    `json:"maxLevel"`
	MinAge             int    `json:"minAge"`
	MaxAge             int    `json:"maxAge"`
	MaleRecruitCount   int    `json:"maleRecruitCount"`
	FemaleRecruitCount int    `json:"femaleRecruitCount"`
	GuestCost          int    `json:"guestCost"`
	Message            string `json:"message"`
	IsFollowersOnly    bool   `json:"isFollowersOnly"`

	AppliedUserIDs   []int `json:"appliedUserIds"`
	ConfirmedUserIDs []int `json:"confirmedUserIds"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	CancelledAt *time.Time `json:"cancelledAt"`
}

func (m *Matching) HostID() int { return m.Host.ID }

// Capacity is the recruit limit across both rosters. Zero means unlimited.
func (m *Matching) Capacity() int {
	return m.MaleRecruitCount + m.FemaleRecruitCount
}

// RosterSize counts applicants plus confirmed participants.
func (m *Matching) RosterSize() int {
	return len(m.AppliedUserIDs) + len(m.ConfirmedUserIDs)
}

// HasParticipant reports whether userID is the host or on either roster.
func (m *Matching) HasParticipant(userID int) bool {
	if userID == m.HostID() {
		return true
	}
	for _, id := range m.AppliedUserIDs {
		if id == userID {
			return true
		}
	}
	for _, id := range m.ConfirmedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand outside the store lock.
func (m *Matching) Clone() *Matching {
	c := *m
	c.AppliedUserIDs = append([]int(nil), m.AppliedUserIDs...)
	c.ConfirmedUserIDs = append([]int(nil), m.ConfirmedUserIDs...)
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		c.CompletedAt = &t
	}
	if m.CancelledAt != nil {
		t := *m.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}
