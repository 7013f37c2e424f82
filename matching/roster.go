package matching

import (
	"time"

	"playmateserver/models"
)

// applyRoster appends userID to the applied roster after the membership
// guards. Callers have already checked the status guard.
func applyRoster(m *models.Matching, userID int, now time.Time) error {
	if userID == m.HostID() {
		return models.ErrSelfApplication
	}
	if m.HasParticipant(userID) {
		return models.ErrAlreadyApplied
	}
	if m.Capacity() > 0 && m.RosterSize() >= m.Capacity() {
		return models.ErrMatchFull
	}
	m.AppliedUserIDs = append(m.AppliedUserIDs, userID)
	m.UpdatedAt = now
	return nil
}

// confirmRoster drains the applied roster into the confirmed roster,
// preserving relative order. A no-op when nothing is pending.
func confirmRoster(m *models.Matching, now time.Time) {
	if len(m.AppliedUserIDs) > 0 {
		m.ConfirmedUserIDs = append(m.ConfirmedUserIDs, m.AppliedUserIDs...)
		m.AppliedUserIDs = []int{}
	}
	m.UpdatedAt = now
}

// Leave removes userID from whichever roster currently holds it. The
// match status is untouched; a confirmed match simply plays one short.
func Leave(m *models.Matching, userID int) error {
	if removeID(&m.AppliedUserIDs, userID) || removeID(&m.ConfirmedUserIDs, userID) {
		m.UpdatedAt = time.Now()
		return nil
	}
	return models.ErrNotAParticipant
}

func removeID(ids *[]int, userID int) bool {
	for i, id := range *ids {
		if id == userID {
			*ids = append((*ids)[:i], (*ids)[i+1:]...)
			return true
		}
	}
	return false
}
