// Package matching implements the match lifecycle state machine and the
// participant roster rules. It owns every mutation of a Matching's status
// and rosters; stores and handlers call in here rather than touching the
// fields themselves.
//
// The state machine:
//
//	recruiting -> confirmed -> completed
//	recruiting/confirmed -> cancelled
//
// completed and cancelled are terminal. Every transition either fully
// applies (status, roster and timestamps) or fails without mutating the
// record, so callers running under the store lock see no partial state.
package matching

import (
	"time"

	"playmateserver/models"
)

// NewMatching builds a fresh record in the recruiting state with empty rosters.
func NewMatching(id int64, host models.HostProfile) *models.Matching {
	now := time.Now()
	return &models.Matching{
		ID:               id,
		Type:             "host",
		Status:           models.StatusRecruiting,
		Host:             host,
		AppliedUserIDs:   []int{},
		ConfirmedUserIDs: []int{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Apply requests to join. Permitted only while recruiting.
func Apply(m *models.Matching, userID int) error {
	if m.Status != models.StatusRecruiting {
		return models.ErrMatchNotRecruiting
	}
	return applyRoster(m, userID, time.Now())
}

// Confirm is the host accepting every pending applicant: the applied
// roster drains into the confirmed roster and the status advances.
func Confirm(m *models.Matching, callerID int) error {
	if callerID != m.HostID() {
		return models.ErrNotHost
	}
	if m.Status != models.StatusRecruiting {
		return models.ErrInvalidTransition
	}
	m.Status = models.StatusConfirmed
	confirmRoster(m, time.Now())
	return nil
}

// Complete marks a confirmed match as played. Host only.
func Complete(m *models.Matching, callerID int) error {
	if callerID != m.HostID() {
		return models.ErrNotHost
	}
	if m.Status != models.StatusConfirmed {
		return models.ErrInvalidTransition
	}
	now := time.Now()
	m.Status = models.StatusCompleted
	m.CompletedAt = &now
	m.UpdatedAt = now
	return nil
}

// Cancel terminates a recruiting or confirmed match. Host only. The
// record is retained with status=cancelled; Delete removes it entirely.
func Cancel(m *models.Matching, callerID int) error {
	if callerID != m.HostID() {
		return models.ErrNotHost
	}
	if m.Status.Terminal() {
		return models.ErrInvalidTransition
	}
	now := time.Now()
	m.Status = models.StatusCancelled
	m.CancelledAt = &now
	m.UpdatedAt = now
	return nil
}

// AuthorizeDelete checks the host-only guard for removing the record from
// the store. Deletion itself is a store operation and is permitted from
// any state, terminal or not.
func AuthorizeDelete(m *models.Matching, callerID int) error {
	if callerID != m.HostID() {
		return models.ErrNotHost
	}
	return nil
}
