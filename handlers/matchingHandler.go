package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"playmateserver/matching"
	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func matchIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, models.ValidationError("invalid matching id")
	}
	return id, nil
}

type createMatchingRequest struct {
	CourtName          string  `json:"courtName"`
	CourtLat           float64 `json:"courtLat"`
	CourtLng           float64 `json:"courtLng"`
	Date               string  `json:"date"`
	StartTime          string  `json:"startTime"`
	EndTime            string  `json:"endTime"`
	GameType           string  `json:"gameType"`
	MinLevel           int     `json:"minLevel"`
	MaxLevel           int     `json:"maxLevel"`
	MinAge             int     `json:"minAge"`
	MaxAge             int     `json:"maxAge"`
	MaleRecruitCount   int     `json:"maleRecruitCount"`
	FemaleRecruitCount int     `json:"femaleRecruitCount"`
	GuestCost          int     `json:"guestCost"`
	Message            string  `json:"message"`
	IsFollowersOnly    bool    `json:"isFollowersOnly"`
}

// ListMatchings returns every posting, newest first, with pagination
// metadata. Optional status filter.
func ListMatchings(c *gin.Context, matches *store.MatchStore, logger *zap.Logger) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	statusFilter := c.Query("status")

	all := matches.ListAll()
	if statusFilter != "" {
		filtered := all[:0]
		for _, m := range all {
			if string(m.Status) == statusFilter {
				filtered = append(filtered, m)
			}
		}
		all = filtered
	}

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    all[start:end],
		"pagination": gin.H{
			"current": page,
			"pages":   pages,
			"total":   total,
		},
	})
}

// MyMatchings lists the matches the caller hosts or participates in.
func MyMatchings(c *gin.Context, matches *store.MatchStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": matches.ListForUser(identity.UserID)})
}

// GetMatching returns one posting.
func GetMatching(c *gin.Context, matches *store.MatchStore, logger *zap.Logger) {
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	m, err := matches.Get(id)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": m})
}

// CreateMatching opens a new posting in the recruiting state.
func CreateMatching(c *gin.Context, matches *store.MatchStore, users *store.UserStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	var req createMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}
	if req.CourtName == "" {
		fail(c, logger, models.ValidationError("courtName is required"))
		return
	}
	if req.Date == "" {
		fail(c, logger, models.ValidationError("date is required"))
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		if date, err = time.Parse("2006-01-02", req.Date); err != nil {
			fail(c, logger, models.ValidationError("date must be ISO 8601"))
			return
		}
	}
	if req.MaleRecruitCount < 0 || req.FemaleRecruitCount < 0 {
		fail(c, logger, models.ValidationError("recruit counts cannot be negative"))
		return
	}

	host := models.HostProfile{
		ID:       identity.UserID,
		Nickname: identity.Nickname,
		Email:    identity.Email,
	}
	if u, err := users.GetByID(identity.UserID); err == nil {
		host.ProfileImage = u.ProfileImage
		host.CreatedAt = u.CreatedAt
		host.UpdatedAt = u.UpdatedAt
	}

	startTime, endTime := req.StartTime, req.EndTime
	if startTime == "" {
		startTime = "18:00"
	}
	if endTime == "" {
		endTime = "20:00"
	}

	m := matches.Create(host, func(m *models.Matching) {
		m.CourtName = req.CourtName
		m.CourtLat = req.CourtLat
		m.CourtLng = req.CourtLng
		m.Date = date
		m.TimeSlot = fmt.Sprintf("%s~%s", startTime, endTime)
		m.GameType = req.GameType
		m.MinLevel = req.MinLevel
		m.MaxLevel = req.MaxLevel
		m.MinAge = req.MinAge
		m.MaxAge = req.MaxAge
		m.MaleRecruitCount = req.MaleRecruitCount
		m.FemaleRecruitCount = req.FemaleRecruitCount
		m.GuestCost = req.GuestCost
		m.Message = req.Message
		m.IsFollowersOnly = req.IsFollowersOnly
	})

	logger.Info("matching created", zap.Int64("matchingID", m.ID), zap.Int("hostID", identity.UserID))
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": m})
}

// UpdateMatching lets the host edit the posting details while it is not
// in a terminal state. Status and rosters are not editable here.
func UpdateMatching(c *gin.Context, matches *store.MatchStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	var req createMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}

	m, err := matches.Update(id, func(m *models.Matching) error {
		if m.HostID() != identity.UserID {
			return models.ErrNotHost
		}
		if m.Status.Terminal() {
			return models.ErrInvalidTransition
		}
		if req.CourtName != "" {
			m.CourtName = req.CourtName
		}
		if req.Message != "" {
			m.Message = req.Message
		}
		if req.GameType != "" {
			m.GameType = req.GameType
		}
		if req.MaleRecruitCount > 0 {
			m.MaleRecruitCount = req.MaleRecruitCount
		}
		if req.FemaleRecruitCount > 0 {
			m.FemaleRecruitCount = req.FemaleRecruitCount
		}
		if req.GuestCost > 0 {
			m.GuestCost = req.GuestCost
		}
		m.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": m})
}

// DeleteMatching removes the record entirely. Distinct from cancel,
// which keeps the record with a terminal status.
func DeleteMatching(c *gin.Context, matches *store.MatchStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if err := matches.Delete(id, identity.UserID); err != nil {
		fail(c, logger, err)
		return
	}
	logger.Info("matching deleted", zap.Int64("matchingID", id), zap.Int("hostID", identity.UserID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Matching deleted successfully"})
}

// JoinMatching applies the caller to a recruiting match.
func JoinMatching(c *gin.Context, matches *store.MatchStore, notifications *store.NotificationStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	m, err := matches.Update(id, func(m *models.Matching) error {
		return matching.Apply(m, identity.UserID)
	})
	if err != nil {
		fail(c, logger, err)
		return
	}

	notifications.Notify([]int{m.HostID()}, identity.UserID, models.NotifyMatchApplied,
		fmt.Sprintf("%s applied to your matching at %s", identity.Nickname, m.CourtName), m.ID)

	logger.Info("user applied", zap.Int64("matchingID", id), zap.Int("userID", identity.UserID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully requested to join matching", "data": m})
}

// ConfirmMatching is the host accepting all pending applicants.
func ConfirmMatching(c *gin.Context, matches *store.MatchStore, notifications *store.NotificationStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	m, err := matches.Update(id, func(m *models.Matching) error {
		return matching.Confirm(m, identity.UserID)
	})
	if err != nil {
		fail(c, logger, err)
		return
	}

	notifications.Notify(m.ConfirmedUserIDs, identity.UserID, models.NotifyMatchConfirmed,
		fmt.Sprintf("Your matching at %s is confirmed", m.CourtName), m.ID)

	logger.Info("matching confirmed", zap.Int64("matchingID", id), zap.Int("participants", len(m.ConfirmedUserIDs)))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Matching confirmed", "data": m})
}

// LeaveMatching removes the caller from whichever roster holds them.
func LeaveMatching(c *gin.Context, matches *store.MatchStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	m, err := matches.Update(id, func(m *models.Matching) error {
		return matching.Leave(m, identity.UserID)
	})
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully left matching", "data": m})
}

// CancelMatching terminates the match but keeps the record.
func CancelMatching(c *gin.Context, matches *store.MatchStore, notifications *store.NotificationStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	m, err := matches.Update(id, func(m *models.Matching) error {
		return matching.Cancel(m, identity.UserID)
	})
	if err != nil {
		fail(c, logger, err)
		return
	}

	recipients := append(append([]int{}, m.AppliedUserIDs...), m.ConfirmedUserIDs...)
	notifications.Notify(recipients, identity.UserID, models.NotifyMatchCancelled,
		fmt.Sprintf("The matching at %s was cancelled", m.CourtName), m.ID)

	logger.Info("matching cancelled", zap.Int64("matchingID", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Matching cancelled", "data": m})
}

// CompleteMatching marks a confirmed match as played.
func CompleteMatching(c *gin.Context, matches *store.MatchStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := matchIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}

	m, err := matches.Update(id, func(m *models.Matching) error {
		return matching.Complete(m, identity.UserID)
	})
	if err != nil {
		fail(c, logger, err)
		return
	}
	logger.Info("matching completed", zap.Int64("matchingID", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Matching completed", "data": m})
}
