package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type reviewRequest struct {
	MatchingID int64    `json:"matchingId"`
	RevieweeID int      `json:"revieweeId"`
	Rating     int      `json:"rating"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
}

// CreateReview records a post-match rating. Both caller and reviewee
// must have taken part in the matching, and it must be completed.
func CreateReview(c *gin.Context, reviews *store.ReviewStore, matches *store.MatchStore, users *store.UserStore, notifications *store.NotificationStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		fail(c, logger, models.ValidationError("rating must be between 1 and 5"))
		return
	}
	if req.RevieweeID == identity.UserID {
		fail(c, logger, models.ValidationError("cannot review yourself"))
		return
	}

	m, err := matches.Get(req.MatchingID)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if m.Status != models.StatusCompleted {
		fail(c, logger, models.ValidationError("matching is not completed yet"))
		return
	}
	if !m.HasParticipant(identity.UserID) || !m.HasParticipant(req.RevieweeID) {
		fail(c, logger, models.ErrNotAParticipant)
		return
	}

	review, err := reviews.Create(&models.Review{
		ReviewerID: identity.UserID,
		RevieweeID: req.RevieweeID,
		MatchingID: req.MatchingID,
		Rating:     req.Rating,
		Content:    req.Content,
		Tags:       req.Tags,
	})
	if err != nil {
		fail(c, logger, err)
		return
	}

	if err := users.ApplyReview(req.RevieweeID, req.Rating); err != nil {
		logger.Warn("manner score update skipped", zap.Int("revieweeID", req.RevieweeID), zap.Error(err))
	}
	notifications.Notify([]int{req.RevieweeID}, identity.UserID,
		models.NotifyReviewReceived,
		fmt.Sprintf("%s left you a review", identity.Nickname), req.MatchingID)

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": review})
}

// MyReviews lists reviews written by the caller.
func MyReviews(c *gin.Context, reviews *store.ReviewStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews.ByReviewer(identity.UserID)})
}

// ReviewsAboutUser lists reviews a user has received.
func ReviewsAboutUser(c *gin.Context, reviews *store.ReviewStore, logger *zap.Logger) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, logger, models.ValidationError("invalid user id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews.AboutUser(userID)})
}
