// Package handlers contains the HTTP layer: thin gin handlers that bind
// the request, resolve the caller identity, call into the stores and the
// matching package, and map tagged failures to HTTP statuses. No business
// rule lives here.
package handlers

import (
	"net/http"

	"playmateserver/middlewares"
	"playmateserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// httpStatus maps a stable error code to the HTTP status the mobile
// client expects. Anything unknown is a 500.
func httpStatus(code string) int {
	switch code {
	case "not_found", "user_not_found", "room_not_found", "post_not_found",
		"notification_not_found", "court_not_found":
		return http.StatusNotFound
	case "not_host", "not_author", "not_recipient":
		return http.StatusForbidden
	case "invalid_credentials":
		return http.StatusUnauthorized
	case "identity_space_exhausted":
		return http.StatusServiceUnavailable
	case "validation_error", "invalid_transition", "match_not_recruiting",
		"already_applied", "self_application", "not_a_participant",
		"match_full", "email_exists", "already_reviewed", "not_room_member":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail logs the error and writes the tagged failure body.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	code := models.ErrorCode(err)
	logger.Warn("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("code", code),
		zap.Error(err),
	)
	c.JSON(httpStatus(code), gin.H{"status": code, "error": err.Error()})
}

// callerIdentity pulls the identity the auth middleware stored, aborting
// with 401 when it is missing (a route wired without the middleware).
func callerIdentity(c *gin.Context, logger *zap.Logger) (models.Identity, bool) {
	id, ok := middlewares.Identity(c)
	if !ok {
		logger.Error("handler reached without identity in context")
		c.JSON(http.StatusUnauthorized, gin.H{"status": "no_token", "error": "authorization required"})
		return models.Identity{}, false
	}
	return id, true
}

// userResponse is the client-facing shape of an account: everything but
// the password hash, with numeric defaults the Flutter models expect.
func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"nickname":     u.Nickname,
		"birthYear":    u.BirthYear,
		"gender":       u.Gender,
		"profileImage": u.ProfileImage,
		"bio":          u.Bio,
		"location":     u.Location,
		"skillLevel":   u.SkillLevel,
		"ntrpScore":    u.NtrpScore,
		"mannerScore":  u.MannerScore,
		"reviewCount":  u.ReviewCount,
		"followingIds": u.FollowingIDs,
		"followerIds":  u.FollowerIDs,
		"isVerified":   u.IsVerified,
		"isActive":     u.IsActive,
		"createdAt":    u.CreatedAt,
		"updatedAt":    u.UpdatedAt,
	}
}
