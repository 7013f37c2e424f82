package handlers

import (
	"net/http"
	"strconv"

	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func userIDParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, models.ValidationError("invalid user id")
	}
	return id, nil
}

// GetUserProfile returns any user's public profile.
func GetUserProfile(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	id, err := userIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	user, err := users.GetByID(id)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userResponse(user)})
}

type updateProfileRequest struct {
	Nickname     *string `json:"nickname"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profileImage"`
	Location     *string `json:"location"`
	SkillLevel   *int    `json:"skillLevel"`
}

// UpdateUserProfile lets a user edit their own profile fields.
func UpdateUserProfile(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := userIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if id != identity.UserID {
		fail(c, logger, &models.AppError{Code: "not_author", Message: "cannot modify another user's profile"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}

	user, err := users.Update(id, func(u *models.User) error {
		if req.Nickname != nil {
			u.Nickname = *req.Nickname
		}
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		if req.ProfileImage != nil {
			u.ProfileImage = *req.ProfileImage
		}
		if req.Location != nil {
			u.Location = *req.Location
		}
		if req.SkillLevel != nil {
			u.SkillLevel = *req.SkillLevel
		}
		return nil
	})
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userResponse(user)})
}

// DeactivateUser is the account soft delete: the record and its ID stay.
func DeactivateUser(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := userIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if id != identity.UserID {
		fail(c, logger, &models.AppError{Code: "not_author", Message: "cannot deactivate another user's account"})
		return
	}
	if err := users.Deactivate(id); err != nil {
		fail(c, logger, err)
		return
	}
	logger.Info("user deactivated", zap.Int("userID", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User account deactivated successfully"})
}

// SearchUsers matches active users by nickname substring.
func SearchUsers(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	query := c.Query("q")
	if query == "" {
		fail(c, logger, models.ValidationError("query parameter q is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	results := users.Search(query, limit)
	data := make([]gin.H, 0, len(results))
	for _, u := range results {
		data = append(data, userResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// FollowUser makes the caller follow the target user.
func FollowUser(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	targetID, err := userIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if targetID == identity.UserID {
		fail(c, logger, models.ValidationError("cannot follow yourself"))
		return
	}
	if err := users.Follow(identity.UserID, targetID); err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Now following user"})
}

// UnfollowUser removes the follow relationship.
func UnfollowUser(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	targetID, err := userIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if err := users.Unfollow(identity.UserID, targetID); err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Unfollowed user"})
}
