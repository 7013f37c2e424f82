package handlers

import (
	"net/http"
	"strconv"

	"playmateserver/chat"
	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func roomIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, models.ValidationError("invalid room id")
	}
	return id, nil
}

// ListChatRooms returns the caller's active rooms, latest activity first.
func ListChatRooms(c *gin.Context, chats *store.ChatStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": chats.RoomsForUser(identity.UserID)})
}

type createRoomRequest struct {
	TargetUserID int   `json:"targetUserId"`
	MatchingID   int64 `json:"matchingId"`
}

// CreateDirectChatRoom opens (or returns the existing) direct room
// between the caller and the target user.
func CreateDirectChatRoom(c *gin.Context, chats *store.ChatStore, users *store.UserStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}
	if req.TargetUserID == 0 {
		fail(c, logger, models.ValidationError("targetUserId is required"))
		return
	}
	target, err := users.GetByID(req.TargetUserID)
	if err != nil {
		fail(c, logger, err)
		return
	}

	room, err := chats.OpenDirectRoom(
		models.ChatParticipant{UserID: identity.UserID, Nickname: identity.Nickname},
		models.ChatParticipant{UserID: target.ID, Nickname: target.Nickname},
		req.MatchingID,
	)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

// GetChatRoom returns one room the caller belongs to.
func GetChatRoom(c *gin.Context, chats *store.ChatStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := roomIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	room, err := chats.Room(id, identity.UserID)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

// ListChatMessages pages through a room's history and marks it read.
func ListChatMessages(c *gin.Context, chats *store.ChatStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := roomIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	msgs, total, err := chats.Messages(id, identity.UserID, page, limit)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    msgs,
		"pagination": gin.H{
			"current": page,
			"total":   total,
		},
	})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendChatMessage persists a message over HTTP and pushes it to any
// connected websocket clients in the room.
func SendChatMessage(c *gin.Context, chats *store.ChatStore, hub *chat.Hub, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := roomIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		fail(c, logger, models.ValidationError("content is required"))
		return
	}

	msg, err := chats.AppendMessage(id, identity.UserID, identity.Nickname, req.Content)
	if err != nil {
		fail(c, logger, err)
		return
	}
	hub.Broadcast(msg)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": msg})
}

// LeaveChatRoom removes the caller from the room.
func LeaveChatRoom(c *gin.Context, chats *store.ChatStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := roomIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if err := chats.LeaveRoom(id, identity.UserID); err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Left chat room"})
}

// CreateChatSession mints the websocket session ID the client presents
// on /ws/chat.
func CreateChatSession(c *gin.Context, rdb *redis.Client, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	sessionID, err := chat.CreateSession(c.Request.Context(), rdb, identity, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal_error", "error": "failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"sessionID": sessionID, "userID": identity.UserID}})
}
