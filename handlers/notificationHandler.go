package handlers

import (
	"net/http"
	"strconv"

	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(c *gin.Context, notifications *store.NotificationStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	unreadOnly := c.Query("unread") == "true"
	items, unread := notifications.ListFor(identity.UserID, unreadOnly)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        items,
		"unreadCount": unread,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(c *gin.Context, notifications *store.NotificationStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, logger, models.ValidationError("invalid notification id"))
		return
	}
	if err := notifications.MarkRead(id, identity.UserID); err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks every unread notification of the caller.
func MarkAllNotificationsRead(c *gin.Context, notifications *store.NotificationStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	n := notifications.MarkAllRead(identity.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"marked": n}})
}
