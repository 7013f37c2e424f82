package handlers

import (
	"net/http"
	"time"

	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var startedAt = time.Now()

// Health reports process uptime, store sizes and whether any snapshot
// writer is currently failing.
func Health(c *gin.Context, matches *store.MatchStore, users *store.UserStore, chats *store.ChatStore, posts *store.CommunityStore, reviews *store.ReviewStore, notifications *store.NotificationStore, courts *store.CourtStore, logger *zap.Logger) {
	degraded := matches.Degraded() || users.Degraded() || chats.Degraded() ||
		posts.Degraded() || reviews.Degraded() || notifications.Degraded() ||
		courts.Degraded()

	status := "ok"
	code := http.StatusOK
	if degraded {
		status = "degraded"
		code = http.StatusServiceUnavailable
		logger.Warn("health check found persistence degraded")
	}

	c.JSON(code, gin.H{
		"status":               status,
		"uptime":               time.Since(startedAt).Round(time.Second).String(),
		"persistence_degraded": degraded,
		"counts": gin.H{
			"matchings":     matches.Len(),
			"users":         users.Count(),
			"chat_rooms":    chats.RoomCount(),
			"posts":         posts.Count(),
			"reviews":       reviews.Count(),
			"notifications": notifications.Count(),
			"courts":        courts.Count(),
		},
	})
}
