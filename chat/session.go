package chat

import (
	"context"
	"encoding/json"
	"time"

	"playmateserver/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionTTL is how long a minted websocket session stays redeemable.
const sessionTTL = 24 * time.Hour

// CreateSession mints a websocket session ID for the caller and stores
// the identity in Redis under it. The client presents the ID when
// opening the websocket.
func CreateSession(ctx context.Context, rdb *redis.Client, identity models.Identity, logger *zap.Logger) (string, error) {
	sessionID := uuid.New().String()

	sessionInfo := map[string]interface{}{
		"userID":   identity.UserID,
		"email":    identity.Email,
		"nickname": identity.Nickname,
	}
	sessionInfoJSON, err := json.Marshal(sessionInfo)
	if err != nil {
		logger.Error("Error encoding session info", zap.Error(err))
		return "", err
	}

	if err := rdb.Set(ctx, "session:"+sessionID, sessionInfoJSON, sessionTTL).Err(); err != nil {
		logger.Error("Error storing session info in Redis", zap.Error(err))
		return "", err
	}
	return sessionID, nil
}

// ValidateSession resolves a session ID back to the identity that minted
// it. Returns nil when the session is missing or malformed.
func ValidateSession(ctx context.Context, rdb *redis.Client, sessionID string, logger *zap.Logger) *models.Identity {
	if sessionID == "" {
		logger.Error("Session ID is empty")
		return nil
	}

	sessionInfoJSON, err := rdb.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		logger.Error("Failed to retrieve session info", zap.Error(err))
		return nil
	}

	var sessionInfo map[string]interface{}
	if err := json.Unmarshal([]byte(sessionInfoJSON), &sessionInfo); err != nil {
		logger.Error("Failed to decode session info", zap.Error(err))
		return nil
	}

	userID, ok := sessionInfo["userID"].(float64) // JSON numbers decode as float64
	if !ok {
		logger.Error("Invalid session info: missing userID")
		return nil
	}
	nickname, _ := sessionInfo["nickname"].(string)
	email, _ := sessionInfo["email"].(string)

	return &models.Identity{
		UserID:   int(userID),
		Email:    email,
		Nickname: nickname,
	}
}
