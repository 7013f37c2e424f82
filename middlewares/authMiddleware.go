package middlewares

import (
	"net/http"
	"strings"
	"time"

	"playmateserver/auth"
	"playmateserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

// tokenTTL is how long an issued session token stays valid.
const tokenTTL = 72 * time.Hour

// GenerateToken issues a signed session token carrying the caller
// identity the rest of the API trusts verbatim.
func GenerateToken(user *models.User) (string, error) {
	claims := &models.MyClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(auth.JwtKey)
}

// AuthMiddleware validates the Bearer token and places the caller
// identity into the gin context. No store lookup happens here; the token
// is the identity.
func AuthMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if strings.HasPrefix(tokenString, "Bearer ") {
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "no_token", "error": "authorization token required"})
			return
		}

		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			logger.Warn("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "token_validation_error", "error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, models.Identity{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Nickname: claims.Nickname,
		})
		c.Next()
	}
}

// Identity returns the caller identity the middleware stored.
func Identity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
