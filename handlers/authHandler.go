package handlers

import (
	"net/http"

	"playmateserver/middlewares"
	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Nickname  string `json:"nickname"`
	BirthYear int    `json:"birthYear"`
	Gender    string `json:"gender"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account, allocates its 6-digit ID and returns a
// session token alongside the profile.
func Register(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" || req.Nickname == "" || req.BirthYear == 0 || req.Gender == "" {
		fail(c, logger, models.ValidationError("email, password, nickname, birthYear and gender are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("password hashing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal_error", "error": "failed to create account"})
		return
	}

	user, err := users.Register(&models.User{
		Email:     req.Email,
		Password:  string(hash),
		Nickname:  req.Nickname,
		BirthYear: req.BirthYear,
		Gender:    req.Gender,
	})
	if err != nil {
		fail(c, logger, err)
		return
	}

	token, err := middlewares.GenerateToken(user)
	if err != nil {
		logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal_error", "error": "failed to generate token"})
		return
	}

	logger.Info("user registered", zap.Int("userID", user.ID))
	data := userResponse(user)
	data["token"] = token
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Login checks the credentials and issues a fresh session token.
func Login(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}

	user, err := users.GetByEmail(req.Email)
	if err != nil {
		// Same failure as a bad password so probes learn nothing.
		fail(c, logger, models.ErrInvalidCredentials)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		fail(c, logger, models.ErrInvalidCredentials)
		return
	}

	token, err := middlewares.GenerateToken(user)
	if err != nil {
		logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal_error", "error": "failed to generate token"})
		return
	}

	data := userResponse(user)
	data["token"] = token
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Me returns the profile for the token's identity.
func Me(c *gin.Context, users *store.UserStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	user, err := users.GetByID(identity.UserID)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userResponse(user)})
}
