package handlers

import (
	"net/http"
	"strconv"

	"playmateserver/models"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func postIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, models.ValidationError("invalid post id")
	}
	return id, nil
}

type postRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// ListPosts pages through the board, newest first.
func ListPosts(c *gin.Context, posts *store.CommunityStore, logger *zap.Logger) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	category := c.Query("category")

	items, total := posts.List(category, page, limit)
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"pagination": gin.H{
			"current": page,
			"pages":   pages,
			"total":   total,
		},
	})
}

// CreatePost adds a board posting authored by the caller.
func CreatePost(c *gin.Context, posts *store.CommunityStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}
	if req.Title == "" || req.Content == "" {
		fail(c, logger, models.ValidationError("title and content are required"))
		return
	}

	post := posts.Create(&models.Post{
		AuthorID:       identity.UserID,
		AuthorNickname: identity.Nickname,
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
	})
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post})
}

// GetPost returns one post and bumps its view count.
func GetPost(c *gin.Context, posts *store.CommunityStore, logger *zap.Logger) {
	id, err := postIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	post, err := posts.Get(id)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// UpdatePost lets the author edit title, content or category.
func UpdatePost(c *gin.Context, posts *store.CommunityStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := postIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, logger, models.ValidationError("invalid request body"))
		return
	}

	post, err := posts.Update(id, identity.UserID, func(p *models.Post) {
		if req.Title != "" {
			p.Title = req.Title
		}
		if req.Content != "" {
			p.Content = req.Content
		}
		if req.Category != "" {
			p.Category = req.Category
		}
	})
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// DeletePost removes the author's own post.
func DeletePost(c *gin.Context, posts *store.CommunityStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := postIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	if err := posts.Delete(id, identity.UserID); err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted successfully"})
}

// ToggleLikePost flips the caller's like on the post.
func ToggleLikePost(c *gin.Context, posts *store.CommunityStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := postIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	liked, count, err := posts.ToggleLike(id, identity.UserID)
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"liked": liked, "likeCount": count}})
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment appends a comment to the post.
func AddComment(c *gin.Context, posts *store.CommunityStore, logger *zap.Logger) {
	identity, ok := callerIdentity(c, logger)
	if !ok {
		return
	}
	id, err := postIDParam(c)
	if err != nil {
		fail(c, logger, err)
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		fail(c, logger, models.ValidationError("content is required"))
		return
	}

	post, err := posts.AddComment(id, models.PostComment{
		AuthorID:       identity.UserID,
		AuthorNickname: identity.Nickname,
		Content:        req.Content,
	})
	if err != nil {
		fail(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post})
}
