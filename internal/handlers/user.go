package handlers

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile is the public view of a user: the account plus recent posts.
func (h *UserHandler) Profile(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}

	var posts []models.Post
	db.DB.Preload("Tag").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(20).
		Find(&posts)
	fillCommentCounts(posts)

	var commentCount int64
	db.DB.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&commentCount)

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"posts":         posts,
		"comment_count": commentCount,
	})
}

type settingsRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := currentUser(c)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		fail(c, http.StatusBadRequest, "username cannot be empty")
		return
	}

	user.Username = req.Username
	user.Bio = req.Bio
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if err := db.DB.Save(user).Error; err != nil {
		fail(c, http.StatusInternalServerError, "failed to save settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
