package handlers

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)

	var notifications []models.Notification
	db.DB.Preload("Actor").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications)

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	var notification models.Notification
	if err := db.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&notification).Error; err != nil {
		fail(c, http.StatusNotFound, "notification not found")
		return
	}

	notification.IsRead = true
	db.DB.Save(&notification)

	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := currentUser(c)

	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	var notification models.Notification
	if err := db.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&notification).Error; err != nil {
		fail(c, http.StatusNotFound, "notification not found")
		return
	}

	db.DB.Delete(&notification)

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
