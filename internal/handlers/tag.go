package handlers

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
)

type TagHandler struct{}

func NewTagHandler() *TagHandler {
	return &TagHandler{}
}

func (h *TagHandler) List(c *gin.Context) {
	var tags []models.Tag
	db.DB.Order("id ASC").Find(&tags)

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
