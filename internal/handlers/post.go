package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

const postsPerPage = 20

// fillCommentCounts batch-fills the comment count of each post in one query
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

func detailCacheKey(pid string) string {
	return fmt.Sprintf("post:detail:%s", pid)
}

func (h *PostHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * postsPerPage

	query := db.DB.Model(&models.Post{})
	if tagName := c.Query("tag"); tagName != "" {
		var tag models.Tag
		if err := db.DB.Where("name = ?", tagName).First(&tag).Error; err != nil {
			fail(c, http.StatusNotFound, "tag not found")
			return
		}
		query = query.Where("tag_id = ?", tag.ID)
	}

	var total int64
	query.Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(postsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	query.Preload("User").Preload("Tag").
		Order("created_at DESC").
		Limit(postsPerPage).
		Offset(offset).
		Find(&posts)

	fillCommentCounts(posts)

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"page":        page,
		"total_pages": totalPages,
		"total":       total,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	cacheKey := detailCacheKey(pid)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if data, ok := cached.(gin.H); ok {
			// Still count the view on a cache hit, and serve the live counter
			// rather than the value frozen at cache-fill time
			if post, ok := data["post"].(models.Post); ok {
				db.DB.Model(&models.Post{}).Where("id = ?", post.ID).
					UpdateColumn("views", gorm.Expr("views + 1"))

				var views int
				db.DB.Model(&models.Post{}).Where("id = ?", post.ID).
					Pluck("views", &views)
				post.Views = views

				c.JSON(http.StatusOK, gin.H{
					"post":         post,
					"content_html": data["content_html"],
				})
				return
			}
			c.JSON(http.StatusOK, data)
			return
		}
	}

	var post models.Post
	if err := db.DB.Preload("User").Preload("Tag").Where("pid = ?", pid).First(&post).Error; err != nil {
		fail(c, http.StatusNotFound, "post not found")
		return
	}

	db.DB.Model(&post).UpdateColumn("views", gorm.Expr("views + 1"))
	post.Views++

	var commentCount int64
	db.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)
	post.CommentCount = int(commentCount)

	data := gin.H{
		"post":         post,
		"content_html": utils.RenderMarkdown(post.Content),
	}
	utils.GetCache().Set(cacheKey, data, 1*time.Minute)

	c.JSON(http.StatusOK, data)
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	TagID   uint   `json:"tag_id"`
}

func (h *PostHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}
	if req.TagID == 0 {
		req.TagID = 1
	}

	post := models.Post{
		Pid:     utils.RandStringBytesMaskImpr(8),
		UserID:  user.ID,
		TagID:   req.TagID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		fail(c, http.StatusInternalServerError, "failed to create post")
		return
	}
	post.User = *user

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := currentUser(c)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		fail(c, http.StatusNotFound, "post not found")
		return
	}
	if post.UserID != user.ID {
		fail(c, http.StatusForbidden, "only the author can edit this post")
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}

	post.Title = req.Title
	post.Content = req.Content
	if req.TagID != 0 {
		post.TagID = req.TagID
	}
	if err := db.DB.Save(&post).Error; err != nil {
		fail(c, http.StatusInternalServerError, "failed to save post")
		return
	}

	utils.GetCache().Delete(detailCacheKey(pid))

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		fail(c, http.StatusNotFound, "post not found")
		return
	}
	if post.UserID != user.ID {
		fail(c, http.StatusForbidden, "only the author can delete this post")
		return
	}

	// Hard delete. Comments and claps of the post are left behind; see the
	// clap-users self-healing read for how stale clap rows get cleaned up.
	db.DB.Unscoped().Delete(&post)

	utils.GetCache().Delete(detailCacheKey(pid))

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
