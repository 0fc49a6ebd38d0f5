package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	mailService *services.MailService
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{
		mailService: services.NewMailService(),
	}
}

// List returns the full reply forest of a post, roots in creation order.
func (h *CommentHandler) List(c *gin.Context) {
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		fail(c, http.StatusNotFound, "post not found")
		return
	}

	tree, err := services.FetchCommentTree(post.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": tree})
}

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	user := currentUser(c)
	pid := c.Param("pid")

	var post models.Post
	if err := db.DB.Preload("User").Where("pid = ?", pid).First(&post).Error; err != nil {
		fail(c, http.StatusNotFound, "post not found")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, "comment content cannot be empty")
		return
	}

	// A reply must point at a comment on the same post
	var parent *models.Comment
	if req.ParentID != nil {
		var p models.Comment
		if err := db.DB.Preload("User").First(&p, *req.ParentID).Error; err != nil {
			fail(c, http.StatusNotFound, "parent comment not found")
			return
		}
		if p.PostID != post.ID {
			fail(c, http.StatusBadRequest, "parent comment belongs to another post")
			return
		}
		parent = &p
	}

	comment := models.Comment{
		Cid:      utils.RandStringBytesMaskImpr(8),
		PostID:   post.ID,
		UserID:   user.ID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		fail(c, http.StatusInternalServerError, "failed to create comment")
		return
	}
	comment.User = *user

	utils.GetCache().Delete(detailCacheKey(pid))

	go h.notify(post, parent, comment, user)

	c.JSON(http.StatusCreated, gin.H{
		"comment": services.CommentNode{
			Comment:     comment,
			ContentHTML: utils.RenderMarkdown(comment.Content),
			Replies:     []*services.CommentNode{},
		},
	})
}

// notify tells the parent comment's author (for replies) or the post author
// (for root comments) about the new comment. Best effort, never to oneself.
func (h *CommentHandler) notify(post models.Post, parent *models.Comment, comment models.Comment, actor *models.User) {
	siteURL := strings.TrimSuffix(os.Getenv("SITE_URL"), "/")
	link := fmt.Sprintf("%s/p/%s#comment-%d", siteURL, post.Pid, comment.ID)

	if parent != nil {
		if parent.UserID == actor.ID {
			return
		}
		notification := models.Notification{
			UserID:  parent.UserID,
			ActorID: &actor.ID,
			Type:    models.NotificationTypeReplyComment,
			Message: fmt.Sprintf("%s replied to your comment on %q", actor.Username, post.Title),
			PostPid: post.Pid,
		}
		db.DB.Create(&notification)

		h.mailService.SendCommentNotification(
			parent.User.Email,
			parent.User.Username,
			actor.Username,
			"replied to your comment",
			post.Title,
			comment.Content,
			link,
		)
		return
	}

	if post.UserID == actor.ID {
		return
	}
	notification := models.Notification{
		UserID:  post.UserID,
		ActorID: &actor.ID,
		Type:    models.NotificationTypeCommentPost,
		Message: fmt.Sprintf("%s commented on your post %q", actor.Username, post.Title),
		PostPid: post.Pid,
	}
	db.DB.Create(&notification)

	h.mailService.SendCommentNotification(
		post.User.Email,
		post.User.Username,
		actor.Username,
		"commented",
		post.Title,
		comment.Content,
		link,
	)
}

// Delete removes a comment and its whole reply subtree.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	cid := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Where("cid = ?", cid).First(&comment).Error; err != nil {
		fail(c, http.StatusNotFound, "comment not found")
		return
	}
	if comment.UserID != user.ID {
		fail(c, http.StatusForbidden, "only the author can delete this comment")
		return
	}

	deleted, err := services.DeleteCommentTree(comment.ID)
	if err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			fail(c, http.StatusNotFound, "comment not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to delete comment")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, comment.PostID).Error; err == nil {
		utils.GetCache().Delete(detailCacheKey(post.Pid))
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
