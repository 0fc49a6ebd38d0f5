package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type ClapHandler struct{}

func NewClapHandler() *ClapHandler {
	return &ClapHandler{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The SPA is served from another origin in dev
	CheckOrigin: func(r *http.Request) bool { return true },
}

func findPostByPid(c *gin.Context) (models.Post, bool) {
	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		fail(c, http.StatusNotFound, "post not found")
		return post, false
	}
	return post, true
}

type clapRequest struct {
	Count int `json:"count"`
}

// Add records claps from the current user. The SPA sends one clap per tap;
// count defaults to 1 when the body is empty.
func (h *ClapHandler) Add(c *gin.Context) {
	user := currentUser(c)
	post, ok := findPostByPid(c)
	if !ok {
		return
	}

	req := clapRequest{Count: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	total, userCount, err := services.AddClap(post.ID, user.ID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfClap):
			fail(c, http.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrBadIncrement):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrPostNotFound):
			fail(c, http.StatusNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, "failed to record claps")
		}
		return
	}

	utils.GetCache().Delete(detailCacheKey(post.Pid))

	c.JSON(http.StatusOK, gin.H{
		"claps":      total,
		"user_claps": userCount,
	})
}

// Undo removes all of the current user's claps from the post.
func (h *ClapHandler) Undo(c *gin.Context) {
	user := currentUser(c)
	post, ok := findPostByPid(c)
	if !ok {
		return
	}

	total, users, err := services.UndoClaps(post.ID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNothingToUndo):
			fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrPostNotFound):
			fail(c, http.StatusNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, "failed to undo claps")
		}
		return
	}

	utils.GetCache().Delete(detailCacheKey(post.Pid))

	c.JSON(http.StatusOK, gin.H{
		"claps":      total,
		"user_claps": 0,
		"users":      users,
	})
}

// Users lists everyone who clapped for the post.
func (h *ClapHandler) Users(c *gin.Context) {
	post, ok := findPostByPid(c)
	if !ok {
		return
	}

	users, err := services.ClapUsers(post.ID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			fail(c, http.StatusNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "failed to load clap users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Live streams clap-count updates for one post over a websocket. Best
// effort: a failed write closes the connection, nothing is retried.
func (h *ClapHandler) Live(c *gin.Context) {
	post, ok := findPostByPid(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, cancel := services.GetClapFeed().Subscribe(post.ID)
	defer cancel()

	// Drain client frames so we notice when the peer goes away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-ch:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
