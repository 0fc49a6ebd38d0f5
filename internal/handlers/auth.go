package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	mailService *services.MailService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		mailService: services.NewMailService(),
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	parts := strings.Split(req.Email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		fail(c, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 6 {
		fail(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if req.Username == "" {
		// Default username from the email local part
		req.Username = parts[0]
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	var existing int64
	db.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing)
	if existing > 0 {
		fail(c, http.StatusConflict, "email already registered")
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		// Two signups can race past the pre-check; the unique index on email
		// catches the loser
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fail(c, http.StatusConflict, "email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	h.mailService.SendWelcomeEmail(user.Email, user.Username)

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		fail(c, http.StatusUnauthorized, "wrong email or password")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		fail(c, http.StatusUnauthorized, "wrong email or password")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete("user_id")
	session.Save()
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

// RequestMagicLink emails a passwordless sign-in link. The response is the
// same whether or not the address has an account, so the endpoint cannot be
// used to probe for registered emails.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		token, err := services.IssueMagicLink(user.ID)
		if err == nil {
			siteURL := os.Getenv("SITE_URL")
			if siteURL == "" {
				siteURL = "http://localhost:8080"
			}
			link := fmt.Sprintf("%s/api/auth/magic/%s", strings.TrimSuffix(siteURL, "/"), token)
			h.mailService.SendMagicLinkEmail(user.Email, user.Username, link)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// MagicLogin consumes a magic link token and starts a session.
func (h *AuthHandler) MagicLogin(c *gin.Context) {
	token := c.Param("token")

	userID, err := services.ConsumeMagicLink(token)
	if err != nil {
		if errors.Is(err, services.ErrLinkInvalid) {
			fail(c, http.StatusUnauthorized, "magic link is invalid or expired")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to verify magic link")
		return
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		fail(c, http.StatusUnauthorized, "account no longer exists")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := currentUser(c)

	unread := 0
	if count, ok := c.Get(middleware.UnreadCountKey); ok {
		unread = int(count.(int64))
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"unread_count": unread,
	})
}
