package handlers

import (
	"net/http"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupDuplicateEmailIsConflict(t *testing.T) {
	newTestDB(t)

	r := newTestRouter()
	r.POST("/api/auth/signup", NewAuthHandler().Signup)

	body := `{"email":"dup@example.com","password":"hunter22"}`

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", body)
	require.Equal(t, http.StatusCreated, w.Code)

	// Same address again: a conflict, not a server error
	w = doJSON(t, r, http.MethodPost, "/api/auth/signup", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.DB.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}
