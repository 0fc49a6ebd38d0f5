package services

import (
	"testing"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagicLinkRoundTrip(t *testing.T) {
	newTestDB(t)
	user := createTestUser(t, "walker")

	token, err := IssueMagicLink(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ConsumeMagicLink(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// Single use: the same link must not work twice
	_, err = ConsumeMagicLink(token)
	assert.ErrorIs(t, err, ErrLinkInvalid)
}

func TestMagicLinkUnknownToken(t *testing.T) {
	newTestDB(t)

	_, err := ConsumeMagicLink(uuid.NewString())
	assert.ErrorIs(t, err, ErrLinkInvalid)
}

func TestMagicLinkExpired(t *testing.T) {
	newTestDB(t)
	user := createTestUser(t, "walker")

	link := models.MagicLink{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.DB.Create(&link).Error)

	_, err := ConsumeMagicLink(link.Token)
	assert.ErrorIs(t, err, ErrLinkInvalid)

	// An expired token is burned on the failed attempt
	var count int64
	db.DB.Model(&models.MagicLink{}).Where("token = ?", link.Token).Count(&count)
	assert.Equal(t, int64(0), count)
}
