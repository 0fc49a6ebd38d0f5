package services

import (
	"errors"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MagicLinkTTL is how long an emailed login link stays valid.
const MagicLinkTTL = 15 * time.Minute

// IssueMagicLink creates a single-use login token for the user.
func IssueMagicLink(userID uint) (string, error) {
	link := models.MagicLink{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(MagicLinkTTL),
	}
	if err := db.DB.Create(&link).Error; err != nil {
		return "", err
	}
	return link.Token, nil
}

// ConsumeMagicLink validates a token and burns it. Delete-on-use keeps the
// link single-use even when the same URL is opened twice.
func ConsumeMagicLink(token string) (uint, error) {
	var userID uint
	var expired bool
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var link models.MagicLink
		if err := tx.Where("token = ?", token).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkInvalid
			}
			return err
		}

		// The delete must commit even when the link turns out to be expired,
		// so the expired path sets a flag instead of failing the transaction.
		expired = time.Now().After(link.ExpiresAt)
		userID = link.UserID
		return tx.Delete(&link).Error
	})
	if err != nil {
		return 0, err
	}
	if expired {
		return 0, ErrLinkInvalid
	}
	return userID, nil
}
