package services

import (
	"errors"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// MaxClapsPerUser caps how many claps one reader can put on one post.
const MaxClapsPerUser = 50

// ClapUser is one entry of the "who clapped" list.
type ClapUser struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Count    int    `json:"count"`
}

// AddClap records count claps from a user on a post. The increment is clamped
// so the per-user total never exceeds MaxClapsPerUser; the post aggregate
// grows by exactly the accepted amount. Claps past the cap are not an error,
// they just stop counting. Post authors cannot clap for themselves.
//
// Column updates go through SQL expressions inside one transaction, so
// concurrent claps from different users never lose aggregate increments.
func AddClap(postID, userID uint, count int) (total int, userCount int, err error) {
	if count < 1 {
		return 0, 0, ErrBadIncrement
	}

	changed := false
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if post.UserID == userID {
			return ErrSelfClap
		}

		var entry models.PostClap
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&entry).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		accepted := count
		if entry.Count+accepted > MaxClapsPerUser {
			accepted = MaxClapsPerUser - entry.Count
		}
		if accepted <= 0 {
			// Already at the cap, nothing left to add
			total = post.ClapCount
			userCount = entry.Count
			return nil
		}

		if entry.ID == 0 {
			entry = models.PostClap{PostID: postID, UserID: userID, Count: accepted}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.PostClap{}).Where("id = ?", entry.ID).
				UpdateColumn("count", gorm.Expr("count + ?", accepted)).Error; err != nil {
				return err
			}
			entry.Count += accepted
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("clap_count", gorm.Expr("clap_count + ?", accepted)).Error; err != nil {
			return err
		}

		total = post.ClapCount + accepted
		userCount = entry.Count
		changed = true
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if changed {
		GetClapFeed().Broadcast(postID, total)
	}
	return total, userCount, nil
}

// UndoClaps removes all of a user's claps from a post: the aggregate drops by
// the user's full contribution (floored at zero as a defensive clamp against
// drift) and the per-user row is deleted, not zeroed.
func UndoClaps(postID, userID uint) (total int, users []ClapUser, err error) {
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		var entry models.PostClap
		if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNothingToUndo
			}
			return err
		}

		newTotal := post.ClapCount - entry.Count
		if newTotal < 0 {
			newTotal = 0
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("clap_count", newTotal).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}

		total = newTotal
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	users, err = ClapUsers(postID)
	if err != nil {
		return 0, nil, err
	}

	GetClapFeed().Broadcast(postID, total)
	return total, users, nil
}

// ClapUsers lists everyone with a nonzero clap count on the post. If the
// aggregate is zero but stale per-user rows remain (drift from an earlier
// failure), the rows are cleared before answering.
func ClapUsers(postID uint) ([]ClapUser, error) {
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.ClapCount == 0 {
		if err := db.DB.Where("post_id = ?", postID).Delete(&models.PostClap{}).Error; err != nil {
			return nil, err
		}
		return []ClapUser{}, nil
	}

	users := make([]ClapUser, 0)
	err := db.DB.Model(&models.PostClap{}).
		Select("post_claps.user_id, users.username, users.avatar, post_claps.count").
		Joins("JOIN users ON users.id = post_claps.user_id").
		Where("post_claps.post_id = ? AND post_claps.count > 0", postID).
		Order("post_claps.count DESC, post_claps.user_id ASC").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
