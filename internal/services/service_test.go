package services

import (
	"fmt"
	"testing"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB points the global db.DB at a fresh in-memory sqlite database.
// cache=shared keeps every pooled connection on the same memory database.
func newTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.PostClap{},
		&models.Notification{},
		&models.MagicLink{},
	))
	require.NoError(t, gdb.Create(&models.Tag{Name: "general"}).Error)

	db.DB = gdb
	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
}

func createTestUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func createTestPost(t *testing.T, author models.User) models.Post {
	t.Helper()
	post := models.Post{
		Pid:    utils.RandStringBytesMaskImpr(8),
		UserID: author.ID,
		TagID:  1,
		Title:  "Test Post",
	}
	require.NoError(t, db.DB.Create(&post).Error)
	return post
}

// createTestComment inserts a comment with an explicit creation time so
// ordering in tests never depends on clock resolution.
func createTestComment(t *testing.T, post models.Post, author models.User, parentID *uint, content string, createdAt time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{
		Cid:       utils.RandStringBytesMaskImpr(8),
		PostID:    post.ID,
		UserID:    author.ID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.DB.Create(&comment).Error)
	return comment
}
