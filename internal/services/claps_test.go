package services

import (
	"errors"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func postClapCount(t *testing.T, postID uint) int {
	t.Helper()
	var post models.Post
	require.NoError(t, db.DB.First(&post, postID).Error)
	return post.ClapCount
}

func TestAddClapFirstAndRepeat(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author)

	total, userCount, err := AddClap(post.ID, reader.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, userCount)

	total, userCount, err = AddClap(post.ID, reader.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, userCount)

	assert.Equal(t, 2, postClapCount(t, post.ID))
}

func TestAddClapSelfClapRejected(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	post := createTestPost(t, author)

	_, _, err := AddClap(post.ID, author.ID, 1)
	assert.ErrorIs(t, err, ErrSelfClap)
	assert.Equal(t, 0, postClapCount(t, post.ID))
}

func TestAddClapBadIncrement(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author)

	_, _, err := AddClap(post.ID, reader.ID, 0)
	assert.ErrorIs(t, err, ErrBadIncrement)
	_, _, err = AddClap(post.ID, reader.ID, -3)
	assert.ErrorIs(t, err, ErrBadIncrement)
}

func TestAddClapPostNotFound(t *testing.T) {
	newTestDB(t)
	reader := createTestUser(t, "reader")

	_, _, err := AddClap(12345, reader.ID, 1)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddClapLargeIncrementClamped(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author)

	total, userCount, err := AddClap(post.ID, reader.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, MaxClapsPerUser, total)
	assert.Equal(t, MaxClapsPerUser, userCount)
}

// The full lifecycle: one clap, sixty more (clamped at the cap), then undo.
func TestClapCapAndUndoScenario(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author)

	total, userCount, err := AddClap(post.ID, reader.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, userCount)

	for i := 0; i < 60; i++ {
		total, userCount, err = AddClap(post.ID, reader.ID, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, MaxClapsPerUser, total, "aggregate clamps at the cap")
	assert.Equal(t, MaxClapsPerUser, userCount)
	assert.Equal(t, MaxClapsPerUser, postClapCount(t, post.ID))

	total, users, err := UndoClaps(post.ID, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, users, "user must be removed from the clap-users list")

	var entry models.PostClap
	err = db.DB.Where("post_id = ? AND user_id = ?", post.ID, reader.ID).First(&entry).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "per-user row must be deleted, not zeroed")
}

func TestUndoClapsNothingToUndo(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author)

	_, _, err := UndoClaps(post.ID, reader.ID)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoClapsLeavesOtherUsers(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	post := createTestPost(t, author)

	for i := 0; i < 3; i++ {
		_, _, err := AddClap(post.ID, alice.ID, 1)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, _, err := AddClap(post.ID, bob.ID, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, postClapCount(t, post.ID))

	total, users, err := UndoClaps(post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].UserID)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, 2, users[0].Count)
}

func TestClapUsersOrderedByCount(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	post := createTestPost(t, author)

	_, _, err := AddClap(post.ID, alice.ID, 2)
	require.NoError(t, err)
	_, _, err = AddClap(post.ID, bob.ID, 5)
	require.NoError(t, err)

	users, err := ClapUsers(post.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, 5, users[0].Count)
	assert.Equal(t, "alice", users[1].Username)
	assert.Equal(t, 2, users[1].Count)
}

func TestClapUsersSelfHealsStaleEntries(t *testing.T) {
	newTestDB(t)
	author := createTestUser(t, "author")
	reader := createTestUser(t, "reader")
	post := createTestPost(t, author)

	// Drift: a per-user row exists while the aggregate reads zero
	require.NoError(t, db.DB.Create(&models.PostClap{
		PostID: post.ID,
		UserID: reader.ID,
		Count:  4,
	}).Error)

	users, err := ClapUsers(post.ID)
	require.NoError(t, err)
	assert.Empty(t, users)

	var stale int64
	db.DB.Model(&models.PostClap{}).Where("post_id = ?", post.ID).Count(&stale)
	assert.Equal(t, int64(0), stale, "stale rows must be cleared on read")
}

func TestClapUsersPostNotFound(t *testing.T) {
	newTestDB(t)

	_, err := ClapUsers(777)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
