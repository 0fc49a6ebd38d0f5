package services

import (
	"errors"
	"html/template"
	"sort"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

// CommentNode is a comment plus its nested replies, ready for the client.
type CommentNode struct {
	models.Comment
	ContentHTML template.HTML  `json:"content_html"`
	Replies     []*CommentNode `json:"replies"`
}

// BuildCommentTree links a flat set of comments for one post into a forest of
// root nodes. Records are processed in creation order, so a parent is always
// registered in the lookup before any of its children (a reply can only be
// written after its parent exists). A comment whose parent is not in the set
// (the parent was deleted, or the data is malformed) is dropped: it shows up
// neither as a root nor as a reply.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	sorted := make([]models.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	index := make(map[uint]*CommentNode, len(sorted))
	roots := make([]*CommentNode, 0)

	for i := range sorted {
		node := &CommentNode{
			Comment:     sorted[i],
			ContentHTML: utils.RenderMarkdown(sorted[i].Content),
			Replies:     make([]*CommentNode, 0),
		}
		index[node.ID] = node

		if node.ParentID == nil {
			roots = append(roots, node)
		} else if parent, ok := index[*node.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}

	return roots
}

// FetchCommentTree loads every comment of a post with its author projection
// and assembles the reply forest. Read-only, no side effects.
func FetchCommentTree(postID uint) ([]*CommentNode, error) {
	var comments []models.Comment
	err := db.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

// DeleteCommentTree removes a comment together with its entire reply subtree
// and returns how many comments were deleted. Parent linkage is a single-hop
// reference, so descendants are collected one query per tree level. The whole
// cascade runs in one transaction: either the full subtree goes away or
// nothing does.
func DeleteCommentTree(commentID uint) (int64, error) {
	var deleted int64

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var root models.Comment
		if err := tx.First(&root, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}

		levels := [][]uint{{root.ID}}
		frontier := []uint{root.ID}
		seen := map[uint]struct{}{root.ID: {}}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Comment{}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}

			// Skip ids already collected so a parent-reference cycle in
			// malformed data cannot keep the walk alive forever.
			next := children[:0]
			for _, id := range children {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				next = append(next, id)
			}
			if len(next) == 0 {
				break
			}
			levels = append(levels, next)
			frontier = next
		}

		// Deepest level first, so no surviving row ever points at a deleted parent
		for i := len(levels) - 1; i >= 0; i-- {
			res := tx.Where("id IN ?", levels[i]).Delete(&models.Comment{})
			if res.Error != nil {
				return res.Error
			}
			deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
