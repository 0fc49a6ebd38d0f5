package services

import (
	"errors"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrSelfClap        = errors.New("authors cannot clap for their own post")
	ErrBadIncrement    = errors.New("clap increment must be at least 1")
	ErrNothingToUndo   = errors.New("no claps to undo")
	ErrLinkInvalid     = errors.New("magic link is invalid or expired")
)
