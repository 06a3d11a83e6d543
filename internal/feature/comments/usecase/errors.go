package usecase

import "errors"

var (
	// ErrCommentNotFound is returned when the comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrBoardNotFound is returned when commenting on a missing post.
	ErrBoardNotFound = errors.New("board not found")
	// ErrAuthorNotFound is returned when the authenticated username has no user row.
	ErrAuthorNotFound = errors.New("user not found")
	// ErrForbidden is returned when someone other than the author edits or deletes a comment.
	ErrForbidden = errors.New("access denied")
	// ErrEmptyComment is returned for blank content.
	ErrEmptyComment = errors.New("content is required")
)
