package usecase

import "errors"

var (
	// ErrBoardNotFound is returned when the post does not exist.
	ErrBoardNotFound = errors.New("board not found")
	// ErrAuthorNotFound is returned when the authenticated username has no user row.
	ErrAuthorNotFound = errors.New("user not found")
	// ErrForbidden is returned when someone other than the author edits or deletes a post.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidBoard is returned for an empty title or content.
	ErrInvalidBoard = errors.New("title and content are required")
)
