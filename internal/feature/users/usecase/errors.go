package usecase

import (
	"errors"

	authusecase "kanban_backend/internal/feature/auth/usecase"
)

var (
	// ErrUserNotFound is returned when the authenticated username has no user row.
	ErrUserNotFound = authusecase.ErrUserNotFound
	// ErrEmptyFile is returned for an empty upload.
	ErrEmptyFile = errors.New("file is empty")
	// ErrNotImage is returned when the upload is not a JPEG, PNG, GIF or WebP image.
	ErrNotImage = errors.New("file is not an image")
	// ErrFileTooLarge is returned when the upload exceeds MaxImageSize.
	ErrFileTooLarge = errors.New("file size exceeds 5MB")
)
