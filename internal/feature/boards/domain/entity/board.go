// Package entity defines the domain models for the boards feature.
package entity

import "time"

// Author is the subset of a user shown next to a post.
type Author struct {
	ID       uint
	Username string
	FullName string
}

// Board is a single post on the board.
type Board struct {
	ID        uint
	Title     string
	Content   string
	AuthorID  uint
	Author    Author
	ViewCount int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAuthoredBy reports whether username wrote the post.
func (b *Board) IsAuthoredBy(username string) bool {
	return username != "" && b.Author.Username == username
}
