// Package entity defines the domain models for the comments feature.
package entity

import "time"

// Comment is a reply attached to a board post.
type Comment struct {
	ID         uint
	Content    string
	BoardID    uint
	BoardTitle string
	AuthorID   uint
	// AuthorUsername is the username of the commenter.
	AuthorUsername string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsAuthoredBy reports whether username wrote the comment.
func (c *Comment) IsAuthoredBy(username string) bool {
	return username != "" && c.AuthorUsername == username
}
