// Package dto はboardsフィーチャーのリクエスト・レスポンスを定義します。
package dto

import (
	"time"

	"kanban_backend/internal/feature/boards/domain/entity"
)

// BoardReq は投稿の作成・更新リクエストです。
type BoardReq struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

// BoardResponse は投稿のレスポンスです。
type BoardResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"authorUsername"`
	AuthorFullName string    `json:"authorFullName"`
	ViewCount      int64     `json:"viewCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewBoardResponse はエンティティからレスポンスを組み立てます。
func NewBoardResponse(b entity.Board) BoardResponse {
	return BoardResponse{
		ID:             b.ID,
		Title:          b.Title,
		Content:        b.Content,
		AuthorUsername: b.Author.Username,
		AuthorFullName: b.Author.FullName,
		ViewCount:      b.ViewCount,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
