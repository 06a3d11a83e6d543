// Package dto はcommentsフィーチャーのリクエスト・レスポンスを定義します。
package dto

import (
	"time"

	"kanban_backend/internal/feature/comments/domain/entity"
)

// CommentReq はコメントの作成・更新リクエストです。
type CommentReq struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// CommentResponse はコメントのレスポンスです。BoardTitle はマイページの一覧でのみ設定されます。
type CommentResponse struct {
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	BoardID        uint      `json:"boardId"`
	BoardTitle     string    `json:"boardTitle,omitempty"`
	AuthorUsername string    `json:"authorUsername"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewCommentResponse はエンティティからレスポンスを組み立てます。
func NewCommentResponse(c entity.Comment) CommentResponse {
	return CommentResponse{
		ID:             c.ID,
		Content:        c.Content,
		BoardID:        c.BoardID,
		BoardTitle:     c.BoardTitle,
		AuthorUsername: c.AuthorUsername,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// NewCommentResponses はスライスを変換します。空の場合も [] を返します。
func NewCommentResponses(cs []entity.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCommentResponse(c))
	}
	return out
}
