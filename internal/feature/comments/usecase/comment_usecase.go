// Package usecase はコメントのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"

	"kanban_backend/internal/feature/comments/domain/entity"
)

// CommentRepository はコメントの永続化レイヤーを抽象化します。
type CommentRepository interface {
	// ListByBoard は投稿のコメントを作成日時の昇順で返します。
	ListByBoard(ctx context.Context, boardID uint) ([]entity.Comment, error)
	// ListByAuthor はユーザーのコメントを投稿タイトル付きで作成日時の降順に返します。
	ListByAuthor(ctx context.Context, username string) ([]entity.Comment, error)
	FindByID(ctx context.Context, id uint) (*entity.Comment, error)
	// BoardExists は投稿が存在するかを返します。
	BoardExists(ctx context.Context, boardID uint) (bool, error)
	// AuthorIDByUsername はユーザーIDを返します。存在しない場合は ErrAuthorNotFound を返します。
	AuthorIDByUsername(ctx context.Context, username string) (uint, error)
	Create(ctx context.Context, c *entity.Comment) error
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
}

// CommentUsecase はコメントの閲覧・作成・更新・削除を行います。
type CommentUsecase struct {
	comments CommentRepository
}

// NewCommentUsecase はCommentUsecaseを生成します。
func NewCommentUsecase(comments CommentRepository) *CommentUsecase {
	return &CommentUsecase{comments: comments}
}

// ListByBoard は投稿のコメント一覧を返します。
func (u *CommentUsecase) ListByBoard(ctx context.Context, boardID uint) ([]entity.Comment, error) {
	if err := u.requireBoard(ctx, boardID); err != nil {
		return nil, err
	}
	return u.comments.ListByBoard(ctx, boardID)
}

// ListByAuthor はユーザーのコメント一覧を返します。
func (u *CommentUsecase) ListByAuthor(ctx context.Context, username string) ([]entity.Comment, error) {
	return u.comments.ListByAuthor(ctx, username)
}

// Create は投稿にコメントを追加します。
func (u *CommentUsecase) Create(ctx context.Context, boardID uint, username, content string) (*entity.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}
	if err := u.requireBoard(ctx, boardID); err != nil {
		return nil, err
	}
	authorID, err := u.comments.AuthorIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	c := &entity.Comment{
		Content:        content,
		BoardID:        boardID,
		AuthorID:       authorID,
		AuthorUsername: username,
	}
	if err := u.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Update はコメント本文を更新します。投稿者以外は ErrForbidden です。
func (u *CommentUsecase) Update(ctx context.Context, id uint, username, content string) (*entity.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}
	c, err := u.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsAuthoredBy(username) {
		return nil, ErrForbidden
	}
	if err := u.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return u.comments.FindByID(ctx, id)
}

// Delete はコメントを削除します。投稿者以外は ErrForbidden です。
func (u *CommentUsecase) Delete(ctx context.Context, id uint, username string) error {
	c, err := u.comments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsAuthoredBy(username) {
		return ErrForbidden
	}
	if err := u.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (u *CommentUsecase) requireBoard(ctx context.Context, boardID uint) error {
	ok, err := u.comments.BoardExists(ctx, boardID)
	if err != nil {
		return fmt.Errorf("check board: %w", err)
	}
	if !ok {
		return ErrBoardNotFound
	}
	return nil
}
