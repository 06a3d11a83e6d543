// Package usecase は掲示板投稿のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"kanban_backend/internal/feature/boards/domain/entity"
	"kanban_backend/internal/platform/pagination"
)

// BoardRepository は投稿の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type BoardRepository interface {
	// List は作成日時の降順で投稿を返します。
	List(ctx context.Context, req pagination.Request) ([]entity.Board, int64, error)
	// Search はタイトルまたは本文にkeywordを含む投稿を返します。
	Search(ctx context.Context, keyword string, req pagination.Request) ([]entity.Board, int64, error)
	// ListByAuthor は指定ユーザーの投稿を返します。
	ListByAuthor(ctx context.Context, username string, req pagination.Request) ([]entity.Board, int64, error)
	// FindByID は投稿を返します。存在しない場合は ErrBoardNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.Board, error)
	// IncrementViewCount は閲覧数を1増やします。
	IncrementViewCount(ctx context.Context, id uint) error
	// AuthorByUsername は投稿者情報を返します。存在しない場合は ErrAuthorNotFound を返します。
	AuthorByUsername(ctx context.Context, username string) (*entity.Author, error)
	Create(ctx context.Context, b *entity.Board) error
	Update(ctx context.Context, b *entity.Board) error
	Delete(ctx context.Context, id uint) error
}

// BoardInput は投稿の作成・更新内容です。
type BoardInput struct {
	Title   string
	Content string
}

func (in BoardInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return ErrInvalidBoard
	}
	return nil
}

// BoardUsecase は投稿の閲覧・作成・更新・削除を行います。
type BoardUsecase struct {
	boards BoardRepository
}

// NewBoardUsecase はBoardUsecaseを生成します。
func NewBoardUsecase(boards BoardRepository) *BoardUsecase {
	return &BoardUsecase{boards: boards}
}

// List は投稿一覧を返します。
func (u *BoardUsecase) List(ctx context.Context, req pagination.Request) (pagination.Page[entity.Board], error) {
	req = req.Normalize()
	items, total, err := u.boards.List(ctx, req)
	if err != nil {
		return pagination.Page[entity.Board]{}, fmt.Errorf("list boards: %w", err)
	}
	return pagination.New(items, req, total), nil
}

// Search はキーワード検索を行います。空のキーワードは一覧と同じです。
func (u *BoardUsecase) Search(ctx context.Context, keyword string, req pagination.Request) (pagination.Page[entity.Board], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return u.List(ctx, req)
	}
	req = req.Normalize()
	items, total, err := u.boards.Search(ctx, keyword, req)
	if err != nil {
		return pagination.Page[entity.Board]{}, fmt.Errorf("search boards: %w", err)
	}
	return pagination.New(items, req, total), nil
}

// ListByAuthor は指定ユーザーの投稿一覧を返します。
func (u *BoardUsecase) ListByAuthor(ctx context.Context, username string, req pagination.Request) (pagination.Page[entity.Board], error) {
	req = req.Normalize()
	items, total, err := u.boards.ListByAuthor(ctx, username, req)
	if err != nil {
		return pagination.Page[entity.Board]{}, fmt.Errorf("list boards by author: %w", err)
	}
	return pagination.New(items, req, total), nil
}

// Get は投稿を返し、閲覧数を1増やします。
func (u *BoardUsecase) Get(ctx context.Context, id uint) (*entity.Board, error) {
	if err := u.boards.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	return u.boards.FindByID(ctx, id)
}

// Create はusernameを投稿者として投稿を作成します。
func (u *BoardUsecase) Create(ctx context.Context, username string, in BoardInput) (*entity.Board, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	author, err := u.boards.AuthorByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	b := &entity.Board{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: author.ID,
		Author:   *author,
	}
	if err := u.boards.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	slog.InfoContext(ctx, "board created", "board_id", b.ID, "username", username)
	return b, nil
}

// Update は投稿を更新します。投稿者以外は ErrForbidden です。
func (u *BoardUsecase) Update(ctx context.Context, id uint, username string, in BoardInput) (*entity.Board, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := u.boards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsAuthoredBy(username) {
		return nil, ErrForbidden
	}

	b.Title = in.Title
	b.Content = in.Content
	if err := u.boards.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}
	return b, nil
}

// Delete は投稿を削除します。投稿者以外は ErrForbidden です。
func (u *BoardUsecase) Delete(ctx context.Context, id uint, username string) error {
	b, err := u.boards.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsAuthoredBy(username) {
		return ErrForbidden
	}
	if err := u.boards.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	slog.InfoContext(ctx, "board deleted", "board_id", id, "username", username)
	return nil
}
