// Package usecase はマイページ（自分の投稿・コメント・プロフィール画像）のビジネスロジックを実装します。
package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	authentity "kanban_backend/internal/feature/auth/domain/entity"
	boardentity "kanban_backend/internal/feature/boards/domain/entity"
	commententity "kanban_backend/internal/feature/comments/domain/entity"
	"kanban_backend/internal/platform/pagination"
	"kanban_backend/internal/platform/storage"
)

// MaxImageSize はプロフィール画像の最大サイズ（5MB）です。
const MaxImageSize = 5 << 20

// sniffLen は内容から形式を判定するために読む先頭のバイト数です。
const sniffLen = 512

// imageExts は受け付ける画像形式と保存時の拡張子です。
// 判定は http.DetectContentType の結果で行い、クライアントが送ったファイル名やContent-Typeは使いません。
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UserStore はユーザーの取得とプロフィール画像URLの更新を行います。
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*authentity.User, error)
	SetProfileImage(ctx context.Context, id uint, url *string) error
}

// BoardLister はユーザーの投稿一覧を返します。
type BoardLister interface {
	ListByAuthor(ctx context.Context, username string, req pagination.Request) (pagination.Page[boardentity.Board], error)
}

// CommentLister はユーザーのコメント一覧を返します。
type CommentLister interface {
	ListByAuthor(ctx context.Context, username string) ([]commententity.Comment, error)
}

// ImageUpload はアップロードされた画像です。
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UserUsecase はマイページの操作を提供します。
type UserUsecase struct {
	users    UserStore
	boards   BoardLister
	comments CommentLister
	images   storage.ImageStore
}

// NewUserUsecase はUserUsecaseを生成します。
func NewUserUsecase(users UserStore, boards BoardLister, comments CommentLister, images storage.ImageStore) *UserUsecase {
	return &UserUsecase{users: users, boards: boards, comments: comments, images: images}
}

// MyBoards は自分の投稿を作成日時の降順で返します。
func (u *UserUsecase) MyBoards(ctx context.Context, username string, req pagination.Request) (pagination.Page[boardentity.Board], error) {
	return u.boards.ListByAuthor(ctx, username, req)
}

// MyComments は自分のコメントを投稿タイトル付きで返します。
func (u *UserUsecase) MyComments(ctx context.Context, username string) ([]commententity.Comment, error) {
	return u.comments.ListByAuthor(ctx, username)
}

// ProfileImage は現在のプロフィール画像URLを返します。未設定の場合はnilです。
func (u *UserUsecase) ProfileImage(ctx context.Context, username string) (*string, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ProfileImageURL == nil || *user.ProfileImageURL == "" {
		return nil, nil
	}
	return user.ProfileImageURL, nil
}

// UploadProfileImage は画像を保存してプロフィール画像を差し替え、新しいURLを返します。
// 以前の画像の削除は失敗しても処理を続けます。
func (u *UserUsecase) UploadProfileImage(ctx context.Context, username string, img ImageUpload) (string, error) {
	if err := validateImage(img); err != nil {
		return "", err
	}
	contentType, body, err := sniffImage(img.Body)
	if err != nil {
		return "", err
	}
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + imageExts[contentType]
	url, err := u.images.Save(ctx, name, contentType, io.LimitReader(body, MaxImageSize))
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	if err := u.users.SetProfileImage(ctx, user.ID, &url); err != nil {
		u.deleteImage(ctx, url)
		return "", err
	}

	if old := user.ProfileImageURL; old != nil && *old != "" {
		u.deleteImage(ctx, *old)
	}
	slog.InfoContext(ctx, "profile image updated", "username", username, "filename", img.Filename, "content_type", contentType)
	return url, nil
}

// DeleteProfileImage はプロフィール画像を削除します。未設定の場合は何もしません。
func (u *UserUsecase) DeleteProfileImage(ctx context.Context, username string) error {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	old := user.ProfileImageURL
	if old == nil || *old == "" {
		return nil
	}
	if err := u.users.SetProfileImage(ctx, user.ID, nil); err != nil {
		return err
	}
	u.deleteImage(ctx, *old)
	return nil
}

func (u *UserUsecase) deleteImage(ctx context.Context, url string) {
	if err := u.images.Delete(ctx, url); err != nil {
		slog.WarnContext(ctx, "failed to delete profile image", "url", url, "error", err)
	}
}

func validateImage(img ImageUpload) error {
	if img.Size <= 0 || img.Body == nil {
		return ErrEmptyFile
	}
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return ErrNotImage
	}
	if img.Size > MaxImageSize {
		return ErrFileTooLarge
	}
	return nil
}

// sniffImage は先頭バイトから画像形式を判定し、読み出した分を戻したReaderとともに返します。
// 許可していない形式（SVGやHTMLを含む）は ErrNotImage です。
func sniffImage(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	if n == 0 {
		return "", nil, ErrEmptyFile
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := imageExts[contentType]; !ok {
		return "", nil, ErrNotImage
	}
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}
