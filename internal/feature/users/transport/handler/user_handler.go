// Package handler はマイページAPIのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	boardentity "kanban_backend/internal/feature/boards/domain/entity"
	boarddto "kanban_backend/internal/feature/boards/transport/http/dto"
	commententity "kanban_backend/internal/feature/comments/domain/entity"
	commentdto "kanban_backend/internal/feature/comments/transport/http/dto"
	"kanban_backend/internal/feature/users/usecase"
	"kanban_backend/internal/platform/authctx"
	"kanban_backend/internal/platform/http/response"
	"kanban_backend/internal/platform/pagination"
)

// UserUsecase はマイページのユースケースです。
type UserUsecase interface {
	MyBoards(ctx context.Context, username string, req pagination.Request) (pagination.Page[boardentity.Board], error)
	MyComments(ctx context.Context, username string) ([]commententity.Comment, error)
	ProfileImage(ctx context.Context, username string) (*string, error)
	UploadProfileImage(ctx context.Context, username string, img usecase.ImageUpload) (string, error)
	DeleteProfileImage(ctx context.Context, username string) error
}

// ProfileImageResponse はプロフィール画像URLのレスポンスです。未設定の場合はnullです。
type ProfileImageResponse struct {
	ProfileImageURL *string `json:"profileImageUrl"`
}

// UserHandler は /api/users/me 配下のリクエストを処理します。
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler はUserHandlerを生成します。
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func principal(c *gin.Context) (string, bool) {
	p, ok := authctx.FromGin(c)
	if !ok {
		response.Unauthorized(c)
		return "", false
	}
	return p.Username, true
}

// MyBoards は GET /api/users/me/boards を処理します。
func (h *UserHandler) MyBoards(c *gin.Context) {
	username, ok := principal(c)
	if !ok {
		return
	}
	req, ok := response.PageQuery(c)
	if !ok {
		return
	}
	page, err := h.uc.MyBoards(c.Request.Context(), username, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, boarddto.NewBoardResponse))
}

// MyComments は GET /api/users/me/comments を処理します。
func (h *UserHandler) MyComments(c *gin.Context) {
	username, ok := principal(c)
	if !ok {
		return
	}
	list, err := h.uc.MyComments(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, commentdto.NewCommentResponses(list))
}

// GetProfileImage は GET /api/users/me/profile-image を処理します。
func (h *UserHandler) GetProfileImage(c *gin.Context) {
	username, ok := principal(c)
	if !ok {
		return
	}
	url, err := h.uc.ProfileImage(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileImageResponse{ProfileImageURL: url})
}

// UploadProfileImage は POST /api/users/me/profile-image（multipartのfileフィールド）を処理します。
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	username, ok := principal(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		// リクエスト全体の上限を超えた場合は、ファイルサイズのエラーとして返す
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.BadRequest(c, usecase.ErrFileTooLarge.Error())
			return
		}
		response.BadRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to open upload", "error", err)
		response.Internal(c)
		return
	}
	defer f.Close()

	url, err := h.uc.UploadProfileImage(c.Request.Context(), username, usecase.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileImageResponse{ProfileImageURL: &url})
}

// DeleteProfileImage は DELETE /api/users/me/profile-image を処理します。
func (h *UserHandler) DeleteProfileImage(c *gin.Context) {
	username, ok := principal(c)
	if !ok {
		return
	}
	if err := h.uc.DeleteProfileImage(c.Request.Context(), username); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, usecase.ErrEmptyFile),
		errors.Is(err, usecase.ErrNotImage),
		errors.Is(err, usecase.ErrFileTooLarge):
		response.BadRequest(c, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "user request failed", "error", err, "path", c.FullPath())
		response.Internal(c)
	}
}
