// Package handler はcommentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kanban_backend/internal/feature/comments/domain/entity"
	"kanban_backend/internal/feature/comments/transport/http/dto"
	"kanban_backend/internal/feature/comments/usecase"
	"kanban_backend/internal/platform/authctx"
	"kanban_backend/internal/platform/http/response"
)

// CommentUsecase はコメント操作のユースケースです。
type CommentUsecase interface {
	ListByBoard(ctx context.Context, boardID uint) ([]entity.Comment, error)
	Create(ctx context.Context, boardID uint, username, content string) (*entity.Comment, error)
	Update(ctx context.Context, id uint, username, content string) (*entity.Comment, error)
	Delete(ctx context.Context, id uint, username string) error
}

// CommentHandler はコメントのリクエストを処理します。
type CommentHandler struct {
	uc CommentUsecase
}

// NewCommentHandler はCommentHandlerを生成します。
func NewCommentHandler(uc CommentUsecase) *CommentHandler {
	return &CommentHandler{uc: uc}
}

// List は GET /api/boards/:id/comments を処理します。
func (h *CommentHandler) List(c *gin.Context) {
	boardID, ok := response.PathID(c, "id")
	if !ok {
		return
	}
	list, err := h.uc.ListByBoard(c.Request.Context(), boardID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCommentResponses(list))
}

// Create は POST /api/boards/:id/comments を処理します。
func (h *CommentHandler) Create(c *gin.Context) {
	p, ok := authctx.FromGin(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	boardID, ok := response.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.CommentReq
	if !response.BindJSON(c, &req) {
		return
	}

	created, err := h.uc.Create(c.Request.Context(), boardID, p.Username, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCommentResponse(*created))
}

// Update は PUT /api/comments/:id を処理します。
func (h *CommentHandler) Update(c *gin.Context) {
	p, ok := authctx.FromGin(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	id, ok := response.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.CommentReq
	if !response.BindJSON(c, &req) {
		return
	}

	updated, err := h.uc.Update(c.Request.Context(), id, p.Username, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCommentResponse(*updated))
}

// Delete は DELETE /api/comments/:id を処理します。
func (h *CommentHandler) Delete(c *gin.Context) {
	p, ok := authctx.FromGin(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	id, ok := response.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), id, p.Username); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrCommentNotFound),
		errors.Is(err, usecase.ErrBoardNotFound),
		errors.Is(err, usecase.ErrAuthorNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(c)
	case errors.Is(err, usecase.ErrEmptyComment):
		response.BadRequest(c, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "comment request failed", "error", err, "path", c.FullPath())
		response.Internal(c)
	}
}
