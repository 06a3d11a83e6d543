// Package handler はboardsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kanban_backend/internal/feature/boards/domain/entity"
	"kanban_backend/internal/feature/boards/transport/http/dto"
	"kanban_backend/internal/feature/boards/usecase"
	"kanban_backend/internal/platform/authctx"
	"kanban_backend/internal/platform/http/response"
	"kanban_backend/internal/platform/pagination"
)

// BoardUsecase は投稿操作のユースケースです。
type BoardUsecase interface {
	List(ctx context.Context, req pagination.Request) (pagination.Page[entity.Board], error)
	Search(ctx context.Context, keyword string, req pagination.Request) (pagination.Page[entity.Board], error)
	ListByAuthor(ctx context.Context, username string, req pagination.Request) (pagination.Page[entity.Board], error)
	Get(ctx context.Context, id uint) (*entity.Board, error)
	Create(ctx context.Context, username string, in usecase.BoardInput) (*entity.Board, error)
	Update(ctx context.Context, id uint, username string, in usecase.BoardInput) (*entity.Board, error)
	Delete(ctx context.Context, id uint, username string) error
}

// BoardHandler は /api/boards 配下のリクエストを処理します。
type BoardHandler struct {
	uc BoardUsecase
}

// NewBoardHandler はBoardHandlerを生成します。
func NewBoardHandler(uc BoardUsecase) *BoardHandler {
	return &BoardHandler{uc: uc}
}

func (h *BoardHandler) writePage(c *gin.Context, page pagination.Page[entity.Board], err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, dto.NewBoardResponse))
}

// List は GET /api/boards?page&size を処理します。
func (h *BoardHandler) List(c *gin.Context) {
	req, ok := response.PageQuery(c)
	if !ok {
		return
	}
	page, err := h.uc.List(c.Request.Context(), req)
	h.writePage(c, page, err)
}

// Search は GET /api/boards/search?keyword&page&size を処理します。
func (h *BoardHandler) Search(c *gin.Context) {
	req, ok := response.PageQuery(c)
	if !ok {
		return
	}
	page, err := h.uc.Search(c.Request.Context(), c.Query("keyword"), req)
	h.writePage(c, page, err)
}

// ListByUser は GET /api/boards/user/:username を処理します。
func (h *BoardHandler) ListByUser(c *gin.Context) {
	req, ok := response.PageQuery(c)
	if !ok {
		return
	}
	page, err := h.uc.ListByAuthor(c.Request.Context(), c.Param("username"), req)
	h.writePage(c, page, err)
}

// Get は GET /api/boards/:id を処理します。閲覧数が増えます。
func (h *BoardHandler) Get(c *gin.Context) {
	id, ok := response.PathID(c, "id")
	if !ok {
		return
	}
	b, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBoardResponse(*b))
}

// Create は POST /api/boards を処理します。
func (h *BoardHandler) Create(c *gin.Context) {
	p, ok := authctx.FromGin(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	var req dto.BoardReq
	if !response.BindJSON(c, &req) {
		return
	}

	b, err := h.uc.Create(c.Request.Context(), p.Username, usecase.BoardInput{Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBoardResponse(*b))
}

// Update は PUT /api/boards/:id を処理します。投稿者のみ更新できます。
func (h *BoardHandler) Update(c *gin.Context) {
	p, ok := authctx.FromGin(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	id, ok := response.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.BoardReq
	if !response.BindJSON(c, &req) {
		return
	}

	b, err := h.uc.Update(c.Request.Context(), id, p.Username, usecase.BoardInput{Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBoardResponse(*b))
}

// Delete は DELETE /api/boards/:id を処理します。投稿者のみ削除できます。
func (h *BoardHandler) Delete(c *gin.Context) {
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

// fail はユースケースのエラーをHTTPステータスに変換します。
func (h *BoardHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrBoardNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, usecase.ErrAuthorNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(c)
	case errors.Is(err, usecase.ErrInvalidBoard):
		response.BadRequest(c, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "board request failed", "error", err, "path", c.FullPath())
		response.Internal(c)
	}
}
