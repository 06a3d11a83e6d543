// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kanban_backend/internal/feature/auth/transport/http/dto"
	"kanban_backend/internal/feature/auth/usecase"
	"kanban_backend/internal/platform/http/response"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は新規ユーザーを登録し、トークンを発行します。
	Signup(ctx context.Context, in usecase.SignupInput) (*usecase.AuthResult, error)
	// Login はユーザーを認証し、成功時にトークンを返します。
	Login(ctx context.Context, username, password string) (*usecase.AuthResult, error)
}

// LoginObserver はログイン結果をメトリクスに記録します。
type LoginObserver interface {
	ObserveLogin(method string, success bool)
}

type noopObserver struct{}

func (noopObserver) ObserveLogin(string, bool) {}

// ログイン失敗時のメッセージ。失敗理由に関わらず同一です。
const msgInvalidCredentials = "invalid username or password"

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth     AuthUsecase
	observer LoginObserver
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// observerがnilの場合、メトリクスは記録しません。
func NewAuthHandler(auth AuthUsecase, observer LoginObserver) *AuthHandler {
	if observer == nil {
		observer = noopObserver{}
	}
	return &AuthHandler{auth: auth, observer: observer}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - ユーザー名・メール重複時は409を返却
// - 成功時はトークン付きで201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if !response.BindJSON(c, &req) {
		slog.Warn("signup validation failed", "remote_addr", c.ClientIP())
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrWeakPassword):
		response.BadRequest(c, err.Error())
		return
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("signup failed", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
		response.Error(c, http.StatusConflict, "signup failed")
		return
	default:
		slog.Error("signup failed", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
		response.Internal(c)
		return
	}

	slog.Info("user signup successful", "username", req.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewAuthResponse(result))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は理由に関わらず同じ401を返却
// - 認証成功時はトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !response.BindJSON(c, &req) {
		slog.Warn("login validation failed", "remote_addr", c.ClientIP())
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.observer.ObserveLogin("password", false)
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "username", req.Username, "remote_addr", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		slog.Error("login failed", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
		response.Internal(c)
		return
	}

	h.observer.ObserveLogin("password", true)
	slog.Info("user login successful", "username", req.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewAuthResponse(result))
}
