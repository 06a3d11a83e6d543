package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"kanban_backend/internal/feature/auth/domain/entity"
	"kanban_backend/internal/feature/auth/usecase"
	"kanban_backend/internal/platform/http/response"
)

// OAuthUsecase は外部ログインのユースケースです。
type OAuthUsecase interface {
	Begin(ctx context.Context, provider string) (string, error)
	Complete(ctx context.Context, provider, code, state string) (entity.Principal, error)
}

// OAuthHandler は外部ログインの開始とコールバックを処理します。
type OAuthHandler struct {
	oauth     OAuthUsecase
	responder *RedirectResponder
	observer  LoginObserver
}

// NewOAuthHandler はOAuthHandlerを生成します。
func NewOAuthHandler(oauth OAuthUsecase, responder *RedirectResponder, observer LoginObserver) *OAuthHandler {
	if observer == nil {
		observer = noopObserver{}
	}
	return &OAuthHandler{oauth: oauth, responder: responder, observer: observer}
}

// Start は GET /oauth2/authorization/:provider を処理し、プロバイダーの同意画面へリダイレクトします。
func (h *OAuthHandler) Start(c *gin.Context) {
	provider := c.Param("provider")

	url, err := h.oauth.Begin(c.Request.Context(), provider)
	if err != nil {
		if errors.Is(err, usecase.ErrUnsupportedProvider) {
			response.NotFound(c, "unknown provider")
			return
		}
		slog.Error("failed to begin external login", "error", err, "provider", provider)
		response.Internal(c)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Callback は GET /login/oauth2/code/:provider を処理します。
// 成功・失敗いずれもフロントエンドへリダイレクトします。
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")

	if e := c.Query("error"); e != "" {
		slog.Warn("external login denied", "provider", provider, "error", e, "remote_addr", c.ClientIP())
		h.observer.ObserveLogin(provider, false)
		h.responder.Fail(c, ReasonAccessDenied)
		return
	}

	p, err := h.oauth.Complete(c.Request.Context(), provider, c.Query("code"), c.Query("state"))
	if err != nil {
		h.observer.ObserveLogin(provider, false)
		reason := failureReason(err)
		slog.Warn("external login failed", "provider", provider, "reason", reason, "error", err, "remote_addr", c.ClientIP())
		h.responder.Fail(c, reason)
		return
	}

	h.observer.ObserveLogin(provider, true)
	slog.Info("external login successful", "provider", provider, "username", p.Username(), "remote_addr", c.ClientIP())
	h.responder.Respond(c, p)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, usecase.ErrStateNotFound), errors.Is(err, usecase.ErrStateMismatch):
		return ReasonInvalidState
	case errors.Is(err, usecase.ErrEmailUnavailable):
		return ReasonEmailUnavailable
	default:
		return ReasonOAuthFailed
	}
}
