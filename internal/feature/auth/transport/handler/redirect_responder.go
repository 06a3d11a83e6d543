package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"kanban_backend/internal/feature/auth/domain/entity"
	"kanban_backend/internal/platform/config"
)

// TokenIssuer は外部ログイン成功時にトークンを発行します。
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// 外部ログイン失敗時にフロントエンドへ渡す理由コード。
const (
	ReasonAccessDenied     = "access_denied"
	ReasonInvalidState     = "invalid_state"
	ReasonEmailUnavailable = "email_unavailable"
	ReasonOAuthFailed      = "oauth_failed"
)

// RedirectResponder は外部ログインの結果をクエリパラメータでフロントエンドへ渡します。
type RedirectResponder struct {
	base   *url.URL
	tokens TokenIssuer
}

// NewRedirectResponder はリダイレクト先を検証してRedirectResponderを生成します。
// 不正なURLは起動時エラーです。
func NewRedirectResponder(base string, tokens TokenIssuer) (*RedirectResponder, error) {
	if err := config.ValidateRedirectBase(base); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("parse redirect base: %w", err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	return &RedirectResponder{base: u, tokens: tokens}, nil
}

// Respond はトークンを発行し、302でフロントエンドへリダイレクトします。
func (r *RedirectResponder) Respond(c *gin.Context, p entity.Principal) {
	token, err := r.tokens.Issue(p.Username())
	if err != nil {
		slog.Error("failed to issue token for external login", "error", err, "username", p.Username())
		r.Fail(c, ReasonOAuthFailed)
		return
	}

	c.Redirect(http.StatusFound, r.target(map[string]string{
		"token":           token,
		"username":        p.Username(),
		"email":           p.Email(),
		"fullName":        p.FullName(),
		"profileImageUrl": p.ProfileImageURL(),
	}))
}

// Fail はエラー理由付きでフロントエンドへリダイレクトします。
func (r *RedirectResponder) Fail(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, r.target(map[string]string{"error": reason}))
}

func (r *RedirectResponder) target(params map[string]string) string {
	u := *r.base
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
