// Package router はginエンジンを組み立て、全ルートを登録します。
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	authhandler "kanban_backend/internal/feature/auth/transport/handler"
	boardhandler "kanban_backend/internal/feature/boards/transport/handler"
	commenthandler "kanban_backend/internal/feature/comments/transport/handler"
	userhandler "kanban_backend/internal/feature/users/transport/handler"
	platformhandler "kanban_backend/internal/platform/http/handler"
	"kanban_backend/internal/platform/http/middleware"
	"kanban_backend/internal/shared/ratelimiter"
)

// readMethods は公開の参照系ルートで受け付けるメソッドです。
var readMethods = []string{http.MethodGet, http.MethodHead}

// Handlers はルートに割り当てるハンドラー群です。
type Handlers struct {
	Auth     *authhandler.AuthHandler
	OAuth    *authhandler.OAuthHandler
	Boards   *boardhandler.BoardHandler
	Comments *commenthandler.CommentHandler
	Users    *userhandler.UserHandler
	Health   *platformhandler.HealthHandler
}

// Options はルーター全体の設定です。
type Options struct {
	Pipeline PipelineOptions
	// LoginLimiter がnilの場合、ログインのレート制限は行いません。
	LoginLimiter ratelimiter.Limiter
	// Metrics は /metrics で公開するハンドラーです。nilなら登録しません。
	Metrics http.Handler
	// TrustedProxies が空の場合、X-Forwarded-For を無視して接続元アドレスをクライアントIPとします。
	TrustedProxies []string
	// UploadDir が空でなければ /uploads 配下で静的配信します（ローカル保存時）。
	UploadDir string
}

// NewRouter はフィルターチェーンを適用したginエンジンを返します。
func NewRouter(h Handlers, opts Options) (*gin.Engine, error) {
	stages, err := NewPipeline(opts.Pipeline)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	for _, s := range stages {
		r.Use(s.Handler)
	}

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	// 認証
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		login := []gin.HandlerFunc{h.Auth.Login}
		if opts.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimit(opts.LoginLimiter)}, login...)
		}
		auth.POST("/login", login...)
	}

	// 外部ログイン
	r.GET("/oauth2/authorization/:provider", h.OAuth.Start)
	r.GET("/login/oauth2/code/:provider", h.OAuth.Callback)

	// 投稿とコメント。GETとHEADはゲートの許可リストにより匿名でも参照できます。
	boards := r.Group("/api/boards")
	{
		boards.Match(readMethods, "", h.Boards.List)
		boards.Match(readMethods, "/search", h.Boards.Search)
		boards.Match(readMethods, "/user/:username", h.Boards.ListByUser)
		boards.Match(readMethods, "/:id", h.Boards.Get)
		boards.POST("", h.Boards.Create)
		boards.PUT("/:id", h.Boards.Update)
		boards.DELETE("/:id", h.Boards.Delete)

		boards.Match(readMethods, "/:id/comments", h.Comments.List)
		boards.POST("/:id/comments", h.Comments.Create)
	}
	comments := r.Group("/api/comments")
	{
		comments.PUT("/:id", h.Comments.Update)
		comments.DELETE("/:id", h.Comments.Delete)
	}

	// マイページ
	me := r.Group("/api/users/me")
	{
		me.GET("/boards", h.Users.MyBoards)
		me.GET("/comments", h.Users.MyComments)
		me.GET("/profile-image", h.Users.GetProfileImage)
		me.POST("/profile-image", h.Users.UploadProfileImage)
		me.DELETE("/profile-image", h.Users.DeleteProfileImage)
	}

	return r, nil
}
