package di

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kanban_backend/internal/app/router"
	authadapters "kanban_backend/internal/feature/auth/adapters"
	authentity "kanban_backend/internal/feature/auth/domain/entity"
	authhandler "kanban_backend/internal/feature/auth/transport/handler"
	authusecase "kanban_backend/internal/feature/auth/usecase"
	boardadapters "kanban_backend/internal/feature/boards/adapters"
	boardhandler "kanban_backend/internal/feature/boards/transport/handler"
	boardusecase "kanban_backend/internal/feature/boards/usecase"
	commentadapters "kanban_backend/internal/feature/comments/adapters"
	commenthandler "kanban_backend/internal/feature/comments/transport/handler"
	commentusecase "kanban_backend/internal/feature/comments/usecase"
	userhandler "kanban_backend/internal/feature/users/transport/handler"
	userusecase "kanban_backend/internal/feature/users/usecase"
	"kanban_backend/internal/platform/cache"
	"kanban_backend/internal/platform/config"
	platformhandler "kanban_backend/internal/platform/http/handler"
	jwtmw "kanban_backend/internal/platform/jwt"
	"kanban_backend/internal/platform/observability"
	"kanban_backend/internal/platform/storage"
	"kanban_backend/internal/shared/ratelimiter"
)

// boardListTTL は公開投稿一覧のキャッシュ保持期間です。
const boardListTTL = 30 * time.Second

// Infra はプロセス起動時に用意する外部リソースです。
type Infra struct {
	DB *gorm.DB
	// Redis がnilの場合、stateはDBに保存し、一覧キャッシュは使用しません。
	Redis     *redis.Client
	Images    storage.ImageStore
	UploadDir string
	Providers map[string]authusecase.ProviderClient
	// Registry がnilの場合、メトリクスは収集しません。
	Registry *prometheus.Registry
}

// Models はスキーマ移行の対象モデルを返します。
func Models() []any {
	return []any{
		&authentity.User{},
		&boardadapters.BoardModel{},
		&commentadapters.CommentModel{},
		&authadapters.OAuthStateModel{},
	}
}

// NewRouter はリポジトリ・ユースケース・ハンドラーを組み立て、ルーターを返します。
func NewRouter(cfg config.Config, infra Infra) (*gin.Engine, error) {
	if infra.DB == nil {
		return nil, errors.New("database is required")
	}
	if infra.Images == nil {
		return nil, errors.New("image store is required")
	}

	tokens, err := jwtmw.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	// Repository
	users := authadapters.NewUserGorm(infra.DB)
	boardRepo := cache.NewCachingBoardRepository(infra.Redis, boardListTTL, boardadapters.NewBoardGorm(infra.DB), "boards")
	commentRepo := commentadapters.NewCommentGorm(infra.DB)

	// Usecase
	authUC, err := authusecase.NewAuthUsecase(users, tokens)
	if err != nil {
		return nil, fmt.Errorf("auth usecase: %w", err)
	}
	oauthUC := authusecase.NewOAuthUsecase(
		infra.Providers,
		NewStateStore(infra.Redis, infra.DB),
		authusecase.NewIdentityBridge(users),
		cfg.OAuth.StateTTL,
	)
	boardUC := boardusecase.NewBoardUsecase(boardRepo)
	commentUC := commentusecase.NewCommentUsecase(commentRepo)
	userUC := userusecase.NewUserUsecase(users, boardUC, commentUC, infra.Images)

	// Metrics
	var (
		prom     *observability.Prom
		observer authhandler.LoginObserver
		metrics  = promhttpHandler(infra.Registry)
	)
	if infra.Registry != nil {
		prom = observability.NewProm(infra.Registry)
		observer = prom
	}

	// Handler
	responder, err := authhandler.NewRedirectResponder(cfg.OAuth.AuthorizedRedirectURI, tokens)
	if err != nil {
		return nil, fmt.Errorf("redirect responder: %w", err)
	}
	sqlDB, err := infra.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	handlers := router.Handlers{
		Auth:     authhandler.NewAuthHandler(authUC, observer),
		OAuth:    authhandler.NewOAuthHandler(oauthUC, responder, observer),
		Boards:   boardhandler.NewBoardHandler(boardUC),
		Comments: commenthandler.NewCommentHandler(commentUC),
		Users:    userhandler.NewUserHandler(userUC),
		Health:   platformhandler.NewHealthHandler(sqlDB),
	}

	var limiter ratelimiter.Limiter
	if cfg.LoginRateLimit > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	return router.NewRouter(handlers, router.Options{
		Pipeline: router.PipelineOptions{
			ServiceName: "kanban-backend",
			CORSOrigins: cfg.CORSAllowedOrigins,
			Prom:        prom,
			Gate:        jwtmw.NewGate(tokens, jwtmw.DefaultAllowList()),
		},
		LoginLimiter:   limiter,
		Metrics:        metrics,
		TrustedProxies: cfg.TrustedProxies,
		UploadDir:      infra.UploadDir,
	})
}

func promhttpHandler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return nil
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
