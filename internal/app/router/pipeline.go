package router

import (
	"fmt"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"kanban_backend/internal/platform/http/middleware"
	jwtmw "kanban_backend/internal/platform/jwt"
	"kanban_backend/internal/platform/observability"
)

// DefaultMaxBodyBytes はリクエストボディの上限です。5MBのプロフィール画像とmultipartの境界が収まる大きさにしています。
const DefaultMaxBodyBytes int64 = 6 << 20

// Stage はグローバルなフィルターチェーンの1段です。
type Stage struct {
	Name    string
	Handler gin.HandlerFunc
}

// PipelineOptions はフィルターチェーンの構成要素です。
type PipelineOptions struct {
	ServiceName  string
	CORSOrigins  []string
	MaxBodyBytes int64
	// Prom がnilの場合、メトリクス段は省略されます。
	Prom *observability.Prom
	Gate *jwtmw.Gate
}

// NewPipeline は全リクエストに適用する段を実行順に返します。
// CORSはゲートより前に置き、プリフライトが認証なしで応答できるようにします。
func NewPipeline(opts PipelineOptions) ([]Stage, error) {
	if opts.Gate == nil {
		return nil, fmt.Errorf("request gate is required")
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "kanban-backend"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	stages := []Stage{
		{Name: "recovery", Handler: gin.Recovery()},
		{Name: "request_id", Handler: middleware.RequestID()},
		{Name: "logger", Handler: middleware.RequestLogger()},
		{Name: "security_headers", Handler: middleware.SecurityHeaders()},
		{Name: "tracing", Handler: otelgin.Middleware(opts.ServiceName)},
	}
	if opts.Prom != nil {
		stages = append(stages, Stage{Name: "metrics", Handler: opts.Prom.GinHandleMiddleware()})
	}
	stages = append(stages,
		Stage{Name: "cors", Handler: cors.New(corsConfig(opts.CORSOrigins))},
		Stage{Name: "body_limit", Handler: middleware.MaxBodyBytes(opts.MaxBodyBytes)},
		Stage{Name: "gate", Handler: opts.Gate.Handler()},
	)
	return stages, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	// "*" を指定した場合は資格情報付きリクエストを許可しません。
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// Names は段の名前を実行順に返します。
func Names(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}
