// Package middleware はアプリケーション全体に適用するGinミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kanban_backend/internal/platform/http/response"
	"kanban_backend/internal/shared/ratelimiter"
)

const (
	// RequestIDHeader はリクエストIDを伝搬するヘッダー名です。
	RequestIDHeader = "X-Request-Id"
	// CtxRequestID はGinコンテキスト上のリクエストIDのキーです。
	CtxRequestID = "request_id"
)

// RequestID はリクエストIDを付与します。クライアントが指定した場合はそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Set(CtxRequestID, id)
		c.Next()
	}
}

// RequestLogger はリクエストごとにメソッド・ルート・ステータス・レイテンシを構造化ログに出力します。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path // 404などルート未一致の場合
		}
		reqID, _ := c.Get(CtxRequestID)

		slog.Default().InfoContext(c.Request.Context(), "http_request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", reqID,
			"remote_addr", c.ClientIP(),
		)
	}
}

// SecurityHeaders はブラウザ向けのセキュリティ関連ヘッダーを設定します。
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")
		c.Next()
	}
}

// MaxBodyBytes はリクエストボディの大きさを制限します。
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

// RateLimit はクライアントIP単位でリクエスト頻度を制限します。
// 上限を超えた場合は429とRetry-Afterヘッダー（秒）を返します。
func RateLimit(limiter ratelimiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := limiter.Allow(c.ClientIP())
		if !ok {
			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			slog.Warn("rate limit exceeded", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
			response.Error(c, http.StatusTooManyRequests, response.MsgTooManyRequests)
			return
		}
		c.Next()
	}
}
