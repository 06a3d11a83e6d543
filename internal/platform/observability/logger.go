// Package observability はログ・メトリクス・トレースの初期化を提供します。
package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger は環境に応じたレベルのJSONロガーを生成します。
// devではDebugレベルを出力し、トレースIDがあればログに付与します。
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(NewTraceHandler(handler))
}
