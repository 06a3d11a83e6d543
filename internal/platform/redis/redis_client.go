// Package redis はOAuth stateの保存と投稿一覧キャッシュに使うRedis接続を提供します。
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout は起動時の疎通確認に使う上限です。Redisは任意の依存なので待ちすぎないようにします。
const pingTimeout = 3 * time.Second

// NewRedisClient はaddrへのクライアントを生成し、PINGで疎通を確認します。
// 失敗した場合はクライアントを閉じてエラーを返します。呼び出し元はRedisなしで続行できます。
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
