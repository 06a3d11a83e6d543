package ratelimiter

import (
	"sync"
	"time"
)

// Limiter は、キー（クライアントIPなど）ごとに操作の頻度を制限するインターフェースです。
type Limiter interface {
	// Allow はkeyの操作を許可するかを返します。拒否時は次のウィンドウまでの待ち時間も返します。
	Allow(key string) (bool, time.Duration)
}

// window はキーごとのカウンタです。
type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter は固定ウィンドウ方式でキーごとの操作回数を制限します。
// 複数のゴルーチンから安全に呼び出せます。
type RateLimiter struct {
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	now      func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		now:      time.Now,
		windows:  make(map[string]*window),
	}
}

// Allow はレートリミットの上限に達しているかを確認します。
// 上限を超えた場合は待機せず、残り時間を返して呼び出し元に判断を委ねます。
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		w = &window{lastReset: now}
		rl.windows[key] = w
		rl.sweep(now)
	}

	w.count++
	if w.count > rl.limit {
		return false, rl.interval - now.Sub(w.lastReset)
	}
	return true, 0
}

// sweep は期限切れのウィンドウを削除し、マップの肥大化を防ぎます。
// 走査はintervalごとに最大1回です。
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.interval {
		return
	}
	rl.lastSweep = now
	for k, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, k)
		}
	}
}
