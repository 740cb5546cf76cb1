// Package ratelimiter は外部API呼び出しの頻度を固定ウィンドウで制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は外部API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	// Wait は上限に達している場合、次のウィンドウまで待機します。ctxがキャンセルされるとエラーを返します。
	Wait(ctx context.Context) error
}

// RateLimiter はintervalごとにlimit回までの呼び出しを許可します。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // ウィンドウあたりの上限
	interval  time.Duration // ウィンドウの長さ
	count     int
	lastReset time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterを生成します。limitが1未満の場合は1として扱います。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Wait はレートリミットの上限に達しているかを確認し、必要であれば待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		return nil
	}

	if wait := rl.interval - now.Sub(rl.lastReset); wait > 0 {
		slog.Info("rate limit reached, waiting", "limit", rl.limit, "wait", wait)
		if err := rl.sleep(ctx, wait); err != nil {
			rl.count--
			return err
		}
	}
	rl.count = 1
	rl.lastReset = rl.now()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
