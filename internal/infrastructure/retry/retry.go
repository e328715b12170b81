package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMaxAttemptsExceeded 再試行回数の上限に達した
var ErrMaxAttemptsExceeded = errors.New("最大試行回数を超えました")

// Config 再試行ポリシー
type Config struct {
	// MaxAttempts 初回を含む最大試行回数
	MaxAttempts int
	// InitialDelay 1回目の再試行前の待機時間
	InitialDelay time.Duration
	// MaxDelay 待機時間の上限
	MaxDelay time.Duration
	// Multiplier 指数バックオフの倍率
	Multiplier float64
	// IsRetryable 再試行対象のエラーかどうか。falseのエラーは即座に返す
	IsRetryable func(error) bool
	// OnRetry 再試行の待機直前に呼ばれる
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig 5回・1秒から倍々・上限60秒
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.Multiplier <= 0 {
		c.Multiplier = d.Multiplier
	}
	if c.IsRetryable == nil {
		c.IsRetryable = func(error) bool { return false }
	}
	return c
}

// Backoff attempt回目の失敗後の待機時間 InitialDelay * Multiplier^(attempt-1)（MaxDelayで頭打ち）
func (c Config) Backoff(attempt int) time.Duration {
	c = c.withDefaults()
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	if delay > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(delay)
}

// Do fnを再試行ポリシーに従って実行する
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !cfg.IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.Backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}
		if err := Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w (%d回): %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
}

// Sleep コンテキストのキャンセルに応答する待機
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
