package maps

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/metrics"
	"POI-Collector/internal/infrastructure/retry"
)

// RetryOptions 検索呼び出しの再試行・スロットリング設定
type RetryOptions struct {
	// Throttle 成否に関わらず毎回の呼び出し前に入れる固定待機
	Throttle     time.Duration
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// QPS 全ワーカー共通の秒間呼び出し上限（0なら無制限）
	QPS float64
}

// DefaultRetryOptions 30ms間隔、レート制限時は初回を含めて5回まで試行する（待機は1秒から倍々、上限60秒）
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		Throttle:     30 * time.Millisecond,
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     60 * time.Second,
	}
}

// RetryingSearchProvider はレート制限時に指数バックオフで再試行する検索プロバイダのデコレータ
type RetryingSearchProvider struct {
	next     repository.PlaceSearchRepository
	policy   retry.Config
	throttle time.Duration
	limiter  *rate.Limiter
	logger   logger.Logger
}

// NewRetryingSearchProvider は新しいデコレータを生成する
func NewRetryingSearchProvider(next repository.PlaceSearchRepository, opts RetryOptions, log logger.Logger) *RetryingSearchProvider {
	p := &RetryingSearchProvider{
		next:     next,
		throttle: opts.Throttle,
		logger:   log,
	}
	if opts.QPS > 0 {
		burst := int(opts.QPS)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.QPS), burst)
	}
	p.policy = retry.Config{
		MaxAttempts:  opts.MaxAttempts,
		InitialDelay: opts.InitialDelay,
		MaxDelay:     opts.MaxDelay,
		Multiplier:   2.0,
		IsRetryable: func(err error) bool {
			return errors.Is(err, model.ErrRateLimited)
		},
		OnRetry: func(attempt int, delay time.Duration, err error) {
			metrics.SearchRetriesTotal.Inc()
			log.Warn("⏳ レート制限のため再試行します",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Error(err))
		},
	}
	return p
}

// Search は再試行ポリシーを適用して検索を実行する
func (p *RetryingSearchProvider) Search(ctx context.Context, req model.SearchRequest) (*model.SearchPage, error) {
	var page *model.SearchPage
	err := retry.Do(ctx, p.policy, func(ctx context.Context) error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := retry.Sleep(ctx, p.throttle); err != nil {
			return err
		}

		result, err := p.next.Search(ctx, req)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
