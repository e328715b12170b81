package maps

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/retry"
)

// scriptedSearcher 呼び出しごとに決められたエラーを返す検索プロバイダ
type scriptedSearcher struct {
	errs  []error
	calls int
}

func (s *scriptedSearcher) Search(_ context.Context, _ model.SearchRequest) (*model.SearchPage, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return &model.SearchPage{TotalCount: 1, IsLastPage: true}, nil
}

func fastRetryOptions() RetryOptions {
	return RetryOptions{
		Throttle:     time.Millisecond,
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}
}

func TestRetryingSearchProvider_Search(t *testing.T) {
	rateLimited := fmt.Errorf("%w: 429", model.ErrRateLimited)

	t.Run("レート制限は再試行して成功", func(t *testing.T) {
		next := &scriptedSearcher{errs: []error{rateLimited, rateLimited}}
		p := NewRetryingSearchProvider(next, fastRetryOptions(), logger.NewNop())

		page, err := p.Search(context.Background(), model.SearchRequest{Keyword: "a", Page: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalCount)
		assert.Equal(t, 3, next.calls)
	})

	t.Run("その他のエラーは再試行しない", func(t *testing.T) {
		boom := errors.New("500 Internal Server Error")
		next := &scriptedSearcher{errs: []error{boom}}
		p := NewRetryingSearchProvider(next, fastRetryOptions(), logger.NewNop())

		_, err := p.Search(context.Background(), model.SearchRequest{Keyword: "a", Page: 1})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("5回で諦める", func(t *testing.T) {
		next := &scriptedSearcher{errs: []error{rateLimited, rateLimited, rateLimited, rateLimited, rateLimited, rateLimited}}
		p := NewRetryingSearchProvider(next, fastRetryOptions(), logger.NewNop())

		_, err := p.Search(context.Background(), model.SearchRequest{Keyword: "a", Page: 1})
		assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
		assert.ErrorIs(t, err, model.ErrRateLimited)
		assert.Equal(t, 5, next.calls)
	})

	t.Run("毎回固定の待機が入る", func(t *testing.T) {
		opts := fastRetryOptions()
		opts.Throttle = 20 * time.Millisecond
		next := &scriptedSearcher{}
		p := NewRetryingSearchProvider(next, opts, logger.NewNop())

		start := time.Now()
		for i := 0; i < 3; i++ {
			_, err := p.Search(context.Background(), model.SearchRequest{Keyword: "a", Page: 1})
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	})

	t.Run("QPS上限を設定できる", func(t *testing.T) {
		opts := fastRetryOptions()
		opts.QPS = 1000
		p := NewRetryingSearchProvider(&scriptedSearcher{}, opts, logger.NewNop())
		require.NotNil(t, p.limiter)

		_, err := p.Search(context.Background(), model.SearchRequest{Keyword: "a", Page: 1})
		assert.NoError(t, err)
	})
}
