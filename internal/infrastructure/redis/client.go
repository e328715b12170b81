package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Options Redis接続設定
type Options struct {
	Address  string
	Password string
	DB       int
}

// NewClient Redisクライアントを作成して疎通を確認する
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("REDIS_ADDRESSが設定されていません")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redisへの接続に失敗 (%s): %w", opts.Address, err)
	}
	return client, nil
}
