package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/metrics"
)

// CachedScanRecordsRepository Redisを前段に置いたスキャン台帳
// 台帳は追記のみで書き換わらないため、一度見つかったレコードはそのままキャッシュできる
// Redisの障害は読み書きともログに残して無視し、常に下位の台帳を正とする
type CachedScanRecordsRepository struct {
	next   repository.ScanRecordsRepository
	redis  *goredis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedScanRecordsRepository(next repository.ScanRecordsRepository, client *goredis.Client, ttl time.Duration, log logger.Logger) repository.ScanRecordsRepository {
	return &CachedScanRecordsRepository{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log,
	}
}

// scanCacheKey scan:{region}:{keyword}:{lat}:{lng}:{radius}
func scanCacheKey(key model.ScanKey) string {
	return fmt.Sprintf("scan:%s:%s:%s:%s:%d",
		key.RegionName,
		key.Keyword,
		strconv.FormatFloat(key.CenterLat, 'f', 7, 64),
		strconv.FormatFloat(key.CenterLng, 'f', 7, 64),
		key.RadiusMeters,
	)
}

func (r *CachedScanRecordsRepository) Find(ctx context.Context, key model.ScanKey) (*model.ScanRecord, error) {
	cacheKey := scanCacheKey(key)

	status, err := r.redis.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		if s := model.ScanStatus(status); s.IsValid() {
			metrics.LedgerCacheTotal.WithLabelValues("hit").Inc()
			return &model.ScanRecord{ScanKey: key, Status: s}, nil
		}
		r.logger.Warn("⚠️ キャッシュに不明なステータス", logger.String("key", cacheKey), logger.String("status", status))
	case errors.Is(err, goredis.Nil):
	default:
		metrics.LedgerCacheTotal.WithLabelValues("error").Inc()
		r.logger.Warn("⚠️ 台帳キャッシュの参照に失敗", logger.String("key", cacheKey), logger.Error(err))
	}
	metrics.LedgerCacheTotal.WithLabelValues("miss").Inc()

	record, err := r.next.Find(ctx, key)
	if err != nil || record == nil {
		return record, err
	}
	r.store(ctx, record)
	return record, nil
}

func (r *CachedScanRecordsRepository) Create(ctx context.Context, record *model.ScanRecord) error {
	if err := r.next.Create(ctx, record); err != nil {
		return err
	}
	// 既存キーへのCreateは下位で無視されるため、正のステータスを読み直してからキャッシュする
	stored, err := r.next.Find(ctx, record.ScanKey)
	if err != nil || stored == nil {
		return nil
	}
	r.store(ctx, stored)
	return nil
}

func (r *CachedScanRecordsRepository) store(ctx context.Context, record *model.ScanRecord) {
	cacheKey := scanCacheKey(record.ScanKey)
	if err := r.redis.Set(ctx, cacheKey, string(record.Status), r.ttl).Err(); err != nil {
		metrics.LedgerCacheTotal.WithLabelValues("error").Inc()
		r.logger.Warn("⚠️ 台帳キャッシュの書き込みに失敗", logger.String("key", cacheKey), logger.Error(err))
	}
}
