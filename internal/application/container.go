package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"POI-Collector/internal/config"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/domain/service"
	"POI-Collector/internal/handler"
	"POI-Collector/internal/infrastructure/database"
	"POI-Collector/internal/infrastructure/firestore"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/maps"
	redisclient "POI-Collector/internal/infrastructure/redis"
	"POI-Collector/internal/infrastructure/supabase"
	repoImpl "POI-Collector/internal/repository"
	"POI-Collector/internal/usecase"
)

// Container 設定から組み立てた依存関係
type Container struct {
	Config            *config.Config
	Logger            logger.Logger
	Postgres          *database.PostgreSQLClient
	Supabase          *supabase.SupabaseClient
	Redis             *goredis.Client
	Firestore         *firestore.FirestoreClient
	Regions           repository.RegionsRepository
	CollectionUseCase usecase.CollectionUseCase
}

// NewContainer は各クライアント・リポジトリ・サービスを初期化する
// Redis・Firestoreは設定がない場合は使わない
func NewContainer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	log.Info("🔌 PostgreSQLに接続中...")
	pg, err := database.NewPostgreSQLClientWithRetry(ctx, cfg.Database.URL, 5, 2*time.Second, log)
	if err != nil {
		return nil, err
	}
	c.Postgres = pg
	if err := pg.EnsureSchema(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.Supabase, err = supabase.NewSupabaseClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	if err != nil {
		c.Close()
		return nil, err
	}

	var ledger repository.ScanRecordsRepository = repoImpl.NewPostgresScanRecordsRepository(pg)
	if cfg.Redis.Address != "" {
		c.Redis, err = redisclient.NewClient(ctx, redisclient.Options{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		ledger = repoImpl.NewCachedScanRecordsRepository(ledger, c.Redis, cfg.Redis.TTL, log)
		log.Info("✅ 台帳キャッシュ(Redis)を有効化", logger.String("address", cfg.Redis.Address))
	}

	var runs repository.CollectionRunsRepository
	if cfg.Firestore.ProjectID != "" {
		c.Firestore, err = firestore.NewFirestoreClient(ctx, cfg.Firestore.ProjectID, log)
		if err != nil {
			c.Close()
			return nil, err
		}
		runs = repoImpl.NewFirestoreCollectionRunsRepository(c.Firestore.GetClient(), log)
	} else {
		log.Warn("⚠️ FIRESTORE_PROJECT_IDが未設定のため、収集実行の記録はメモリに保存します")
		runs = repoImpl.NewMemoryCollectionRunsRepository()
	}

	searcher := maps.NewRetryingSearchProvider(
		maps.NewKakaoLocalSearchProvider(cfg.Kakao.RESTAPIKey, cfg.Kakao.BaseURL, log),
		maps.RetryOptions{
			Throttle:     cfg.Search.Throttle,
			MaxAttempts:  cfg.Search.MaxAttempts,
			InitialDelay: cfg.Search.InitialBackoff,
			MaxDelay:     cfg.Search.MaxBackoff,
			QPS:          cfg.Search.QPS,
		},
		log,
	)

	scanner := service.NewCellScanner(
		ledger,
		repoImpl.NewPostgresPlacesRepository(pg, log),
		searcher,
		service.ScanOptions{
			DensityThreshold: cfg.Collect.DensityThreshold,
			MaxPages:         cfg.Collect.MaxPages,
		},
		log,
	)
	collector := service.NewRegionCollector(scanner, service.CollectorOptions{
		InitialRadiusMeters: cfg.Collect.InitialRadius,
		MaxDepth:            cfg.Collect.MaxDepth,
		Workers:             cfg.Collect.Workers,
	}, log)

	c.Regions = repoImpl.NewSupabaseRegionsRepository(c.Supabase)
	c.CollectionUseCase = usecase.NewCollectionUseCase(collector, c.Regions, runs, log)
	return c, nil
}

// HealthChecks は/healthで確認する依存先
func (c *Container) HealthChecks() map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"postgres": c.Postgres.HealthCheck,
		"supabase": func(context.Context) error { return c.Supabase.HealthCheck() },
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	return checks
}

// Close は開いている接続をすべて閉じる
func (c *Container) Close() error {
	var errs []error
	if c.Firestore != nil {
		errs = append(errs, c.Firestore.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.Postgres != nil {
		errs = append(errs, c.Postgres.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("接続のクローズに失敗: %w", err)
	}
	return nil
}
