package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/domain/service"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/metrics"
)

// CompletionCallback 収集実行の終了後（成功・失敗とも）に呼ばれる
type CompletionCallback func(ctx context.Context, run *model.CollectionRun)

type CollectionUseCase interface {
	// Start は収集をバックグラウンドで開始し、実行中の記録を返す
	Start(ctx context.Context, req *model.CollectionRequest) (*model.CollectionRun, error)

	// Run は収集を同期的に実行し、終了した記録を返す
	Run(ctx context.Context, req *model.CollectionRequest) (*model.CollectionRun, error)

	// Get は収集実行の記録を取得する
	Get(ctx context.Context, id string) (*model.CollectionRun, error)

	// OnCollectionComplete は終了時のコールバックを登録する
	OnCollectionComplete(cb CompletionCallback)

	// Wait はバックグラウンドの収集がすべて終わるまで待つ
	Wait()
}

// collectionUseCaseImpl はCollectionUseCaseの実装
type collectionUseCaseImpl struct {
	collector service.RegionCollector
	regions   repository.RegionsRepository
	runs      repository.CollectionRunsRepository
	logger    logger.Logger

	mu        sync.RWMutex
	callbacks []CompletionCallback
	inflight  sync.WaitGroup
	now       func() time.Time
	newID     func() string
}

// NewCollectionUseCase は新しいCollectionUseCaseインスタンスを作成
func NewCollectionUseCase(
	collector service.RegionCollector,
	regions repository.RegionsRepository,
	runs repository.CollectionRunsRepository,
	log logger.Logger,
) CollectionUseCase {
	return &collectionUseCaseImpl{
		collector: collector,
		regions:   regions,
		runs:      runs,
		logger:    log,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

func (u *collectionUseCaseImpl) Start(ctx context.Context, req *model.CollectionRequest) (*model.CollectionRun, error) {
	run, region, err := u.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot := *run
	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		// リクエストが終わっても収集は続ける
		u.execute(context.WithoutCancel(ctx), run, region)
	}()
	return &snapshot, nil
}

func (u *collectionUseCaseImpl) Run(ctx context.Context, req *model.CollectionRequest) (*model.CollectionRun, error) {
	run, region, err := u.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	u.execute(ctx, run, region)
	return run, nil
}

func (u *collectionUseCaseImpl) Get(ctx context.Context, id string) (*model.CollectionRun, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: %s", model.ErrCollectionRunNotFound, id)
	}
	return u.runs.Get(ctx, id)
}

func (u *collectionUseCaseImpl) OnCollectionComplete(cb CompletionCallback) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.callbacks = append(u.callbacks, cb)
}

func (u *collectionUseCaseImpl) Wait() {
	u.inflight.Wait()
}

// prepare はリクエストを検証し、地域を取得して実行中の記録を保存する
func (u *collectionUseCaseImpl) prepare(ctx context.Context, req *model.CollectionRequest) (*model.CollectionRun, *model.RegionArea, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("%w: リクエストが空です", model.ErrInvalidCollectionRequest)
	}
	regionName := strings.TrimSpace(req.RegionName)
	keyword := strings.TrimSpace(req.Keyword)
	if regionName == "" {
		return nil, nil, fmt.Errorf("%w: region_nameは必須です", model.ErrInvalidCollectionRequest)
	}
	if keyword == "" {
		return nil, nil, fmt.Errorf("%w: keywordは必須です", model.ErrInvalidCollectionRequest)
	}

	region, err := u.regions.GetByName(ctx, regionName)
	if err != nil {
		return nil, nil, fmt.Errorf("地域の取得に失敗: %w", err)
	}
	if len(region.Polygons) == 0 {
		return nil, nil, fmt.Errorf("%w: 地域 %s にポリゴンがありません", model.ErrInvalidCollectionRequest, regionName)
	}

	run := &model.CollectionRun{
		ID:         u.newID(),
		RegionName: regionName,
		Keyword:    keyword,
		Status:     model.CollectionStatusRunning,
		StartedAt:  u.now(),
	}
	if err := u.runs.Save(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("収集実行の記録に失敗: %w", err)
	}
	metrics.CollectionRunsTotal.WithLabelValues(string(model.CollectionStatusRunning)).Inc()

	return run, region, nil
}

func (u *collectionUseCaseImpl) execute(ctx context.Context, run *model.CollectionRun, region *model.RegionArea) {
	log := u.logger.With(
		logger.String("run_id", run.ID),
		logger.String("region", run.RegionName),
		logger.String("keyword", run.Keyword))
	log.Info("🚀 収集開始", logger.Int("polygons", len(region.Polygons)))

	stats, err := u.collector.Collect(ctx, region, run.Keyword)
	run.Stats = stats
	run.Finish(err, u.now())

	if err != nil {
		log.Error("❌ 収集が中断されました", logger.Error(err))
	} else {
		log.Info("✅ 収集完了",
			logger.Int("places_saved", stats.PlacesSaved),
			logger.Int("search_calls", stats.SearchCalls),
			logger.Int("cells_failed", stats.CellsFailed))
	}
	metrics.CollectionRunsTotal.WithLabelValues(string(run.Status)).Inc()

	if saveErr := u.runs.Save(ctx, run); saveErr != nil {
		log.Error("❌ 収集結果の保存に失敗", logger.Error(saveErr))
	}

	u.mu.RLock()
	callbacks := append([]CompletionCallback(nil), u.callbacks...)
	u.mu.RUnlock()
	for _, cb := range callbacks {
		u.invoke(ctx, log, cb, run)
	}
}

func (u *collectionUseCaseImpl) invoke(ctx context.Context, log logger.Logger, cb CompletionCallback, run *model.CollectionRun) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("❌ 完了コールバックで異常終了", logger.Any("panic", r))
		}
	}()
	snapshot := *run
	cb(ctx, &snapshot)
}
