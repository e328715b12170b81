package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/metrics"
)

// CollectorOptions 深さごとのスキャン設定
type CollectorOptions struct {
	InitialRadiusMeters int
	MaxDepth            int
	// Workers 同時に実行するセルスキャンの数
	Workers int
}

// DefaultCollectorOptions 半径512m・最大深さ7・CPU数のワーカー
func DefaultCollectorOptions() CollectorOptions {
	return CollectorOptions{
		InitialRadiusMeters: model.DefaultInitialRadiusMeters,
		MaxDepth:            model.DefaultMaxDepth,
		Workers:             runtime.NumCPU(),
	}
}

// RegionCollector は地域・キーワード単位で深さごとの再帰スキャンを行う
type RegionCollector interface {
	Collect(ctx context.Context, region *model.RegionArea, keyword string) (model.ScanStats, error)
}

type regionCollector struct {
	scanner CellScanner
	opts    CollectorOptions
	logger  logger.Logger
}

// NewRegionCollector は新しいRegionCollectorを作成
func NewRegionCollector(scanner CellScanner, opts CollectorOptions, log logger.Logger) RegionCollector {
	d := DefaultCollectorOptions()
	if opts.InitialRadiusMeters <= 0 {
		opts.InitialRadiusMeters = d.InitialRadiusMeters
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = d.MaxDepth
	}
	if opts.Workers <= 0 {
		opts.Workers = d.Workers
	}
	return &regionCollector{
		scanner: scanner,
		opts:    opts,
		logger:  log,
	}
}

// Collect は深さ0の地域ポリゴンから開始し、密集セルがなくなるか最大深さに達するまで
// 半径を半分にしながらスキャンを繰り返す。最大深さで残ったセルは分割せずに強制収集する
func (c *regionCollector) Collect(ctx context.Context, region *model.RegionArea, keyword string) (model.ScanStats, error) {
	var stats model.ScanStats
	log := c.logger.With(logger.String("region", region.Name), logger.String("keyword", keyword))

	level := make([]ScanTarget, 0, len(region.Polygons))
	for _, polygon := range region.Polygons {
		if len(polygon) == 0 {
			continue
		}
		level = append(level, ScanTarget{Polygon: polygon, Boundary: polygon})
	}

	radius := c.opts.InitialRadiusMeters
	depth := 0
	start := time.Now()

	for len(level) > 0 && depth < c.opts.MaxDepth {
		log.Info("🚀 深さのスキャン開始",
			logger.Int("depth", depth),
			logger.Int("radius", radius),
			logger.Int("polygons", len(level)))

		next, levelStats, err := c.runLevel(ctx, region.Name, keyword, level, radius, depth, false)
		stats.Add(levelStats)
		stats.Levels++
		if err != nil {
			return stats, fmt.Errorf("深さ%d(半径%dm)のスキャンが中断されました: %w", depth, radius, err)
		}

		log.Info("✅ 深さのスキャン完了",
			logger.Int("depth", depth),
			logger.Int("subdivided", len(next)),
			logger.Int("places_saved", levelStats.PlacesSaved))

		level = next
		radius = halveRadius(radius)
		depth++
	}

	if len(level) > 0 {
		log.Warn("⚠️ 最大深さに到達、残りのセルを強制収集します",
			logger.Int("depth", depth),
			logger.Int("radius", radius),
			logger.Int("polygons", len(level)))

		_, forceStats, err := c.runLevel(ctx, region.Name, keyword, level, radius, depth, true)
		stats.Add(forceStats)
		if err != nil {
			return stats, fmt.Errorf("強制収集が中断されました: %w", err)
		}
	}

	log.Info("🎉 地域の収集完了",
		logger.Duration("elapsed", time.Since(start)),
		logger.Int("levels", stats.Levels),
		logger.Int("places_saved", stats.PlacesSaved),
		logger.Int("search_calls", stats.SearchCalls),
		logger.Int("cells_failed", stats.CellsFailed))
	return stats, nil
}

// runLevel は同じ深さの全ポリゴンをワーカープールで並行スキャンし、全完了を待ってから結果を合流する
func (c *regionCollector) runLevel(
	ctx context.Context,
	regionName, keyword string,
	level []ScanTarget,
	radius, depth int,
	force bool,
) ([]ScanTarget, model.ScanStats, error) {
	results := make([]*ScanResult, len(level))

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for i, target := range level {
		i, target := i, target
		g.Go(func() error {
			res, err := c.scanTask(ctx, ScanRequest{
				RegionName:   regionName,
				Keyword:      keyword,
				Target:       target,
				RadiusMeters: radius,
				Depth:        depth,
				Force:        force,
			})
			results[i] = res
			return err
		})
	}
	err := g.Wait()

	var next []ScanTarget
	var stats model.ScanStats
	for _, res := range results {
		if res == nil {
			continue
		}
		next = append(next, res.SubTargets...)
		stats.Add(res.Stats)
	}
	return next, stats, err
}

// scanTask はスキャナのパニックを1タスクの失敗として扱い、同じ深さの他タスクを止めない
func (c *regionCollector) scanTask(ctx context.Context, req ScanRequest) (res *ScanResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CellsTotal.WithLabelValues("failed").Inc()
			c.logger.Error("❌ スキャンタスクで異常終了",
				logger.String("region", req.RegionName),
				logger.Int("depth", req.Depth),
				logger.Any("panic", r))
			res = &ScanResult{Stats: model.ScanStats{CellsFailed: 1}}
			err = nil
		}
	}()
	return c.scanner.Scan(ctx, req)
}

func halveRadius(radius int) int {
	if radius <= 1 {
		return 1
	}
	return radius / 2
}
