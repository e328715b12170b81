package service

import (
	"context"
	"fmt"
	"time"

	"POI-Collector/internal/domain/helper"
	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/metrics"
)

// ScanTarget 1回のスキャン対象
type ScanTarget struct {
	// Polygon 今回グリッドを敷くポリゴン（深さ0では地域ポリゴン、以降はセルの正方形）
	Polygon model.Polygon
	// Boundary 地域の元ポリゴン。検索結果はこの内側のものだけ保存する
	Boundary model.Polygon
}

// ScanRequest セルスキャナへのリクエスト
type ScanRequest struct {
	RegionName   string
	Keyword      string
	Target       ScanTarget
	RadiusMeters int
	Depth        int
	// Force 最大深さでの強制収集。密集判定をせず全セルをページングして保存する
	Force bool
}

// ScanResult 1ポリゴン分のスキャン結果
type ScanResult struct {
	// SubTargets 半分の半径で再スキャンが必要なセル
	SubTargets []ScanTarget
	Stats      model.ScanStats
}

// ScanOptions 密集判定とページングの設定
type ScanOptions struct {
	DensityThreshold int
	MaxPages         int
}

// DefaultScanOptions 閾値45件、最大45ページ
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		DensityThreshold: model.DefaultDensityThreshold,
		MaxPages:         model.DefaultMaxPages,
	}
}

// CellScanner は1つのポリゴンを1つの半径でスキャンする
type CellScanner interface {
	// Scan は候補セルごとに台帳を確認し、未処理なら検索・保存して再分割が必要なセルを返す
	// 個々のセルの失敗はログに残して続行し、エラーを返すのはコンテキストが終了した場合のみ
	// 保存対象の判定には req.Target.Boundary（地域の元ポリゴン）を使うため、深い階層では
	// req.Target.Polygon（セルの正方形）の外側でも地域内のスポットは保存される
	Scan(ctx context.Context, req ScanRequest) (*ScanResult, error)
}

type cellScanner struct {
	ledger   repository.ScanRecordsRepository
	places   repository.PlacesRepository
	searcher repository.PlaceSearchRepository
	opts     ScanOptions
	logger   logger.Logger
}

// NewCellScanner は新しいCellScannerを作成
func NewCellScanner(
	ledger repository.ScanRecordsRepository,
	places repository.PlacesRepository,
	searcher repository.PlaceSearchRepository,
	opts ScanOptions,
	log logger.Logger,
) CellScanner {
	if opts.DensityThreshold <= 0 {
		opts.DensityThreshold = model.DefaultDensityThreshold
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = model.DefaultMaxPages
	}
	return &cellScanner{
		ledger:   ledger,
		places:   places,
		searcher: searcher,
		opts:     opts,
		logger:   log,
	}
}

func (s *cellScanner) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if len(req.Target.Boundary) == 0 {
		req.Target.Boundary = req.Target.Polygon
	}

	result := &ScanResult{}
	centers := helper.GenerateGrid(helper.BoundingBox(req.Target.Polygon), req.RadiusMeters)

	for _, center := range centers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !helper.PointInPolygon(center.Lat, center.Lng, req.Target.Polygon) {
			continue
		}

		cell := model.GridCell{Center: center, RadiusMeters: req.RadiusMeters, Depth: req.Depth}
		sub, err := s.scanCell(ctx, req, cell, &result.Stats)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.Stats.CellsFailed++
			metrics.CellsTotal.WithLabelValues("failed").Inc()
			s.logger.Warn("⚠️ セルのスキャンに失敗、スキップします",
				logger.String("region", req.RegionName),
				logger.String("keyword", req.Keyword),
				logger.Float64("lat", center.Lat),
				logger.Float64("lng", center.Lng),
				logger.Int("radius", req.RadiusMeters),
				logger.Error(err))
			continue
		}
		if sub != nil {
			result.SubTargets = append(result.SubTargets, *sub)
		}
	}

	return result, nil
}

// scanCell は1セルを処理し、再分割が必要ならそのセルの正方形を返す
func (s *cellScanner) scanCell(ctx context.Context, req ScanRequest, cell model.GridCell, stats *model.ScanStats) (*ScanTarget, error) {
	key := model.NewScanKey(req.RegionName, req.Keyword, cell.Center, cell.RadiusMeters)
	existing, err := s.ledger.Find(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("台帳の参照に失敗: %w", err)
	}

	subTarget := &ScanTarget{
		Polygon:  helper.CellPolygon(cell.Center, cell.RadiusMeters),
		Boundary: req.Target.Boundary,
	}

	if existing != nil {
		switch existing.Status {
		case model.ScanStatusCompleted:
			stats.CellsSkipped++
			metrics.CellsTotal.WithLabelValues("skipped").Inc()
			return nil, nil
		case model.ScanStatusSubdivided:
			if !req.Force {
				// 前回の実行で分割済み。APIを呼ばずに次の深さから再開する
				stats.CellsSkipped++
				metrics.CellsTotal.WithLabelValues("skipped").Inc()
				return subTarget, nil
			}
		}
	}

	stats.CellsScanned++
	first, err := s.search(ctx, req, cell, 1, stats)
	if err != nil {
		return nil, err
	}

	if !req.Force && first.TotalCount > s.opts.DensityThreshold {
		if err := s.ledger.Create(ctx, &model.ScanRecord{ScanKey: key, Status: model.ScanStatusSubdivided}); err != nil {
			return nil, fmt.Errorf("台帳への分割記録に失敗: %w", err)
		}
		stats.CellsSubdivided++
		metrics.CellsTotal.WithLabelValues("subdivided").Inc()
		s.logger.Debug("🔎 密集セルを分割",
			logger.String("region", req.RegionName),
			logger.Float64("lat", cell.Center.Lat),
			logger.Float64("lng", cell.Center.Lng),
			logger.Int("radius", cell.RadiusMeters),
			logger.Int("total_count", first.TotalCount))
		return subTarget, nil
	}

	saved, err := s.collectPages(ctx, req, cell, first, stats)
	if err != nil {
		return nil, err
	}

	// 強制収集で既に分割済みのキーは上書きしない
	if existing == nil {
		if err := s.ledger.Create(ctx, &model.ScanRecord{ScanKey: key, Status: model.ScanStatusCompleted}); err != nil {
			return nil, fmt.Errorf("台帳への完了記録に失敗: %w", err)
		}
	}
	stats.CellsCompleted++
	metrics.CellsTotal.WithLabelValues("completed").Inc()
	if req.Force {
		stats.ForceCollected++
		metrics.CellsTotal.WithLabelValues("forced").Inc()
	}

	s.logger.Debug("✅ セルの収集完了",
		logger.String("region", req.RegionName),
		logger.Float64("lat", cell.Center.Lat),
		logger.Float64("lng", cell.Center.Lng),
		logger.Int("radius", cell.RadiusMeters),
		logger.Int("saved", saved))
	return nil, nil
}

// collectPages は取得済みの1ページ目から最終ページ（またはページ上限）まで順に保存する
func (s *cellScanner) collectPages(ctx context.Context, req ScanRequest, cell model.GridCell, first *model.SearchPage, stats *model.ScanStats) (int, error) {
	saved := 0
	page := first
	for pageNum := 1; ; pageNum++ {
		n, err := s.persist(ctx, req, page.Items)
		if err != nil {
			return saved, fmt.Errorf("%dページ目の保存に失敗: %w", pageNum, err)
		}
		saved += n
		stats.PlacesSaved += n

		if page.IsLastPage || pageNum >= s.opts.MaxPages {
			return saved, nil
		}

		page, err = s.search(ctx, req, cell, pageNum+1, stats)
		if err != nil {
			return saved, err
		}
	}
}

// persist はポリゴン外の結果を除外して保存する
func (s *cellScanner) persist(ctx context.Context, req ScanRequest, items []model.DiscoveredPlace) (int, error) {
	inside := helper.DedupPlacesByID(helper.FilterPlacesInPolygon(items, req.Target.Boundary))
	if len(inside) == 0 {
		return 0, nil
	}

	now := time.Now()
	for i := range inside {
		inside[i].RegionName = req.RegionName
		inside[i].Keyword = req.Keyword
		inside[i].CollectedAt = now
	}

	n, err := s.places.SaveAll(ctx, inside)
	if err != nil {
		return 0, err
	}
	metrics.PlacesSavedTotal.Add(float64(n))
	return n, nil
}

func (s *cellScanner) search(ctx context.Context, req ScanRequest, cell model.GridCell, page int, stats *model.ScanStats) (*model.SearchPage, error) {
	stats.SearchCalls++
	result, err := s.searcher.Search(ctx, model.SearchRequest{
		Keyword:      req.Keyword,
		Lng:          cell.Center.Lng,
		Lat:          cell.Center.Lat,
		RadiusMeters: cell.RadiusMeters,
		Page:         page,
	})
	if err != nil {
		return nil, fmt.Errorf("検索(%dページ目)に失敗: %w", page, err)
	}
	return result, nil
}
