package repository

import (
	"context"

	"POI-Collector/internal/domain/model"
)

// RegionsRepository 収集対象地域の取得元
type RegionsRepository interface {
	// GetByName 地域名で取得する。存在しない場合は model.ErrRegionNotFound
	GetByName(ctx context.Context, name string) (*model.RegionArea, error)
	GetAll(ctx context.Context) ([]model.RegionArea, error)
}
