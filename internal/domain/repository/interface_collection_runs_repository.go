package repository

import (
	"context"

	"POI-Collector/internal/domain/model"
)

// CollectionRunsRepository 収集実行の記録
type CollectionRunsRepository interface {
	Save(ctx context.Context, run *model.CollectionRun) error
	// Get 存在しない場合は model.ErrCollectionRunNotFound
	Get(ctx context.Context, id string) (*model.CollectionRun, error)
}
