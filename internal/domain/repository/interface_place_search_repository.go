package repository

import (
	"context"

	"POI-Collector/internal/domain/model"
)

// PlaceSearchRepository 外部キーワード検索APIの境界
// レート制限時は model.ErrRateLimited をラップしたエラーを返す
type PlaceSearchRepository interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchPage, error)
}
