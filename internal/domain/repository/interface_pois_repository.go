package repository

import (
	"context"

	"POI-Collector/internal/domain/model"
)

// PlacesRepository 発見したスポットの保存先
type PlacesRepository interface {
	// SaveAll スポットを一括保存し、新規に保存できた件数を返す
	// 既存のスポットIDとの重複はエラーにしない
	SaveAll(ctx context.Context, places []model.DiscoveredPlace) (int, error)
}
