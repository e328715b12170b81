package helper

import "POI-Collector/internal/domain/model"

// FilterPlacesInPolygon ポリゴン内にあるスポットのみを抽出する
// 円形の検索半径はセルの正方形からはみ出すため、保存前に必ず元のポリゴンで再判定する
func FilterPlacesInPolygon(places []model.DiscoveredPlace, polygon model.Polygon) []model.DiscoveredPlace {
	filtered := make([]model.DiscoveredPlace, 0, len(places))
	for _, p := range places {
		if PointInPolygon(p.Latitude, p.Longitude, polygon) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// DedupPlacesByID 同一バッチ内の重複スポットIDを除外する（先勝ち）
func DedupPlacesByID(places []model.DiscoveredPlace) []model.DiscoveredPlace {
	seen := make(map[string]struct{}, len(places))
	deduped := make([]model.DiscoveredPlace, 0, len(places))
	for _, p := range places {
		if _, ok := seen[p.PlaceID]; ok {
			continue
		}
		seen[p.PlaceID] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped
}
