package model

import "github.com/paulmach/orb"

// Polygon 経度・緯度の頂点からなる閉じたリング
type Polygon = orb.Ring

// RegionArea 収集対象の地域（複数ポリゴンを持ちうる）
type RegionArea struct {
	Name     string    `json:"name"`
	Polygons []Polygon `json:"polygons"`
}

// BoundingBox ポリゴンの外接矩形
type BoundingBox struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LngMin float64 `json:"lng_min"`
	LngMax float64 `json:"lng_max"`
}
