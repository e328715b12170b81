package helper

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"POI-Collector/internal/domain/model"
)

// BoundingBox ポリゴンの外接矩形を計算する
// 頂点のないポリゴンは全て0の矩形を返す
func BoundingBox(polygon model.Polygon) model.BoundingBox {
	if len(polygon) == 0 {
		return model.BoundingBox{}
	}

	bound := polygon.Bound()
	return model.BoundingBox{
		LatMin: bound.Min.Lat(),
		LatMax: bound.Max.Lat(),
		LngMin: bound.Min.Lon(),
		LngMax: bound.Max.Lon(),
	}
}

// PointInPolygon 点がポリゴン内にあるかを判定する（レイキャスティング、偶奇規則）
// 境界線上の点は内側として扱う
func PointInPolygon(lat, lng float64, polygon model.Polygon) bool {
	if len(polygon) < 1 {
		return false
	}
	return planar.RingContains(polygon, orb.Point{lng, lat})
}

// GenerateGrid 外接矩形を半径radiusMetersのセルで敷き詰め、各セルの中心座標を返す
//
// 緯度方向のステップは 2*radius/111000 度、経度方向は同じ値を中央緯度のcosで割る。
// 中心はグリッド交点ではなく start+step/2 のセル中央に置く。
// 平面近似のため極付近では精度が落ちる（都市規模では許容範囲）。
func GenerateGrid(box model.BoundingBox, radiusMeters int) []model.CellCenter {
	if radiusMeters <= 0 {
		return nil
	}

	latStep := 2 * float64(radiusMeters) / model.MetersPerDegree
	midLat := (box.LatMin + box.LatMax) / 2
	lngStep := latStep / math.Cos(midLat*math.Pi/180)

	lats := axisCenters(box.LatMin, box.LatMax, latStep)
	lngs := axisCenters(box.LngMin, box.LngMax, lngStep)

	centers := make([]model.CellCenter, 0, len(lats)*len(lngs))
	for _, lat := range lats {
		for _, lng := range lngs {
			centers = append(centers, model.CellCenter{Lat: lat, Lng: lng})
		}
	}
	return centers
}

// axisCenters start から step ごとのセル中央座標を列挙する
// 範囲がステップの半分より狭い場合は範囲の中点を1つだけ返す
func axisCenters(start, end, step float64) []float64 {
	var centers []float64
	for i := 0; ; i++ {
		v := start + step*(float64(i)+0.5)
		if v >= end {
			break
		}
		centers = append(centers, v)
	}
	if len(centers) == 0 {
		centers = append(centers, (start+end)/2)
	}
	return centers
}

// CellPolygon セル中心を中心とする一辺 2*radius の正方形ポリゴンを返す
func CellPolygon(center model.CellCenter, radiusMeters int) model.Polygon {
	halfLat := float64(radiusMeters) / model.MetersPerDegree
	halfLng := halfLat / math.Cos(center.Lat*math.Pi/180)

	bound := orb.Bound{
		Min: orb.Point{center.Lng - halfLng, center.Lat - halfLat},
		Max: orb.Point{center.Lng + halfLng, center.Lat + halfLat},
	}
	return bound.ToRing()
}
