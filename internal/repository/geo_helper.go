package repository

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"POI-Collector/internal/domain/model"
)

// RegionRow regionsテーブルの1行。geometryはGeoJSONのPolygonまたはMultiPolygon
type RegionRow struct {
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry"`
}

// ToRegionArea GeoJSONのジオメトリを外周リングの一覧に変換する
// 穴（内周リング）はスキャン対象の判定に使わないため捨てる
func (row *RegionRow) ToRegionArea() (*model.RegionArea, error) {
	if len(row.Geometry) == 0 || string(row.Geometry) == "null" {
		return nil, fmt.Errorf("地域 %s のジオメトリが空です", row.Name)
	}

	g, err := geojson.UnmarshalGeometry(row.Geometry)
	if err != nil {
		return nil, fmt.Errorf("地域 %s のGeoJSONパースエラー: %w", row.Name, err)
	}

	polygons, err := outerRings(g.Geometry())
	if err != nil {
		return nil, fmt.Errorf("地域 %s: %w", row.Name, err)
	}

	return &model.RegionArea{Name: row.Name, Polygons: polygons}, nil
}

func outerRings(g orb.Geometry) ([]model.Polygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return nil, fmt.Errorf("ポリゴンにリングがありません")
		}
		return []model.Polygon{closeRing(geom[0])}, nil
	case orb.MultiPolygon:
		var rings []model.Polygon
		for _, p := range geom {
			if len(p) == 0 {
				continue
			}
			rings = append(rings, closeRing(p[0]))
		}
		if len(rings) == 0 {
			return nil, fmt.Errorf("マルチポリゴンにリングがありません")
		}
		return rings, nil
	default:
		return nil, fmt.Errorf("未対応のジオメトリ型: %s", g.GeoJSONType())
	}
}

// closeRing 始点と終点が一致しないリングを閉じる
func closeRing(r orb.Ring) model.Polygon {
	if len(r) > 0 && !r.Closed() {
		r = append(r, r[0])
	}
	return r
}
