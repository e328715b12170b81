package model

import "math"

// ScanStatus グリッドセルのスキャン結果
type ScanStatus string

const (
	// ScanStatusCompleted セル内の全ページを収集済み
	ScanStatusCompleted ScanStatus = "COMPLETED"
	// ScanStatusSubdivided 結果が多すぎるため半径を半分にして再スキャン対象
	ScanStatusSubdivided ScanStatus = "SUBDIVIDED"
)

// IsValid 既知のステータスかどうか
func (s ScanStatus) IsValid() bool {
	return s == ScanStatusCompleted || s == ScanStatusSubdivided
}

// CellCenter グリッドセルの中心座標
type CellCenter struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GridCell スキャン中に生成される一時的なセル（永続化はしない）
type GridCell struct {
	Center       CellCenter `json:"center"`
	RadiusMeters int        `json:"radius_meters"`
	Depth        int        `json:"depth"`
}

// ScanKey スキャン台帳の一意キー
type ScanKey struct {
	RegionName   string  `json:"region_name" db:"region_name"`
	Keyword      string  `json:"keyword" db:"keyword"`
	CenterLat    float64 `json:"center_lat" db:"center_lat"`
	CenterLng    float64 `json:"center_lng" db:"center_lng"`
	RadiusMeters int     `json:"radius_meters" db:"radius_meters"`
}

// coordinatePrecision 台帳キーの座標を丸める桁数（1e-7度 ≒ 1cm）
const coordinatePrecision = 1e7

// NewScanKey 座標を丸めた台帳キーを作成
// ドライバ間の浮動小数点表現の差でキーが分裂しないよう、検索・書き込みの両方で必ずこれを使う
func NewScanKey(regionName, keyword string, center CellCenter, radiusMeters int) ScanKey {
	return ScanKey{
		RegionName:   regionName,
		Keyword:      keyword,
		CenterLat:    roundCoordinate(center.Lat),
		CenterLng:    roundCoordinate(center.Lng),
		RadiusMeters: radiusMeters,
	}
}

func roundCoordinate(v float64) float64 {
	return math.Round(v*coordinatePrecision) / coordinatePrecision
}

// ScanRecord スキャン台帳の1レコード（追記のみ、上書きしない）
type ScanRecord struct {
	ScanKey
	Status ScanStatus `json:"status" db:"status"`
}
