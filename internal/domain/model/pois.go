package model

import "time"

// DiscoveredPlace キーワード検索で発見したスポット（POI）を表すモデル
type DiscoveredPlace struct {
	PlaceID         string    `json:"place_id" db:"place_id"`                   // 外部APIのスポットID（ユニークキー）
	Name            string    `json:"name" db:"name"`                           // スポット名
	Category        string    `json:"category" db:"category"`                   // カテゴリ名
	CategoryCode    string    `json:"category_code" db:"category_code"`         // カテゴリグループコード
	Phone           string    `json:"phone" db:"phone"`                         // 電話番号
	AddressName     string    `json:"address_name" db:"address_name"`           // 地番住所
	RoadAddressName string    `json:"road_address_name" db:"road_address_name"` // 道路名住所
	PlaceURL        string    `json:"place_url" db:"place_url"`                 // 詳細ページURL
	Latitude        float64   `json:"latitude" db:"latitude"`
	Longitude       float64   `json:"longitude" db:"longitude"`
	RegionName      string    `json:"region_name" db:"region_name"` // 収集時の地域名
	Keyword         string    `json:"keyword" db:"keyword"`         // 収集時の検索キーワード
	CollectedAt     time.Time `json:"collected_at" db:"collected_at"`
}
