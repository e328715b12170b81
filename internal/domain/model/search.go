package model

// SearchRequest キーワード検索1回分のリクエスト
type SearchRequest struct {
	Keyword      string  `json:"keyword"`
	Lng          float64 `json:"lng"`
	Lat          float64 `json:"lat"`
	RadiusMeters int     `json:"radius_meters"`
	Page         int     `json:"page"`
}

// SearchPage キーワード検索1ページ分の結果
type SearchPage struct {
	Items      []DiscoveredPlace `json:"items"`
	TotalCount int               `json:"total_count"`
	IsLastPage bool              `json:"is_last_page"`
}
