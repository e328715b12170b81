package model

// 収集エンジンのデフォルト値
const (
	// DefaultInitialRadiusMeters レベル0の検索半径
	DefaultInitialRadiusMeters = 512
	// DefaultMaxDepth 再分割の最大深さ
	DefaultMaxDepth = 7
	// DefaultDensityThreshold 1ページ目のtotalCountがこれを超えると密集セル
	DefaultDensityThreshold = 45
	// DefaultMaxPages 1セルあたりのページ取得上限
	DefaultMaxPages = 45
	// MetersPerDegree 緯度1度あたりのメートル数（平面近似）
	MetersPerDegree = 111000.0
)

// CollectionStatus 収集実行の状態
type CollectionStatus string

const (
	CollectionStatusRunning   CollectionStatus = "running"
	CollectionStatusCompleted CollectionStatus = "completed"
	CollectionStatusFailed    CollectionStatus = "failed"
)
