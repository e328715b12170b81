package model

import "time"

// CollectionRequest 地域・キーワード単位の収集リクエスト
type CollectionRequest struct {
	RegionName string `json:"region_name" binding:"required"`
	Keyword    string `json:"keyword" binding:"required"`
}

// ScanStats スキャン処理の集計値
type ScanStats struct {
	Levels          int `json:"levels" firestore:"levels"`
	CellsScanned    int `json:"cells_scanned" firestore:"cells_scanned"`
	CellsCompleted  int `json:"cells_completed" firestore:"cells_completed"`
	CellsSubdivided int `json:"cells_subdivided" firestore:"cells_subdivided"`
	CellsSkipped    int `json:"cells_skipped" firestore:"cells_skipped"` // 台帳により再スキャン不要だったセル
	CellsFailed     int `json:"cells_failed" firestore:"cells_failed"`
	PlacesSaved     int `json:"places_saved" firestore:"places_saved"`
	SearchCalls     int `json:"search_calls" firestore:"search_calls"`
	ForceCollected  int `json:"force_collected" firestore:"force_collected"` // 最大深さで強制収集したセル
}

// Add 別の集計値を加算する
func (s *ScanStats) Add(o ScanStats) {
	s.Levels += o.Levels
	s.CellsScanned += o.CellsScanned
	s.CellsCompleted += o.CellsCompleted
	s.CellsSubdivided += o.CellsSubdivided
	s.CellsSkipped += o.CellsSkipped
	s.CellsFailed += o.CellsFailed
	s.PlacesSaved += o.PlacesSaved
	s.SearchCalls += o.SearchCalls
	s.ForceCollected += o.ForceCollected
}

// CollectionRun 1回の収集実行の記録
type CollectionRun struct {
	ID         string           `json:"id" firestore:"-"`
	RegionName string           `json:"region_name" firestore:"region_name"`
	Keyword    string           `json:"keyword" firestore:"keyword"`
	Status     CollectionStatus `json:"status" firestore:"status"`
	Stats      ScanStats        `json:"stats" firestore:"stats"`
	Error      string           `json:"error,omitempty" firestore:"error"`
	StartedAt  time.Time        `json:"started_at" firestore:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty" firestore:"finished_at"`
}

// Finish 実行を終了状態にする
func (r *CollectionRun) Finish(err error, finishedAt time.Time) {
	r.FinishedAt = &finishedAt
	if err != nil {
		r.Status = CollectionStatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = CollectionStatusCompleted
}
