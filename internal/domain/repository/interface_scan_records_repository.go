package repository

import (
	"context"

	"POI-Collector/internal/domain/model"
)

// ScanRecordsRepository スキャン台帳（セルごとの完了・分割状態）
type ScanRecordsRepository interface {
	// Find キーに一致するレコードを返す。存在しない場合は (nil, nil)
	Find(ctx context.Context, key model.ScanKey) (*model.ScanRecord, error)
	// Create レコードを追加する。同じキーが既に存在する場合は何もしない（上書きしない）
	Create(ctx context.Context, record *model.ScanRecord) error
}
