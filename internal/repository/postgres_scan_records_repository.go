package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/infrastructure/database"
)

// PostgresScanRecordsRepository scan_recordsテーブルによるスキャン台帳
type PostgresScanRecordsRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresScanRecordsRepository(client *database.PostgreSQLClient) repository.ScanRecordsRepository {
	return &PostgresScanRecordsRepository{
		client: client,
	}
}

func (r *PostgresScanRecordsRepository) Find(ctx context.Context, key model.ScanKey) (*model.ScanRecord, error) {
	query := `SELECT status FROM scan_records
		WHERE region_name = $1 AND keyword = $2 AND center_lat = $3 AND center_lng = $4 AND radius_meters = $5`

	var status string
	err := r.client.DB.QueryRowContext(ctx, query,
		key.RegionName, key.Keyword, key.CenterLat, key.CenterLng, key.RadiusMeters,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("スキャン台帳の取得失敗: %w", err)
	}

	record := &model.ScanRecord{ScanKey: key, Status: model.ScanStatus(status)}
	if !record.Status.IsValid() {
		return nil, fmt.Errorf("スキャン台帳に不明なステータス: %q", status)
	}
	return record, nil
}

// Create 同じキーが既にあれば何もしない
func (r *PostgresScanRecordsRepository) Create(ctx context.Context, record *model.ScanRecord) error {
	if !record.Status.IsValid() {
		return fmt.Errorf("不明なステータスは記録できません: %q", record.Status)
	}

	query := `INSERT INTO scan_records (region_name, keyword, center_lat, center_lng, radius_meters, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (region_name, keyword, center_lat, center_lng, radius_meters) DO NOTHING`

	_, err := r.client.DB.ExecContext(ctx, query,
		record.RegionName, record.Keyword, record.CenterLat, record.CenterLng, record.RadiusMeters, string(record.Status),
	)
	if err != nil {
		return fmt.Errorf("スキャン台帳の記録失敗: %w", err)
	}
	return nil
}
