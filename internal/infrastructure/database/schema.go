package database

import (
	"context"
	"fmt"
)

// schemaStatements スキャン台帳と収集スポットのテーブル
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scan_records (
		id            BIGSERIAL PRIMARY KEY,
		region_name   TEXT             NOT NULL,
		keyword       TEXT             NOT NULL,
		center_lat    DOUBLE PRECISION NOT NULL,
		center_lng    DOUBLE PRECISION NOT NULL,
		radius_meters INTEGER          NOT NULL,
		status        TEXT             NOT NULL CHECK (status IN ('COMPLETED', 'SUBDIVIDED')),
		created_at    TIMESTAMPTZ      NOT NULL DEFAULT now(),
		UNIQUE (region_name, keyword, center_lat, center_lng, radius_meters)
	)`,
	`CREATE TABLE IF NOT EXISTS discovered_places (
		place_id          TEXT PRIMARY KEY,
		name              TEXT             NOT NULL,
		category          TEXT,
		category_code     TEXT,
		phone             TEXT,
		address_name      TEXT,
		road_address_name TEXT,
		place_url         TEXT,
		latitude          DOUBLE PRECISION NOT NULL,
		longitude         DOUBLE PRECISION NOT NULL,
		region_name       TEXT             NOT NULL,
		keyword           TEXT             NOT NULL,
		collected_at      TIMESTAMPTZ      NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_discovered_places_region_keyword
		ON discovered_places (region_name, keyword)`,
}

// EnsureSchema テーブルがなければ作成する
func (pc *PostgreSQLClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := pc.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("スキーマの作成に失敗: %w", err)
		}
	}
	return nil
}
