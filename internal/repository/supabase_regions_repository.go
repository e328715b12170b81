package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/infrastructure/supabase"
)

const regionsTable = "regions"

type SupabaseRegionsRepository struct {
	client *supabase.SupabaseClient
}

func NewSupabaseRegionsRepository(client *supabase.SupabaseClient) repository.RegionsRepository {
	return &SupabaseRegionsRepository{
		client: client,
	}
}

// GetByName 地域名で1件取得する。該当行がなければ model.ErrRegionNotFound
func (r *SupabaseRegionsRepository) GetByName(ctx context.Context, name string) (*model.RegionArea, error) {
	data, _, err := r.client.GetClient().From(regionsTable).Select("name,geometry", "", false).Eq("name", name).Execute()
	if err != nil {
		return nil, fmt.Errorf("地域データの取得失敗: %w", err)
	}
	return firstRegion(name, data)
}

func (r *SupabaseRegionsRepository) GetAll(ctx context.Context) ([]model.RegionArea, error) {
	data, _, err := r.client.GetClient().From(regionsTable).Select("name,geometry", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("地域一覧の取得失敗: %w", err)
	}
	return decodeRegions(data)
}

func firstRegion(name string, data []byte) (*model.RegionArea, error) {
	regions, err := decodeRegions(data)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrRegionNotFound, name)
	}
	return &regions[0], nil
}

// decodeRegions PostgRESTのJSON配列を地域の一覧に変換する
func decodeRegions(data []byte) ([]model.RegionArea, error) {
	var rows []RegionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("地域データのJSONアンマーシャル失敗: %w", err)
	}

	regions := make([]model.RegionArea, 0, len(rows))
	for i := range rows {
		region, err := rows[i].ToRegionArea()
		if err != nil {
			return nil, err
		}
		regions = append(regions, *region)
	}
	return regions, nil
}
