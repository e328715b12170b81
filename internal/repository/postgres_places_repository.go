package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/infrastructure/database"
	"POI-Collector/internal/infrastructure/logger"
)

// placesChunkSize 1回のINSERTで送る行数
const placesChunkSize = 100

// uniqueViolation PostgreSQLの一意制約違反コード
const uniqueViolation = "23505"

const placesColumns = 13

// PostgresPlacesRepository discovered_placesテーブルへの保存
type PostgresPlacesRepository struct {
	client *database.PostgreSQLClient
	logger logger.Logger
}

func NewPostgresPlacesRepository(client *database.PostgreSQLClient, log logger.Logger) repository.PlacesRepository {
	return &PostgresPlacesRepository{
		client: client,
		logger: log,
	}
}

// SaveAll チャンク単位で一括INSERTする。既存のplace_idはON CONFLICTで読み飛ばす
// 一意制約以外の理由で失敗したチャンクはログに残して次に進む。全チャンクが失敗した場合のみエラーを返す
func (r *PostgresPlacesRepository) SaveAll(ctx context.Context, places []model.DiscoveredPlace) (int, error) {
	if len(places) == 0 {
		return 0, nil
	}

	saved := 0
	failed := 0
	var lastErr error
	for start := 0; start < len(places); start += placesChunkSize {
		end := min(start+placesChunkSize, len(places))
		n, err := r.insertChunk(ctx, places[start:end])
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return saved, ctxErr
			}
			failed++
			lastErr = err
			r.logger.Error("❌ スポットの保存に失敗、チャンクを破棄します",
				logger.Int("chunk_start", start),
				logger.Int("chunk_size", end-start),
				logger.Error(err))
			continue
		}
		saved += n
	}

	chunks := (len(places) + placesChunkSize - 1) / placesChunkSize
	if failed == chunks {
		return 0, fmt.Errorf("スポットの保存失敗: %w", lastErr)
	}
	return saved, nil
}

func (r *PostgresPlacesRepository) insertChunk(ctx context.Context, chunk []model.DiscoveredPlace) (int, error) {
	query, args := buildPlacesInsert(chunk)
	result, err := r.client.DB.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// place_id以外の一意制約に当たった場合でも重複としてスキップする
			return 0, nil
		}
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("保存件数の取得失敗: %w", err)
	}
	return int(n), nil
}

func buildPlacesInsert(chunk []model.DiscoveredPlace) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO discovered_places (place_id, name, category, category_code, phone, address_name, road_address_name, place_url, latitude, longitude, region_name, keyword, collected_at) VALUES `)

	args := make([]any, 0, len(chunk)*placesColumns)
	for i, p := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 0; c < placesColumns; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*placesColumns+c+1)
		}
		sb.WriteString(")")
		args = append(args,
			p.PlaceID, p.Name, p.Category, p.CategoryCode, p.Phone,
			p.AddressName, p.RoadAddressName, p.PlaceURL,
			p.Latitude, p.Longitude, p.RegionName, p.Keyword, p.CollectedAt,
		)
	}
	sb.WriteString(" ON CONFLICT (place_id) DO NOTHING")
	return sb.String(), args
}
