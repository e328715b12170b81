package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/infrastructure/database"
)

func newMockClient(t *testing.T) (*database.PostgreSQLClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &database.PostgreSQLClient{DB: db}, mock
}

var testScanKey = model.NewScanKey("gangnam", "cafe", model.CellCenter{Lat: 37.4979, Lng: 127.0276}, 512)

func TestPostgresScanRecordsRepository_Find(t *testing.T) {
	t.Run("存在する", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectQuery("SELECT status FROM scan_records").
			WithArgs("gangnam", "cafe", testScanKey.CenterLat, testScanKey.CenterLng, 512).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("SUBDIVIDED"))

		record, err := NewPostgresScanRecordsRepository(client).Find(context.Background(), testScanKey)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, model.ScanStatusSubdivided, record.Status)
		assert.Equal(t, testScanKey, record.ScanKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("存在しない", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectQuery("SELECT status FROM scan_records").WillReturnError(sql.ErrNoRows)

		record, err := NewPostgresScanRecordsRepository(client).Find(context.Background(), testScanKey)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("不明なステータス", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectQuery("SELECT status FROM scan_records").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PENDING"))

		_, err := NewPostgresScanRecordsRepository(client).Find(context.Background(), testScanKey)
		assert.Error(t, err)
	})

	t.Run("DBエラー", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectQuery("SELECT status FROM scan_records").WillReturnError(errors.New("connection reset"))

		_, err := NewPostgresScanRecordsRepository(client).Find(context.Background(), testScanKey)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestPostgresScanRecordsRepository_Create(t *testing.T) {
	t.Run("ON CONFLICT DO NOTHINGで追加", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectExec(`INSERT INTO scan_records .* ON CONFLICT \(region_name, keyword, center_lat, center_lng, radius_meters\) DO NOTHING`).
			WithArgs("gangnam", "cafe", testScanKey.CenterLat, testScanKey.CenterLng, 512, "COMPLETED").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgresScanRecordsRepository(client).Create(context.Background(),
			&model.ScanRecord{ScanKey: testScanKey, Status: model.ScanStatusCompleted})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("既存キーは0件でもエラーにしない", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectExec("INSERT INTO scan_records").WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresScanRecordsRepository(client).Create(context.Background(),
			&model.ScanRecord{ScanKey: testScanKey, Status: model.ScanStatusSubdivided})
		assert.NoError(t, err)
	})

	t.Run("不明なステータスは書き込まない", func(t *testing.T) {
		client, mock := newMockClient(t)

		err := NewPostgresScanRecordsRepository(client).Create(context.Background(),
			&model.ScanRecord{ScanKey: testScanKey, Status: "PENDING"})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
