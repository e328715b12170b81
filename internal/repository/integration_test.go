package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/infrastructure/database"
	"POI-Collector/internal/infrastructure/firestore"
	"POI-Collector/internal/infrastructure/logger"
)

// 実DBを使うテスト。TEST_DATABASE_URLが未設定ならスキップする
func setupTestPostgres(t *testing.T) *database.PostgreSQLClient {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	client, err := database.NewPostgreSQLClientWithRetry(ctx, dsn, 3, time.Second, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.EnsureSchema(ctx))
	return client
}

func TestIntegration_PostgresScanRecords(t *testing.T) {
	client := setupTestPostgres(t)
	repo := NewPostgresScanRecordsRepository(client)
	ctx := context.Background()

	region := fmt.Sprintf("it-%d", time.Now().UnixNano())
	key := model.NewScanKey(region, "cafe", model.CellCenter{Lat: 37.49791234567, Lng: 127.02761234567}, 512)
	t.Cleanup(func() {
		_, _ = client.DB.ExecContext(ctx, `DELETE FROM scan_records WHERE region_name = $1`, region)
	})

	found, err := repo.Find(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repo.Create(ctx, &model.ScanRecord{ScanKey: key, Status: model.ScanStatusSubdivided}))
	// 同じキーへの2回目は上書きしない
	require.NoError(t, repo.Create(ctx, &model.ScanRecord{ScanKey: key, Status: model.ScanStatusCompleted}))

	found, err = repo.Find(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.ScanStatusSubdivided, found.Status)
}

func TestIntegration_PostgresPlaces(t *testing.T) {
	client := setupTestPostgres(t)
	repo := NewPostgresPlacesRepository(client, logger.NewNop())
	ctx := context.Background()

	region := fmt.Sprintf("it-%d", time.Now().UnixNano())
	places := testPlaces(3)
	for i := range places {
		places[i].PlaceID = fmt.Sprintf("%s-%d", region, i)
		places[i].RegionName = region
	}
	t.Cleanup(func() {
		_, _ = client.DB.ExecContext(ctx, `DELETE FROM discovered_places WHERE region_name = $1`, region)
	})

	n, err := repo.SaveAll(ctx, places)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.SaveAll(ctx, places)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// Firestoreエミュレータを使うテスト。FIRESTORE_EMULATOR_HOSTが未設定ならスキップする
func TestIntegration_FirestoreCollectionRuns(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	ctx := context.Background()
	client, err := firestore.NewFirestoreClient(ctx, "poi-collector-test", logger.NewNop())
	require.NoError(t, err)
	defer client.Close()

	repo := NewFirestoreCollectionRunsRepository(client.GetClient(), logger.NewNop())

	_, err = repo.Get(ctx, "missing-run")
	assert.ErrorIs(t, err, model.ErrCollectionRunNotFound)

	run := &model.CollectionRun{
		ID:         fmt.Sprintf("run-%d", time.Now().UnixNano()),
		RegionName: "gangnam",
		Keyword:    "cafe",
		Status:     model.CollectionStatusRunning,
		StartedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Save(ctx, run))

	run.Stats = model.ScanStats{Levels: 3, PlacesSaved: 120}
	run.Finish(nil, time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, repo.Save(ctx, run))

	got, err := repo.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.CollectionStatusCompleted, got.Status)
	assert.Equal(t, 120, got.Stats.PlacesSaved)
	require.NotNil(t, got.FinishedAt)
}
