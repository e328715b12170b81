package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POI-Collector/internal/domain/model"
)

func TestMemoryCollectionRunsRepository(t *testing.T) {
	repo := NewMemoryCollectionRunsRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrCollectionRunNotFound)

	assert.Error(t, repo.Save(ctx, &model.CollectionRun{}))

	run := &model.CollectionRun{ID: "run-1", RegionName: "gangnam", Keyword: "cafe", Status: model.CollectionStatusRunning}
	require.NoError(t, repo.Save(ctx, run))

	// 保存後の変更は記録に影響しない
	run.Status = model.CollectionStatusCompleted
	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.CollectionStatusRunning, got.Status)

	require.NoError(t, repo.Save(ctx, run))
	got, err = repo.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.CollectionStatusCompleted, got.Status)
}
