package repository

import (
	"context"
	"fmt"
	"sync"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
)

// MemoryCollectionRunsRepository Firestoreを使わない場合のプロセス内の記録
type MemoryCollectionRunsRepository struct {
	mu   sync.RWMutex
	runs map[string]model.CollectionRun
}

func NewMemoryCollectionRunsRepository() repository.CollectionRunsRepository {
	return &MemoryCollectionRunsRepository{runs: map[string]model.CollectionRun{}}
}

func (r *MemoryCollectionRunsRepository) Save(_ context.Context, run *model.CollectionRun) error {
	if run.ID == "" {
		return fmt.Errorf("収集実行IDが空です")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *MemoryCollectionRunsRepository) Get(_ context.Context, id string) (*model.CollectionRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrCollectionRunNotFound, id)
	}
	return &run, nil
}
