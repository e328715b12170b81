package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/domain/repository"
	"POI-Collector/internal/infrastructure/logger"
)

const collectionRunsCollection = "collectionRuns"

// FirestoreCollectionRunsRepository Firestoreを使用した収集実行の記録
type FirestoreCollectionRunsRepository struct {
	client *firestore.Client
	logger logger.Logger
}

// NewFirestoreCollectionRunsRepository 新しいFirestoreCollectionRunsRepositoryインスタンスを作成
func NewFirestoreCollectionRunsRepository(client *firestore.Client, log logger.Logger) repository.CollectionRunsRepository {
	return &FirestoreCollectionRunsRepository{
		client: client,
		logger: log,
	}
}

// Save は実行IDをドキュメントIDとして上書き保存する
func (r *FirestoreCollectionRunsRepository) Save(ctx context.Context, run *model.CollectionRun) error {
	if run.ID == "" {
		return fmt.Errorf("収集実行IDが空です")
	}

	if _, err := r.client.Collection(collectionRunsCollection).Doc(run.ID).Set(ctx, run); err != nil {
		r.logger.Error("❌ Failed to save collection run", logger.String("run_id", run.ID), logger.Error(err))
		return fmt.Errorf("収集実行の保存に失敗しました: %w", err)
	}
	return nil
}

// Get は指定IDの収集実行を取得する
func (r *FirestoreCollectionRunsRepository) Get(ctx context.Context, id string) (*model.CollectionRun, error) {
	doc, err := r.client.Collection(collectionRunsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", model.ErrCollectionRunNotFound, id)
		}
		return nil, fmt.Errorf("収集実行の取得に失敗しました: %w", err)
	}

	var run model.CollectionRun
	if err := doc.DataTo(&run); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}
	run.ID = doc.Ref.ID
	return &run, nil
}
