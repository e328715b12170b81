package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"POI-Collector/internal/infrastructure/logger"
)

type FirestoreClient struct {
	client *firestore.Client
}

func NewFirestoreClient(ctx context.Context, projectID string, log logger.Logger) (*FirestoreClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_IDが設定されていません")
	}

	var opts []option.ClientOption
	// Cloud Run環境ではデフォルト認証、ローカルでは認証ファイルがあれば使う
	isCloudRun := os.Getenv("K_SERVICE") != ""
	if !isCloudRun {
		if credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentialsFile != "" {
			if _, err := os.Stat(credentialsFile); err == nil {
				log.Info("📄 Using credentials file", logger.String("path", credentialsFile))
				opts = append(opts, option.WithCredentialsFile(credentialsFile))
			} else {
				log.Warn("⚠️ Credentials file not found, trying with default authentication",
					logger.String("path", credentialsFile))
			}
		}
	}
	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		log.Info("🧪 Firestore emulator", logger.String("host", host))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	log.Info("✅ Firestore client initialized",
		logger.String("project_id", projectID),
		logger.Bool("cloud_run", isCloudRun))

	return &FirestoreClient{client: client}, nil
}

func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
