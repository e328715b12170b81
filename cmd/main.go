package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"POI-Collector/internal/application"
	"POI-Collector/internal/config"
	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/handler"
	"POI-Collector/internal/infrastructure/logger"
	"POI-Collector/internal/infrastructure/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	appLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := application.NewContainer(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ 依存関係の初期化に失敗", logger.Error(err))
		return
	}
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Warn("⚠️ 終了処理でエラー", logger.Error(err))
		}
	}()

	container.CollectionUseCase.OnCollectionComplete(func(_ context.Context, run *model.CollectionRun) {
		appLogger.Info("📦 収集実行が終了しました",
			logger.String("run_id", run.ID),
			logger.String("status", string(run.Status)),
			logger.Int("places_saved", run.Stats.PlacesSaved))
	})

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(
		handler.NewCollectionHandler(container.CollectionUseCase),
		handler.NewHealthHandler(container.HealthChecks()),
		metrics.Handler(),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("🚀 POI-Collector server starting", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("❌ サーバーの起動に失敗", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("🛑 シャットダウン中...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("⚠️ サーバーの停止でエラー", logger.Error(err))
	}
	// 実行中の収集は台帳に記録済みの分から次回再開できる
	container.CollectionUseCase.Wait()
}
