package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"POI-Collector/internal/application"
	"POI-Collector/internal/config"
	"POI-Collector/internal/domain/model"
	"POI-Collector/internal/infrastructure/logger"
)

// keywordList は-keywordを複数回指定できるようにする
type keywordList []string

func (k *keywordList) String() string { return strings.Join(*k, ",") }

func (k *keywordList) Set(v string) error {
	*k = append(*k, v)
	return nil
}

func main() {
	var keywords keywordList
	region := flag.String("region", "", "収集対象の地域名")
	flag.Var(&keywords, "keyword", "検索キーワード（複数指定可）")
	flag.Parse()

	if *region == "" || len(keywords) == 0 {
		fmt.Fprintln(os.Stderr, "usage: collect -region <name> -keyword <keyword> [-keyword <keyword>...]")
		os.Exit(2)
	}

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

	if err := run(ctx, cfg, appLogger, *region, keywords); err != nil {
		appLogger.Error("❌ 収集に失敗", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, region string, keywords []string) error {
	container, err := application.NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer container.Close()

	failed := 0
	for _, keyword := range keywords {
		result, err := container.CollectionUseCase.Run(ctx, &model.CollectionRequest{RegionName: region, Keyword: keyword})
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\t%s\tlevels=%d\tplaces=%d\tcalls=%d\tfailed_cells=%d\n",
			result.RegionName, result.Keyword, result.Status,
			result.Stats.Levels, result.Stats.PlacesSaved, result.Stats.SearchCalls, result.Stats.CellsFailed)
		if result.Status == model.CollectionStatusFailed {
			failed++
			if ctx.Err() != nil {
				break
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d件のキーワードで収集が中断されました", failed)
	}
	return nil
}
