package main

import (
	"context"
	"fmt"
	"log/slog"

	"github-static-scout/internal/adapter/analyzer"
	"github-static-scout/internal/adapter/feishu"
	"github-static-scout/internal/adapter/filter"
	"github-static-scout/internal/adapter/github"
	"github-static-scout/internal/adapter/llm"
	"github-static-scout/internal/adapter/repository"
	"github-static-scout/internal/common"
	"github-static-scout/internal/config"
	"github-static-scout/internal/port"
	"github-static-scout/internal/service"
)

// application 组装好的依赖，Close 释放模型客户端和数据库连接
type application struct {
	stream *service.StreamService
	closer []func() error
}

func (a *application) Close() {
	for _, c := range a.closer {
		if err := c(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

// buildApp 按配置组装: 没有模型凭证就走确定性分析，没有 DSN 就不缓存，没有 webhook 就不推送
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	client, err := github.NewClient(github.ClientOptions{
		Token:             cfg.GitHub.Token,
		BaseURL:           cfg.GitHub.BaseURL,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Burst:             cfg.GitHub.Burst,
	})
	if err != nil {
		return nil, err
	}
	retry := []common.Option{
		common.WithMaxRetries(cfg.GitHub.MaxRetries),
		common.WithInitialDelay(cfg.GitHub.RetryDelay()),
		common.WithOnRetry(func(attempt int, err error) {
			logger.Debug("retrying GitHub request", "attempt", attempt, "error", err)
		}),
	}
	searcher := github.NewSearcher(client, cfg.GitHub.Token, logger, retry...)
	fetcher := github.NewContentFetcher(client, logger, retry...)

	model, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("AI 初始化失败: %w", err)
	}
	var languageModel port.LanguageModel
	if model != nil {
		languageModel = model
		app.closer = append(app.closer, model.Close)
	} else {
		logger.Info("no language model configured, using heuristics only")
	}

	var (
		store  port.AnalysisStore
		ledger service.NotificationLedger
	)
	if cfg.Store.DSN != "" {
		pg, err := repository.NewPostgresStore(cfg.Store.DSN)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("DB 初始化失败: %w", err)
		}
		store, ledger = pg, pg
		app.closer = append(app.closer, pg.Close)
	}

	var notifier port.Notifier
	if cfg.Notify.FeishuWebhook != "" {
		notifier = feishu.NewNotifier(cfg.Notify.FeishuWebhook, logger)
	}

	repoAnalyzer := analyzer.NewRepoAnalyzer(fetcher, analyzer.NewReadmeAnalyzer(languageModel, logger), store, logger)
	filterEngine := filter.NewEngine(languageModel, logger)

	app.stream = service.NewStreamService(
		searcher,
		repoAnalyzer,
		filterEngine,
		notifier,
		ledger,
		service.Options{
			Concurrency:         cfg.Pipeline.Concurrency,
			EnrichTimeout:       cfg.Pipeline.EnrichTimeout(),
			DefaultPerPage:      cfg.Pipeline.DefaultPerPage,
			NotifyMinConfidence: cfg.Notify.MinConfidence,
		},
		logger,
	)
	return app, nil
}
