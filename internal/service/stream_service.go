package service

import (
	"context"
	"log/slog"
	"time"

	"github-static-scout/internal/domain"
	"github-static-scout/internal/metrics"
	"github-static-scout/internal/port"
	"github-static-scout/internal/scoring"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// NotificationLedger 记录哪些仓库已经推送过，保证同一仓库只推送一次
type NotificationLedger interface {
	// MarkNotified 第一次标记成功时返回 true
	MarkNotified(ctx context.Context, fullName string) (bool, error)
}

// Options 流水线参数
type Options struct {
	Concurrency         int
	EnrichTimeout       time.Duration // <= 0 表示只受请求 ctx 约束
	DefaultPerPage      int
	NotifyMinConfidence float64
}

// StreamService 处理一次流式搜索: 分页检索 -> 并发分析 -> 按发现顺序推送
type StreamService struct {
	pager    port.SearchPager
	analyzer port.RepositoryAnalyzer
	filter   port.FilterEngine // 可选
	notifier port.Notifier     // 可选
	ledger   NotificationLedger
	opts     Options
	logger   *slog.Logger
}

// NewStreamService filter / notifier / ledger 都可以为 nil
func NewStreamService(
	pager port.SearchPager,
	analyzer port.RepositoryAnalyzer,
	filter port.FilterEngine,
	notifier port.Notifier,
	ledger NotificationLedger,
	opts Options,
	logger *slog.Logger,
) *StreamService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &StreamService{
		pager:    pager,
		analyzer: analyzer,
		filter:   filter,
		notifier: notifier,
		ledger:   ledger,
		opts:     opts,
		logger:   logger,
	}
}

// enriched 单个仓库的分析结果；fresh 表示本次真正做了分析 (而不是命中缓存)
type enriched struct {
	result *domain.RepoResult
	fresh  bool
}

// Stream 启动一次检索，返回的 channel 在终止事件之后或 ctx 取消后关闭
func (s *StreamService) Stream(ctx context.Context, req domain.StreamRequest) <-chan domain.Event {
	out := make(chan domain.Event)
	go func() {
		defer close(out)
		outcome := s.run(ctx, req, out)
		metrics.RecordStream(outcome)
	}()
	return out
}

func (s *StreamService) run(ctx context.Context, req domain.StreamRequest, out chan<- domain.Event) string {
	logger := s.logger.With("run_id", uuid.NewString())
	started := time.Now()

	if req.Query.PerPage <= 0 {
		req.Query.PerPage = s.opts.DefaultPerPage
	}

	if !emit(ctx, out, domain.StageEvent(domain.StageSearching)) {
		return "canceled"
	}

	cursor, err := s.pager.Start(ctx, req.Query)
	if err != nil {
		if ctx.Err() != nil {
			return "canceled"
		}
		logger.Error("search failed", "query", req.Query.QueryString(), "error", err)
		emit(ctx, out, domain.ErrorEvent(err.Error()))
		return "error"
	}

	if !emit(ctx, out, domain.TotalCountEvent(cursor.TotalCount())) ||
		!emit(ctx, out, domain.StageEvent(domain.StageAnalyzing)) {
		return "canceled"
	}

	var rules *domain.FilterRuleSet
	if req.AIFilterText != "" && s.filter != nil {
		parsed := s.filter.Parse(ctx, req.AIFilterText)
		rules = &parsed
		logger.Info("ai filter parsed", "text", req.AIFilterText, "empty", parsed.IsEmpty())
	}

	// 队列里按发现顺序存放每个仓库的 future，消费方按顺序等待
	pending := make(chan chan enriched, s.opts.Concurrency)
	sem := semaphore.NewWeighted(int64(s.opts.Concurrency))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(pending)
		for repo := range cursor.Hits(gctx) {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			future := make(chan enriched, 1)
			g.Go(func() error {
				defer sem.Release(1)
				future <- s.enrich(gctx, logger, repo, rules)
				return nil
			})
			select {
			case pending <- future:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	emitted, dropped := 0, 0
	canceled := false
consume:
	for future := range pending {
		select {
		case item := <-future:
			if req.StaticOnly && !scoring.IsStaticOnlyCandidate(item.result) {
				dropped++
				continue
			}
			if !emit(ctx, out, domain.ResultEvent(item.result)) {
				canceled = true
				break consume
			}
			metrics.ResultsEmittedTotal.Inc()
			emitted++
		case <-ctx.Done():
			canceled = true
			break consume
		}
	}
	if canceled {
		// 生产方看到 ctx 取消后会关闭队列，剩下的 future 丢弃
		for range pending {
		}
	}
	_ = g.Wait()

	if canceled || ctx.Err() != nil {
		logger.Info("stream canceled", "emitted", emitted, "elapsed", time.Since(started))
		return "canceled"
	}
	if err := cursor.Err(); err != nil {
		logger.Warn("pagination ended early", "error", err)
	}

	if !emit(ctx, out, domain.StageEvent(domain.StageGenerating)) ||
		!emit(ctx, out, domain.EndEvent()) {
		return "canceled"
	}
	logger.Info("stream finished",
		"total_count", cursor.TotalCount(),
		"emitted", emitted,
		"dropped_static_only", dropped,
		"elapsed", time.Since(started))
	return "done"
}

// enrich 单个仓库的分析 + AI 筛选 + 推送，超时只影响这一个仓库
func (s *StreamService) enrich(ctx context.Context, logger *slog.Logger, repo domain.Repo, rules *domain.FilterRuleSet) enriched {
	if s.opts.EnrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.EnrichTimeout)
		defer cancel()
	}

	analysis, readme, fresh := s.analyzer.Analyze(ctx, &repo)
	result := &domain.RepoResult{Repo: repo, ComprehensiveAnalysis: analysis}

	if rules != nil {
		verdict := s.filter.Evaluate(ctx, &repo, readme, *rules)
		result.AIFilter = &verdict
	}

	if fresh {
		s.notify(ctx, logger, result)
	}
	return enriched{result: result, fresh: fresh}
}

// notify 推送失败只记日志，不影响结果
func (s *StreamService) notify(ctx context.Context, logger *slog.Logger, result *domain.RepoResult) {
	if s.notifier == nil || ctx.Err() != nil {
		return
	}
	a := result.ComprehensiveAnalysis
	if a == nil || !a.FinalAssessment.IsStaticDeploy || a.FinalAssessment.Confidence < s.opts.NotifyMinConfidence {
		return
	}

	if s.ledger != nil {
		first, err := s.ledger.MarkNotified(ctx, result.FullName)
		if err != nil {
			logger.Warn("mark notified failed", "repo", result.FullName, "error", err)
			return
		}
		if !first {
			return
		}
	}

	if err := s.notifier.Notify(ctx, result); err != nil {
		logger.Warn("notify failed", "repo", result.FullName, "error", err)
		return
	}
	logger.Info("notified", "repo", result.FullName, "confidence", a.FinalAssessment.Confidence)
}

// emit 观察到取消之后不再发送任何事件
func emit(ctx context.Context, out chan<- domain.Event, ev domain.Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
