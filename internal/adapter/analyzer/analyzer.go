package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github-static-scout/internal/domain"
	"github-static-scout/internal/metrics"
	"github-static-scout/internal/port"
	"github-static-scout/internal/scoring"

	"golang.org/x/sync/errgroup"
)

// RepoAnalyzer 实现了 port.RepositoryAnalyzer 接口
type RepoAnalyzer struct {
	fetcher port.ContentFetcher
	readme  port.ReadmeAnalyzer
	probe   *FileStructureProbe
	store   port.AnalysisStore // 可选
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewRepoAnalyzer store 可以为 nil，表示不使用缓存
func NewRepoAnalyzer(fetcher port.ContentFetcher, readme port.ReadmeAnalyzer, store port.AnalysisStore, logger *slog.Logger) *RepoAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if readme == nil {
		readme = HeuristicReadmeAnalyzer{}
	}
	return &RepoAnalyzer{
		fetcher: fetcher,
		readme:  readme,
		probe:   NewFileStructureProbe(fetcher, logger),
		store:   store,
		logger:  logger,
		nowFunc: time.Now, // 便于测试注入当前时间
	}
}

// Analyze 三路分析并发执行，最后合并一次；任何一路失败都只降级这一路
func (a *RepoAnalyzer) Analyze(ctx context.Context, repo *domain.Repo) (*domain.CombinedAnalysis, string, bool) {
	if snapshot, ok := a.lookup(ctx, repo); ok {
		analysis := snapshot.Analysis
		return &analysis, snapshot.Readme, false
	}

	started := a.nowFunc()
	owner, name, valid := repo.OwnerAndName()

	var (
		readmeText   string
		readmeSignal domain.ReadmeSignal
		fileSignal   = scoring.EmptyFileStructure()
		readmeOK     bool
		probeOK      bool
	)

	var g errgroup.Group
	g.Go(func() error {
		if valid {
			content, err := a.fetcher.ReadmeContent(ctx, owner, name)
			if err != nil {
				a.logger.Debug("readme fetch failed", "repo", repo.FullName, "error", err)
			} else {
				readmeText, readmeOK = content, true
			}
		}
		// 拉不到 README 也要分析 (空字符串)
		readmeSignal = a.readme.Analyze(ctx, repo.FullName, readmeText)
		return nil
	})
	g.Go(func() error {
		if valid {
			fileSignal, probeOK = a.probe.probe(ctx, owner, name)
		}
		return nil
	})

	about := scoring.AnalyzeAbout(repo)
	_ = g.Wait()

	combined := scoring.Combine(readmeSignal, about, fileSignal)
	metrics.EnrichDuration.Observe(a.nowFunc().Sub(started).Seconds())

	if readmeOK && probeOK && ctx.Err() == nil {
		a.save(ctx, repo, &domain.AnalysisSnapshot{
			Analysis: combined,
			Readme:   scoring.TruncateForModel(readmeText),
		})
	}
	return &combined, readmeText, true
}

func (a *RepoAnalyzer) lookup(ctx context.Context, repo *domain.Repo) (*domain.AnalysisSnapshot, bool) {
	if a.store == nil {
		return nil, false
	}
	snapshot, found, err := a.store.Get(ctx, repo.FullName, repo.UpdatedAt)
	switch {
	case err != nil:
		metrics.RecordCache("error")
		a.logger.Warn("analysis cache lookup failed", "repo", repo.FullName, "error", err)
		return nil, false
	case !found:
		metrics.RecordCache("miss")
		return nil, false
	default:
		metrics.RecordCache("hit")
		return snapshot, true
	}
}

func (a *RepoAnalyzer) save(ctx context.Context, repo *domain.Repo, snapshot *domain.AnalysisSnapshot) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(ctx, repo.FullName, repo.UpdatedAt, snapshot); err != nil {
		a.logger.Warn("analysis cache save failed", "repo", repo.FullName, "error", err)
	}
}
