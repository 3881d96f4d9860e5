package port

import (
	"context"
	"iter"
	"time"

	"github-static-scout/internal/domain"
)

// SearchCursor 一次分页检索的游标
type SearchCursor interface {
	// TotalCount 首页返回的 total_count
	TotalCount() int
	// Hits 按页码升序、页内按服务端顺序产出 (仓库, 页码)
	Hits(ctx context.Context) iter.Seq2[domain.Repo, int]
	// Err 分页被截断时的原因，没有截断则为 nil
	Err() error
}

// SearchPager (侦察兵): 负责去 GitHub 分页发现项目
type SearchPager interface {
	// CheckCredentials 缺少搜索凭证时返回错误，整个请求直接失败
	CheckCredentials() error
	// Start 请求首页，首页失败即为致命错误
	Start(ctx context.Context, query domain.SearchQuery) (SearchCursor, error)
}

// ContentFetcher 按仓库 + 路径拉取文件内容 (已解码)
type ContentFetcher interface {
	ReadmeContent(ctx context.Context, owner, repo string) (string, error)
	RootEntries(ctx context.Context, owner, repo string) ([]string, error)
	// FileContent 文件不存在时 found 为 false 且 err 为 nil
	FileContent(ctx context.Context, owner, repo, path string) (data []byte, found bool, err error)
}

// LanguageModel (鉴定师): 外部大模型，返回的文本中期望包含一个 JSON 对象
type LanguageModel interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ReadmeAnalyzer README 分析策略，调用方不关心具体是哪种实现
type ReadmeAnalyzer interface {
	Analyze(ctx context.Context, repoName, content string) domain.ReadmeSignal
}

// RepositoryAnalyzer 单个仓库的综合分析，同时返回拉到的 README 原文供筛选使用
type RepositoryAnalyzer interface {
	Analyze(ctx context.Context, repo *domain.Repo) (analysis *domain.CombinedAnalysis, readme string, fresh bool)
}

// FilterEngine 自然语言筛选：解析规则 + 逐仓库评估
type FilterEngine interface {
	Parse(ctx context.Context, text string) domain.FilterRuleSet
	Evaluate(ctx context.Context, repo *domain.Repo, readme string, rules domain.FilterRuleSet) domain.AIFilterVerdict
}

// AnalysisStore (仓库管理员): 分析结果缓存，仓库 updated_at 变化后旧记录失效
type AnalysisStore interface {
	Get(ctx context.Context, fullName string, repoUpdatedAt time.Time) (*domain.AnalysisSnapshot, bool, error)
	Save(ctx context.Context, fullName string, repoUpdatedAt time.Time, snapshot *domain.AnalysisSnapshot) error
}

// Notifier (信使): 负责推送到手机 (飞书)
type Notifier interface {
	Notify(ctx context.Context, result *domain.RepoResult) error
}
