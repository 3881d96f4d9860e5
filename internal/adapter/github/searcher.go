package github

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"

	"github-static-scout/internal/common"
	"github-static-scout/internal/domain"
	"github-static-scout/internal/metrics"
	"github-static-scout/internal/port"

	"github.com/google/go-github/v53/github"
)

const (
	// GitHub 搜索接口最多只给前 1000 条结果 = 10 页 * 100 条
	maxSearchPages      = 10
	continuationPerPage = 100
	defaultPerPage      = 30
)

// Searcher 实现了 port.SearchPager 接口
type Searcher struct {
	client   *github.Client
	hasToken bool
	logger   *slog.Logger
	retry    []common.Option
}

// NewSearcher token 只用来判断凭证是否存在，真正的鉴权在 client 的 transport 里
func NewSearcher(client *github.Client, token string, logger *slog.Logger, retry ...common.Option) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		client:   client,
		hasToken: token != "",
		logger:   logger,
		retry:    retry,
	}
}

// CheckCredentials 缺少 token 直接失败，匿名配额撑不起一次完整的分页
func (s *Searcher) CheckCredentials() error {
	if !s.hasToken {
		return common.NewError(common.ErrCodeMissingCredential, "GitHub token is not configured")
	}
	return nil
}

// Start 请求首页，首页失败直接返回错误
func (s *Searcher) Start(ctx context.Context, query domain.SearchQuery) (port.SearchCursor, error) {
	if err := s.CheckCredentials(); err != nil {
		return nil, err
	}

	q := query.QueryString()
	if q == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "search query is empty")
	}

	start := query.StartPage
	if start <= 0 {
		start = 1
	}
	if start > maxSearchPages {
		return nil, common.NewError(common.ErrCodeInvalidInput,
			fmt.Sprintf("start page %d is beyond the last searchable page %d", start, maxSearchPages))
	}

	result, err := s.fetchPage(ctx, q, start, clampPerPage(query.PerPage))
	metrics.RecordPage("first", err)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, "GitHub search request failed", err)
	}

	s.logger.Info("search started",
		"query", q,
		"start_page", start,
		"total_count", result.GetTotal(),
		"first_page_hits", len(result.Repositories))

	return &Cursor{
		searcher: s,
		query:    q,
		start:    start,
		total:    result.GetTotal(),
		first:    convertRepos(result.Repositories),
	}, nil
}

func (s *Searcher) fetchPage(ctx context.Context, q string, page, perPage int) (*github.RepositoriesSearchResult, error) {
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		res, resp, apiErr := s.client.Search.Repositories(ctx, q, opts)
		if apiErr != nil {
			return classify(ctx, resp, apiErr)
		}
		result = res
		return nil
	}, s.retry...)
	return result, err
}

// Cursor 一次检索的分页游标，只能被一个 goroutine 消费
type Cursor struct {
	searcher *Searcher
	query    string
	start    int
	total    int
	first    []domain.Repo
	err      error
}

func (c *Cursor) TotalCount() int { return c.total }

// Err 后续分页失败的原因；分页被截断不算整个请求失败
func (c *Cursor) Err() error { return c.err }

// lastPage = min(start+9, min(ceil(total/100), 10))
func (c *Cursor) lastPage() int {
	pages := (c.total + continuationPerPage - 1) / continuationPerPage
	last := min(c.start+maxSearchPages-1, min(pages, maxSearchPages))
	return last
}

// Hits 先产出首页，再依次请求后续页 (每页 100 条)，任何一页失败都停止
func (c *Cursor) Hits(ctx context.Context) iter.Seq2[domain.Repo, int] {
	return func(yield func(domain.Repo, int) bool) {
		for _, repo := range c.first {
			if !yield(repo, c.start) {
				return
			}
		}

		for page := c.start + 1; page <= c.lastPage(); page++ {
			if ctx.Err() != nil {
				return
			}

			result, err := c.searcher.fetchPage(ctx, c.query, page, continuationPerPage)
			metrics.RecordPage("continuation", err)
			if err != nil {
				if ctx.Err() == nil {
					c.err = common.WrapError(common.ErrCodeGitHubAPI,
						fmt.Sprintf("search page %d failed", page), err)
					c.searcher.logger.Warn("search pagination truncated",
						"query", c.query, "page", page, "error", err)
				}
				return
			}
			if len(result.Repositories) == 0 {
				return
			}

			for _, repo := range convertRepos(result.Repositories) {
				if !yield(repo, page) {
					return
				}
			}
		}
	}
}

// classify 4xx (限流也算) 重试没有意义，直接标记为不可重试
func classify(ctx context.Context, resp *github.Response, err error) error {
	if ctx.Err() != nil {
		return common.Permanent(err)
	}
	if resp != nil && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		return common.Permanent(err)
	}
	return err
}

func clampPerPage(n int) int {
	switch {
	case n <= 0:
		return defaultPerPage
	case n > continuationPerPage:
		return continuationPerPage
	default:
		return n
	}
}

// 将 GitHub 的数据结构转换为我们的 Domain 实体 (DTO 转换)
func convertRepos(items []*github.Repository) []domain.Repo {
	repos := make([]domain.Repo, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		repos = append(repos, convertRepo(item))
	}
	return repos
}

func convertRepo(item *github.Repository) domain.Repo {
	repo := domain.Repo{
		ID:          item.GetID(),
		FullName:    item.GetFullName(),
		Description: item.GetDescription(),
		Language:    item.GetLanguage(),
		Stars:       item.GetStargazersCount(),
		Forks:       item.GetForksCount(),
		URL:         item.GetHTMLURL(),
		UpdatedAt:   item.GetUpdatedAt().Time,
		Topics:      item.Topics,
	}
	if owner := item.GetOwner(); owner != nil {
		repo.Owner = owner.GetLogin()
		repo.OwnerAvatar = owner.GetAvatarURL()
		repo.OwnerHTMLURL = owner.GetHTMLURL()
	}
	if item.Homepage != nil {
		homepage := item.GetHomepage()
		repo.Homepage = &homepage
	}
	return repo
}
