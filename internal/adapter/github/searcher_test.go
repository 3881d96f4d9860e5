package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github-static-scout/internal/common"
	"github-static-scout/internal/domain"

	"github.com/google/go-github/v53/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockGitHubServer 创建一个模拟的 GitHub API 服务器
func setupMockGitHubServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *github.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{Token: "test-token", BaseURL: server.URL})
	require.NoError(t, err)
	return server, client
}

// createMockRepo 创建模拟的 GitHub 仓库对象
func createMockRepo(id int64, fullName string, stars int) *github.Repository {
	return &github.Repository{
		ID:              github.Int64(id),
		FullName:        github.String(fullName),
		HTMLURL:         github.String("https://github.com/" + fullName),
		Description:     github.String("repo " + fullName),
		StargazersCount: github.Int(stars),
		Language:        github.String("TypeScript"),
		UpdatedAt:       &github.Timestamp{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		Owner: &github.User{
			Login:     github.String("owner"),
			AvatarURL: github.String("https://avatars.example/owner"),
			HTMLURL:   github.String("https://github.com/owner"),
		},
	}
}

// pageRecorder 记录服务端收到的 page/per_page
type pageRecorder struct {
	mu     sync.Mutex
	params []string
}

func (p *pageRecorder) add(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = append(p.params, v)
}

func (p *pageRecorder) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.params...)
}

// pagedSearchHandler 每页返回一个仓库，名字里带页码；failPage 页返回 500
func pagedSearchHandler(t *testing.T, total, failPage int, requests *atomic.Int32, rec *pageRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		requests.Add(1)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		rec.add(r.URL.Query().Get("page") + "/" + r.URL.Query().Get("per_page"))
		if page == failPage {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message": "Internal server error"}`))
			return
		}

		result := &github.RepositoriesSearchResult{
			Total:        github.Int(total),
			Repositories: []*github.Repository{createMockRepo(int64(page), fmt.Sprintf("owner/page-%d", page), 1000-page)},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func TestSearcher_Pagination(t *testing.T) {
	tests := []struct {
		name          string
		query         domain.SearchQuery
		total         int
		failPage      int
		expectPages   []int
		expectParams  []string
		expectErrCode string
	}{
		{
			name:         "结果很多时最多请求 10 页",
			query:        domain.SearchQuery{Keywords: []string{"portfolio"}, StartPage: 1, PerPage: 100},
			total:        5000,
			expectPages:  []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			expectParams: []string{"1/100", "2/100", "3/100", "4/100", "5/100", "6/100", "7/100", "8/100", "9/100", "10/100"},
		},
		{
			name:         "总数 250 只请求 3 页",
			query:        domain.SearchQuery{Keywords: []string{"portfolio"}, PerPage: 20},
			total:        250,
			expectPages:  []int{1, 2, 3},
			expectParams: []string{"1/20", "2/100", "3/100"},
		},
		{
			name:         "从第 4 页开始不超过第 10 页",
			query:        domain.SearchQuery{Keywords: []string{"portfolio"}, StartPage: 4, PerPage: 100},
			total:        5000,
			expectPages:  []int{4, 5, 6, 7, 8, 9, 10},
			expectParams: []string{"4/100", "5/100", "6/100", "7/100", "8/100", "9/100", "10/100"},
		},
		{
			name:          "第 3 页失败时截断，不算整体失败",
			query:         domain.SearchQuery{Keywords: []string{"portfolio"}, PerPage: 100},
			total:         5000,
			failPage:      3,
			expectPages:   []int{1, 2},
			expectParams:  []string{"1/100", "2/100", "3/100"},
			expectErrCode: common.ErrCodeGitHubAPI,
		},
		{
			name:         "结果只有一页",
			query:        domain.SearchQuery{Keywords: []string{"portfolio"}, PerPage: 500},
			total:        12,
			expectPages:  []int{1},
			expectParams: []string{"1/100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			rec := &pageRecorder{}
			_, client := setupMockGitHubServer(t, pagedSearchHandler(t, tt.total, tt.failPage, &requests, rec))
			searcher := NewSearcher(client, "test-token", nil, common.WithMaxRetries(0))

			ctx := context.Background()
			cursor, err := searcher.Start(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.total, cursor.TotalCount())

			var pages []int
			for repo, page := range cursor.Hits(ctx) {
				assert.Equal(t, fmt.Sprintf("owner/page-%d", page), repo.FullName)
				pages = append(pages, page)
			}

			assert.Equal(t, tt.expectPages, pages)
			assert.Equal(t, tt.expectParams, rec.list())
			if tt.expectErrCode != "" {
				require.Error(t, cursor.Err())
				assert.Equal(t, tt.expectErrCode, common.CodeOf(cursor.Err()))
			} else {
				assert.NoError(t, cursor.Err())
			}
		})
	}
}

func TestSearcher_Start_Errors(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		query      domain.SearchQuery
		statusCode int
		expectCode string
		expectReqs int32
	}{
		{
			name:       "缺少 token",
			token:      "",
			query:      domain.SearchQuery{Keywords: []string{"blog"}},
			expectCode: common.ErrCodeMissingCredential,
			expectReqs: 0,
		},
		{
			name:       "起始页超过第 10 页",
			token:      "test-token",
			query:      domain.SearchQuery{Keywords: []string{"blog"}, StartPage: 11},
			expectCode: common.ErrCodeInvalidInput,
			expectReqs: 0,
		},
		{
			name:       "空查询",
			token:      "test-token",
			query:      domain.SearchQuery{Keywords: []string{"  "}},
			expectCode: common.ErrCodeInvalidInput,
			expectReqs: 0,
		},
		{
			name:       "首页返回 422",
			token:      "test-token",
			query:      domain.SearchQuery{Keywords: []string{"blog"}},
			statusCode: http.StatusUnprocessableEntity,
			expectCode: common.ErrCodeGitHubAPI,
			expectReqs: 1,
		},
		{
			name:       "首页返回 403 限流",
			token:      "test-token",
			query:      domain.SearchQuery{Keywords: []string{"blog"}},
			statusCode: http.StatusForbidden,
			expectCode: common.ErrCodeGitHubAPI,
			expectReqs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			_, client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(`{"message": "failed"}`))
			})
			// 4xx 不重试，所以这里保留重试次数也只会请求一次
			searcher := NewSearcher(client, tt.token, nil, common.WithMaxRetries(2), common.WithInitialDelay(time.Millisecond))

			cursor, err := searcher.Start(context.Background(), tt.query)
			require.Error(t, err)
			assert.Nil(t, cursor)
			assert.Equal(t, tt.expectCode, common.CodeOf(err))
			assert.Equal(t, tt.expectReqs, requests.Load())
		})
	}
}

func TestSearcher_RetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	_, client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&github.RepositoriesSearchResult{
			Total:        github.Int(1),
			Repositories: []*github.Repository{createMockRepo(1, "owner/site", 10)},
		})
	})
	searcher := NewSearcher(client, "test-token", nil, common.WithMaxRetries(2), common.WithInitialDelay(time.Millisecond))

	cursor, err := searcher.Start(context.Background(), domain.SearchQuery{Keywords: []string{"site"}})
	require.NoError(t, err)
	assert.Equal(t, 1, cursor.TotalCount())
	assert.Equal(t, int32(2), requests.Load())
}

func TestCursor_StopsOnCancel(t *testing.T) {
	var requests atomic.Int32
	_, client := setupMockGitHubServer(t, pagedSearchHandler(t, 5000, 0, &requests, &pageRecorder{}))
	searcher := NewSearcher(client, "test-token", nil, common.WithMaxRetries(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cursor, err := searcher.Start(ctx, domain.SearchQuery{Keywords: []string{"site"}, PerPage: 100})
	require.NoError(t, err)

	count := 0
	for range cursor.Hits(ctx) {
		count++
		cancel()
	}

	assert.Equal(t, 1, count)
	assert.Equal(t, int32(1), requests.Load())
	assert.NoError(t, cursor.Err(), "取消不是分页失败")
}

func TestCursor_ConsumerBreak(t *testing.T) {
	var requests atomic.Int32
	_, client := setupMockGitHubServer(t, pagedSearchHandler(t, 5000, 0, &requests, &pageRecorder{}))
	searcher := NewSearcher(client, "test-token", nil, common.WithMaxRetries(0))

	ctx := context.Background()
	cursor, err := searcher.Start(ctx, domain.SearchQuery{Keywords: []string{"site"}, PerPage: 100})
	require.NoError(t, err)

	for _, page := range cursor.Hits(ctx) {
		if page == 2 {
			break
		}
	}
	assert.Equal(t, int32(2), requests.Load())
}

func TestConvertRepo(t *testing.T) {
	item := createMockRepo(42, "alice/site", 321)
	item.Homepage = github.String("https://alice.dev")
	item.ForksCount = github.Int(7)
	item.Topics = []string{"portfolio"}

	repo := convertRepo(item)
	assert.Equal(t, int64(42), repo.ID)
	assert.Equal(t, "alice/site", repo.FullName)
	assert.Equal(t, 321, repo.Stars)
	assert.Equal(t, 7, repo.Forks)
	assert.Equal(t, "owner", repo.Owner)
	assert.Equal(t, "https://avatars.example/owner", repo.OwnerAvatar)
	require.NotNil(t, repo.Homepage)
	assert.Equal(t, "https://alice.dev", *repo.Homepage)
	assert.Equal(t, []string{"portfolio"}, repo.Topics)

	item.Homepage = nil
	assert.Nil(t, convertRepo(item).Homepage)
}

func TestClampPerPage(t *testing.T) {
	assert.Equal(t, 30, clampPerPage(0))
	assert.Equal(t, 1, clampPerPage(1))
	assert.Equal(t, 100, clampPerPage(250))
}
