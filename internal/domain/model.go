package domain

import (
	"strings"
	"time"
)

// SearchQuery 一次流式搜索请求的查询条件，请求期间不可变
type SearchQuery struct {
	Keywords  []string `json:"keywords"`
	Language  string   `json:"language,omitempty"`  // 空字符串表示不限语言
	MinStars  string   `json:"min_stars,omitempty"` // 原样拼接到 stars: 限定符，例如 ">100"
	StartPage int      `json:"start_page"`
	PerPage   int      `json:"per_page"`
}

// QueryString 拼接 GitHub 搜索语法: 关键词 + language: + stars:
func (q SearchQuery) QueryString() string {
	var parts []string
	for _, kw := range q.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			parts = append(parts, kw)
		}
	}
	if q.Language != "" {
		parts = append(parts, "language:"+q.Language)
	}
	if q.MinStars != "" {
		parts = append(parts, "stars:"+q.MinStars)
	}
	return strings.Join(parts, " ")
}

// Repo 代表 GitHub 搜索接口返回的一个仓库 (RawHit)
type Repo struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"` // 例如 "gohugoio/hugo"
	Description  string    `json:"description"`
	Language     string    `json:"language"`
	Stars        int       `json:"stargazers_count"`
	Forks        int       `json:"forks_count"`
	URL          string    `json:"html_url"`
	UpdatedAt    time.Time `json:"updated_at"`
	Owner        string    `json:"owner"`
	OwnerAvatar  string    `json:"owner_avatar"`
	OwnerHTMLURL string    `json:"owner_html_url"`
	Homepage     *string   `json:"homepage,omitempty"`
	Topics       []string  `json:"topics,omitempty"`
}

// OwnerAndName 拆分 full name，格式不对时 ok 为 false
func (r *Repo) OwnerAndName() (owner, name string, ok bool) {
	parts := strings.Split(strings.Trim(r.FullName, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// RepoResult 推送给调用方的单条结果：原始仓库信息 + 综合分析 + AI 筛选结论
type RepoResult struct {
	Repo
	// 在当前的时序下永远不会为 nil，但类型上允许 "尚未完成" 的状态
	ComprehensiveAnalysis *CombinedAnalysis `json:"comprehensive_analysis"`
	AIFilter              *AIFilterVerdict  `json:"ai_filter_result,omitempty"`
}

// StreamRequest 对应一次 /api/search 调用
type StreamRequest struct {
	Query        SearchQuery
	AIFilterText string
	StaticOnly   bool
}
