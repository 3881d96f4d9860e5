package filter

import (
	"slices"
	"strings"
	"time"

	"github-static-scout/internal/domain"
)

const (
	recentWindow = 180 * 24 * time.Hour
	manyStars    = 100
)

// concept 规则里能识别的领域概念
type concept struct {
	key        string
	triggers   []string // 用户输入 / 规则文本中的触发词
	phrase     string   // 关键词解析时追加到规则列表的固定短语
	indicators []string // 仓库文本中出现即视为满足
	languages  []string
	check      func(repo *domain.Repo, now time.Time) bool
}

var concepts = []concept{
	{
		key:        "frontend",
		triggers:   []string{"frontend", "front-end", "前端"},
		phrase:     "frontend projects",
		indicators: []string{"frontend", "front-end", "react", "vue", "svelte", "angular", "html", "css", "前端"},
		languages:  []string{"JavaScript", "TypeScript", "HTML", "CSS", "Vue", "Svelte"},
	},
	{
		key:        "static",
		triggers:   []string{"static", "静态"},
		phrase:     "static websites",
		indicators: []string{"static", "github pages", "gh-pages", "vercel", "netlify", "静态"},
	},
	{
		key:        "react",
		triggers:   []string{"react"},
		phrase:     "React projects",
		indicators: []string{"react", "next.js", "nextjs"},
	},
	{
		key:        "vue",
		triggers:   []string{"vue"},
		phrase:     "Vue projects",
		indicators: []string{"vue", "nuxt"},
		languages:  []string{"Vue"},
	},
	{
		key:        "database",
		triggers:   []string{"database", "数据库"},
		phrase:     "projects requiring a database",
		indicators: []string{"database", "mysql", "postgres", "mongodb", "redis", "sqlite", "prisma", "数据库"},
	},
	{
		key:        "server",
		triggers:   []string{"server", "backend", "后端", "服务器"},
		phrase:     "projects requiring a backend server",
		indicators: []string{"server", "backend", "express", "django", "flask", "后端", "服务器"},
	},
	{
		key:        "preview",
		triggers:   []string{"preview", "demo", "预览", "演示"},
		phrase:     "projects with a live preview",
		indicators: []string{"demo", "preview", "vercel.app", "netlify.app", "github.io", "预览", "演示"},
		check: func(repo *domain.Repo, _ time.Time) bool {
			return repo.Homepage != nil && strings.TrimSpace(*repo.Homepage) != ""
		},
	},
	{
		key:      "recency",
		triggers: []string{"recent", "latest", "active", "maintained", "最近", "最新", "活跃"},
		phrase:   "recently updated projects",
		check: func(repo *domain.Repo, now time.Time) bool {
			return !repo.UpdatedAt.IsZero() && now.Sub(repo.UpdatedAt) <= recentWindow
		},
	},
	{
		key:      "stars",
		triggers: []string{"star", "popular", "热门", "星"},
		phrase:   "projects with many stars",
		check: func(repo *domain.Repo, _ time.Time) bool {
			return repo.Stars >= manyStars
		},
	},
}

// conceptsIn 找出一段文本里提到的概念
func conceptsIn(text string) []concept {
	lower := strings.ToLower(text)
	var found []concept
	for _, c := range concepts {
		for _, trigger := range c.triggers {
			if strings.Contains(lower, trigger) {
				found = append(found, c)
				break
			}
		}
	}
	return found
}

// satisfied 仓库是否满足某个概念；check 与 indicators 任一命中即可
func (c concept) satisfied(repo *domain.Repo, haystack string, now time.Time) bool {
	if c.check != nil && c.check(repo, now) {
		return true
	}
	if slices.Contains(c.languages, repo.Language) {
		return true
	}
	for _, ind := range c.indicators {
		if strings.Contains(haystack, ind) {
			return true
		}
	}
	return false
}

// haystack 评估时用来做文本匹配的内容
func haystack(repo *domain.Repo, readme string) string {
	parts := []string{repo.FullName, repo.Description, repo.Language, strings.Join(repo.Topics, " "), readme}
	if repo.Homepage != nil {
		parts = append(parts, *repo.Homepage)
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}
