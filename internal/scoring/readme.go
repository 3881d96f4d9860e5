package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github-static-scout/internal/domain"
)

var urlPattern = regexp.MustCompile(`https?://[^\s)]+`)

// AnalyzeText 基于关键词匹配分析 README，纯函数，可扫描全文
func AnalyzeText(content string) domain.ReadmeSignal {
	text := strings.ToLower(content)

	hasBackend := containsAny(text, BackendKeywords)
	isStatic := !hasBackend && containsAny(text, StaticDeployKeywords)

	urls := urlPattern.FindAllString(text, -1)
	hasPreview := containsAny(text, PreviewURLKeywords) || len(urls) > 0
	hasDeploy := containsAny(text, DeployButtonKeywords)

	previewURLs := []string{}
	seen := make(map[string]struct{})
	for _, u := range urls {
		if !containsAny(u, PreviewURLFragments) {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		previewURLs = append(previewURLs, u)
	}

	platforms := []string{}
	for _, p := range DeployPlatforms {
		if strings.Contains(text, p.Keyword) {
			platforms = append(platforms, p.Name)
		}
	}

	confidence := 0.0
	if isStatic {
		confidence += 0.4
	}
	if hasPreview {
		confidence += 0.4
	}
	if hasDeploy {
		confidence += 0.2
	}
	if len(previewURLs) > 0 {
		confidence += 0.1
	}
	if len(platforms) > 0 {
		confidence += 0.1
	}

	return domain.ReadmeSignal{
		IsStaticDeploy:   isStatic,
		HasPreviewURL:    hasPreview,
		HasDeployButtons: hasDeploy,
		PreviewURLs:      previewURLs,
		DeployPlatforms:  platforms,
		Confidence:       domain.Clamp01(confidence),
		Summary:          readmeSummary(isStatic, hasPreview, hasDeploy),
	}
}

func readmeSummary(isStatic, hasPreview, hasDeploy bool) string {
	return fmt.Sprintf("基于关键词匹配分析：%s，%s，%s",
		pick(isStatic, "疑似静态项目", "非静态项目"),
		pick(hasPreview, "包含预览地址", "无预览地址"),
		pick(hasDeploy, "包含部署按钮", "无部署按钮"))
}

// NormalizeReadmeSignal 用于模型返回的结果：clamp 置信度、补齐空切片、URL 去重
func NormalizeReadmeSignal(s domain.ReadmeSignal) domain.ReadmeSignal {
	s.Confidence = domain.Clamp01(s.Confidence)
	s.PreviewURLs = dedupe(s.PreviewURLs)
	s.DeployPlatforms = dedupe(s.DeployPlatforms)
	return s
}

// TruncateForModel 截断到 ModelPromptLimit 个字符，控制 token 成本
func TruncateForModel(content string) string {
	return truncateRunes(content, ModelPromptLimit)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
