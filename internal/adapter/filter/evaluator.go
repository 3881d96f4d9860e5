package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github-static-scout/internal/adapter/llm"
	"github-static-scout/internal/domain"
	"github-static-scout/internal/metrics"
)

const (
	evaluateSystemPrompt = "你是一个 GitHub 项目筛选助手，根据筛选规则判断项目是否符合要求。只返回 JSON。"
	readmeExcerptLimit   = 2000
)

// Evaluate 规则集为空时不调用模型，直接走确定性评估 (matches=true)
func (e *Engine) Evaluate(ctx context.Context, repo *domain.Repo, readme string, rules domain.FilterRuleSet) domain.AIFilterVerdict {
	if e.model == nil || rules.IsEmpty() {
		return e.evaluateDeterministic(repo, readme, rules)
	}

	raw, err := e.model.Complete(ctx, evaluateSystemPrompt, buildEvaluatePrompt(repo, excerpt(readme), rules))
	if err == nil {
		var verdict domain.AIFilterVerdict
		if err = llm.DecodeJSON(raw, &verdict); err == nil {
			verdict.Confidence = domain.Clamp01(verdict.Confidence)
			verdict.Score = domain.Clamp01(verdict.Score)
			verdict.Reasons = domain.NonNil(verdict.Reasons)
			return verdict
		}
	}

	e.logger.Warn("filter model evaluation failed, using deterministic evaluator", "repo", repo.FullName, "error", err)
	metrics.RecordFallback("filter_evaluate")
	return e.evaluateDeterministic(repo, readme, rules)
}

// evaluateDeterministic 初始 matches=true / confidence=0.5 / score=0.5，最后统一 clamp
func (e *Engine) evaluateDeterministic(repo *domain.Repo, readme string, rules domain.FilterRuleSet) domain.AIFilterVerdict {
	verdict := domain.AIFilterVerdict{
		Matches:    true,
		Confidence: 0.5,
		Score:      0.5,
		Reasons:    []string{},
	}

	if repo.Stars > 100 {
		verdict.Score += 0.1
	}
	if repo.Stars > 1000 {
		verdict.Score += 0.1
	}
	if repo.Forks > 50 {
		verdict.Score += 0.05
	}
	if utf8.RuneCountInString(repo.Description) > 50 {
		verdict.Score += 0.05
	}

	text := haystack(repo, excerpt(readme))

	for _, rule := range rules.Requirements {
		switch e.match(repo, text, rule) {
		case matchYes:
			verdict.Confidence += 0.1
			verdict.Reasons = append(verdict.Reasons, "满足要求: "+rule)
		case matchNo:
			verdict.Matches = false
			verdict.Reasons = append(verdict.Reasons, "不满足要求: "+rule)
		}
	}
	for _, rule := range rules.Include {
		if e.match(repo, text, rule) == matchYes {
			verdict.Confidence += 0.1
			verdict.Reasons = append(verdict.Reasons, "符合: "+rule)
		}
	}
	for _, rule := range rules.Exclude {
		// 排除条件看的是 "负面特征是否出现"
		if e.match(repo, text, rule) == matchYes {
			verdict.Matches = false
			verdict.Reasons = append(verdict.Reasons, "命中排除条件: "+rule)
		}
	}
	for _, rule := range rules.Prioritize {
		if e.match(repo, text, rule) == matchYes {
			verdict.Score += 0.1
			verdict.Reasons = append(verdict.Reasons, "优先: "+rule)
		}
	}
	for _, rule := range rules.Preferences {
		if e.match(repo, text, rule) == matchYes {
			verdict.Score += 0.05
			verdict.Reasons = append(verdict.Reasons, "偏好: "+rule)
		}
	}

	verdict.Confidence = domain.Clamp01(verdict.Confidence)
	verdict.Score = domain.Clamp01(verdict.Score)
	if verdict.Matches {
		verdict.Summary = fmt.Sprintf("符合筛选条件 (评分 %.2f)", verdict.Score)
	} else {
		verdict.Summary = fmt.Sprintf("不符合筛选条件 (评分 %.2f)", verdict.Score)
	}
	return verdict
}

type matchResult int

const (
	matchUnknown matchResult = iota // 规则里没有可识别的概念，不参与判定
	matchYes
	matchNo
)

// match 规则里提到的任一概念被满足即为满足；没有可识别概念时退化为整句匹配
func (e *Engine) match(repo *domain.Repo, text, rule string) matchResult {
	found := conceptsIn(rule)
	if len(found) == 0 {
		needle := strings.ToLower(strings.TrimSpace(rule))
		if needle != "" && strings.Contains(text, needle) {
			return matchYes
		}
		return matchUnknown
	}
	now := e.nowFunc()
	for _, c := range found {
		if c.satisfied(repo, text, now) {
			return matchYes
		}
	}
	return matchNo
}

func excerpt(readme string) string {
	if utf8.RuneCountInString(readme) <= readmeExcerptLimit {
		return readme
	}
	return string([]rune(readme)[:readmeExcerptLimit])
}

func buildEvaluatePrompt(repo *domain.Repo, readme string, rules domain.FilterRuleSet) string {
	rulesJSON, _ := json.Marshal(rules.Normalize())
	homepage := ""
	if repo.Homepage != nil {
		homepage = *repo.Homepage
	}
	return fmt.Sprintf(`
请根据筛选规则评估以下 GitHub 项目：

筛选规则: %s

项目名称: %s
项目描述: %s
主要语言: %s
Star 数: %d
Fork 数: %d
Topics: %s
主页: %s
最近更新: %s
README 摘要:
%s

请以JSON格式返回：
{
  "matches": boolean,  // 是否符合规则 (requirements 全部满足且没有命中 exclude)
  "confidence": number, // 0-1
  "reasons": string[],  // 判断理由
  "score": number,      // 0-1，越符合 prioritize / preferences 越高
  "summary": string     // 一句话的中文结论
}

请直接返回 JSON，不要包含 Markdown 格式标记。
`, rulesJSON, repo.FullName, repo.Description, repo.Language, repo.Stars, repo.Forks,
		strings.Join(repo.Topics, ", "), homepage, repo.UpdatedAt.Format("2006-01-02"), readme)
}
