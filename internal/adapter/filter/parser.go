package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github-static-scout/internal/adapter/llm"
	"github-static-scout/internal/domain"
	"github-static-scout/internal/metrics"
)

const parseSystemPrompt = "你是一个 GitHub 项目筛选助手，负责把用户的自然语言筛选需求转换成结构化规则。只返回 JSON。"

type intent int

const (
	intentInclude intent = iota
	intentExclude
	intentRequire
	intentPrioritize
	intentPrefer
)

// 意图触发词，否定词会覆盖它后面的所有概念
var intentTriggers = []struct {
	intent   intent
	triggers []string
}{
	{intentExclude, []string{"exclude", "without", "don't", " no ", " not ", "排除", "不要", "不需要", "不含", "去掉", "过滤掉"}},
	{intentRequire, []string{"only", "must", "require", "只显示", "只要", "仅", "必须", "需要"}},
	{intentPrioritize, []string{"prioritize", "priority", "first", "优先"}},
	{intentPrefer, []string{"prefer", "ideally", "would like", "最好", "希望", "偏好"}},
}

var clauseSeparator = regexp.MustCompile(`[,.;!?，。；！？、\n]+|\band\b|\bbut\b|但是|并且|而且`)

// Parse 没有模型或输入为空时返回全空的规则集 (不过滤任何项目)
func (e *Engine) Parse(ctx context.Context, text string) domain.FilterRuleSet {
	text = strings.TrimSpace(text)
	if text == "" || e.model == nil {
		return domain.FilterRuleSet{}.Normalize()
	}

	raw, err := e.model.Complete(ctx, parseSystemPrompt, buildParsePrompt(text))
	if err == nil {
		var rules domain.FilterRuleSet
		if err = llm.DecodeJSON(raw, &rules); err == nil {
			return cleanRules(rules)
		}
	}

	e.logger.Warn("filter rule parsing failed, using keyword extraction", "error", err)
	metrics.RecordFallback("filter_parse")
	return ParseKeywords(text)
}

// ParseKeywords 按分句识别 "意图词 + 概念"，把固定短语追加到对应列表
// 同一分句里可以有多个意图，每个概念按它前面的意图词归类
func ParseKeywords(text string) domain.FilterRuleSet {
	var rules domain.FilterRuleSet
	for _, clause := range clauseSeparator.Split(strings.ToLower(text), -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		padded := " " + clause + " "
		marks := intentMarks(padded)
		for _, c := range conceptsIn(clause) {
			target := listFor(&rules, intentAt(marks, conceptPosition(padded, c)))
			*target = appendUnique(*target, c.phrase)
		}
	}
	return rules.Normalize()
}

// intentMark 分句中一个意图词出现的位置 [start, end)
type intentMark struct {
	start, end int
	intent     intent
}

// intentMarks 找出所有意图词；被更长的词包含的去掉 (例如 "不需要" 里的 "需要")
func intentMarks(padded string) []intentMark {
	var all []intentMark
	for _, it := range intentTriggers {
		for _, trigger := range it.triggers {
			for off := 0; off < len(padded); {
				i := strings.Index(padded[off:], trigger)
				if i < 0 {
					break
				}
				start := off + i
				all = append(all, intentMark{start: start, end: start + len(trigger), intent: it.intent})
				off = start + 1
			}
		}
	}

	marks := make([]intentMark, 0, len(all))
	for i, m := range all {
		covered := false
		for j, o := range all {
			if i != j && o.start <= m.start && m.end <= o.end && o.end-o.start > m.end-m.start {
				covered = true
				break
			}
		}
		if !covered {
			marks = append(marks, m)
		}
	}
	return marks
}

// intentAt 前面出现过否定词就是排除；否则取最近的前置意图词，没有前置时取最近的后置意图词
func intentAt(marks []intentMark, pos int) intent {
	var before, after *intentMark
	negated := false
	for i := range marks {
		m := &marks[i]
		if m.end <= pos {
			if m.intent == intentExclude {
				negated = true
			}
			if before == nil || m.start > before.start {
				before = m
			}
		} else if m.start >= pos && (after == nil || m.start < after.start) {
			after = m
		}
	}
	switch {
	case negated:
		return intentExclude
	case before != nil:
		return before.intent
	case after != nil:
		return after.intent
	default:
		return intentInclude
	}
}

// conceptPosition 概念触发词在分句中第一次出现的位置
func conceptPosition(padded string, c concept) int {
	pos := -1
	for _, trigger := range c.triggers {
		if i := strings.Index(padded, trigger); i >= 0 && (pos < 0 || i < pos) {
			pos = i
		}
	}
	return pos
}

func listFor(rules *domain.FilterRuleSet, in intent) *[]string {
	switch in {
	case intentExclude:
		return &rules.Exclude
	case intentRequire:
		return &rules.Requirements
	case intentPrioritize:
		return &rules.Prioritize
	case intentPrefer:
		return &rules.Preferences
	default:
		return &rules.Include
	}
}

// cleanRules 去掉模型返回的空白项
func cleanRules(r domain.FilterRuleSet) domain.FilterRuleSet {
	clean := func(items []string) []string {
		var out []string
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = appendUnique(out, item)
			}
		}
		return out
	}
	return domain.FilterRuleSet{
		Include:      clean(r.Include),
		Exclude:      clean(r.Exclude),
		Prioritize:   clean(r.Prioritize),
		Requirements: clean(r.Requirements),
		Preferences:  clean(r.Preferences),
	}.Normalize()
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

func buildParsePrompt(text string) string {
	return fmt.Sprintf(`
请把下面的 GitHub 项目筛选需求解析为结构化规则：

筛选需求: %s

请以JSON格式返回，每个字段都是字符串数组，没有内容时返回空数组：
{
  "include": [],      // 希望包含的项目特征
  "exclude": [],      // 需要排除的项目特征
  "prioritize": [],   // 需要优先展示的特征
  "requirements": [], // 必须满足的条件
  "preferences": []   // 加分但非必须的偏好
}

请直接返回 JSON，不要包含 Markdown 格式标记。
`, text)
}
