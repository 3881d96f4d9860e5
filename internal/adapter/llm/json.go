package llm

import (
	"encoding/json"
	"strings"

	"github-static-scout/internal/common"
)

// ExtractJSONObject 从模型的自由文本里抠出第一个合法的 JSON 对象
// 即使返回 "```json { ... } ```" 或前后带解释文字也能处理
func ExtractJSONObject(raw string) (string, bool) {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		if end := matchBrace(raw, start); end > start {
			candidate := raw[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace 返回与 raw[start] 配对的 '}' 下标，字符串里的括号和转义会被跳过
func matchBrace(raw string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// DecodeJSON 提取并解析模型返回的 JSON 对象
func DecodeJSON(raw string, v any) error {
	cleanJSON, ok := ExtractJSONObject(raw)
	if !ok {
		return common.NewError(common.ErrCodeMalformedResponse, "无法提取 JSON, 模型原文: "+truncate(raw, 200))
	}
	if err := json.Unmarshal([]byte(cleanJSON), v); err != nil {
		return common.WrapError(common.ErrCodeMalformedResponse, "JSON 解析失败", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
