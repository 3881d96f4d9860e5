package llm

import (
	"testing"

	"github-static-scout/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readmeVerdict struct {
	IsStaticDeploy bool    `json:"isStaticDeploy"`
	Confidence     float64 `json:"confidence"`
	Summary        string  `json:"summary"`
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "纯 JSON",
			input:    `{"a":1}`,
			expected: `{"a":1}`,
			ok:       true,
		},
		{
			name:     "Markdown 代码块",
			input:    "```json\n{\"a\": {\"b\": 2}}\n```",
			expected: `{"a": {"b": 2}}`,
			ok:       true,
		},
		{
			name:     "前后带解释文字，后面还有别的括号",
			input:    `Here you go: {"summary":"ok"} hope this helps {not json}`,
			expected: `{"summary":"ok"}`,
			ok:       true,
		},
		{
			name:     "字符串里的括号不影响配对",
			input:    `result: {"summary":"uses } and { in text \" quoted","n":1}`,
			expected: `{"summary":"uses } and { in text \" quoted","n":1}`,
			ok:       true,
		},
		{
			name:     "第一个候选不合法时继续找",
			input:    `{oops} then {"a":true}`,
			expected: `{"a":true}`,
			ok:       true,
		},
		{
			name:  "没有 JSON",
			input: "Just some text without JSON",
			ok:    false,
		},
		{
			name:  "括号不闭合",
			input: `{"a": 1`,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v readmeVerdict
	err := DecodeJSON("分析结果如下：\n{\"isStaticDeploy\": true, \"confidence\": 0.9, \"summary\": \"纯前端\"}", &v)
	require.NoError(t, err)
	assert.True(t, v.IsStaticDeploy)
	assert.Equal(t, 0.9, v.Confidence)
	assert.Equal(t, "纯前端", v.Summary)

	err = DecodeJSON("no json here", &v)
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeMalformedResponse, common.CodeOf(err))

	err = DecodeJSON(`{"confidence": "high"}`, &v)
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeMalformedResponse, common.CodeOf(err))
}
