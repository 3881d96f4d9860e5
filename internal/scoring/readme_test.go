package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		verify func(t *testing.T, content string)
	}{
		{
			name:  "Vercel 在线演示",
			input: "live demo: https://foo.vercel.app",
			verify: func(t *testing.T, content string) {
				s := AnalyzeText(content)
				assert.True(t, s.IsStaticDeploy)
				assert.True(t, s.HasPreviewURL)
				assert.Equal(t, []string{"https://foo.vercel.app"}, s.PreviewURLs)
				assert.Equal(t, []string{"Vercel"}, s.DeployPlatforms)
				assert.GreaterOrEqual(t, s.Confidence, 0.9)
				assert.LessOrEqual(t, s.Confidence, 1.0)
			},
		},
		{
			name:  "后端关键词否决静态判定",
			input: "REST API backed by PostgreSQL with Express. A beautiful react frontend is included.",
			verify: func(t *testing.T, content string) {
				s := AnalyzeText(content)
				assert.False(t, s.IsStaticDeploy)
				assert.Contains(t, s.Summary, "非静态项目")
			},
		},
		{
			name:  "空 README",
			input: "",
			verify: func(t *testing.T, content string) {
				s := AnalyzeText(content)
				assert.False(t, s.IsStaticDeploy)
				assert.False(t, s.HasPreviewURL)
				assert.False(t, s.HasDeployButtons)
				assert.Empty(t, s.PreviewURLs)
				assert.NotNil(t, s.PreviewURLs)
				assert.NotNil(t, s.DeployPlatforms)
				assert.Equal(t, 0.0, s.Confidence)
				assert.Equal(t, "基于关键词匹配分析：非静态项目，无预览地址，无部署按钮", s.Summary)
			},
		},
		{
			name:  "普通链接只影响 hasPreviewUrl",
			input: "See https://example.com/docs for details",
			verify: func(t *testing.T, content string) {
				s := AnalyzeText(content)
				assert.True(t, s.HasPreviewURL)
				assert.Empty(t, s.PreviewURLs)
			},
		},
		{
			name:  "中文项目 + GitHub Pages",
			input: "# 我的博客\n\n一键部署到 GitHub Pages，预览：https://me.github.io/blog)",
			verify: func(t *testing.T, content string) {
				s := AnalyzeText(content)
				assert.True(t, s.IsStaticDeploy)
				assert.True(t, s.HasDeployButtons)
				assert.Equal(t, []string{"GitHub Pages"}, s.DeployPlatforms)
				assert.Equal(t, []string{"https://me.github.io/blog"}, s.PreviewURLs)
			},
		},
		{
			name:  "重复的预览链接去重",
			input: "demo https://a.netlify.app and again https://a.netlify.app",
			verify: func(t *testing.T, content string) {
				s := AnalyzeText(content)
				assert.Equal(t, []string{"https://a.netlify.app"}, s.PreviewURLs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, tt.input)
		})
	}
}

func TestAnalyzeText_ConfidenceAlwaysClamped(t *testing.T) {
	inputs := []string{
		"",
		"x",
		strings.Repeat("deploy vercel netlify github pages demo https://x.vercel.app/demo ", 50),
		"api server backend database",
		"blog portfolio 作品集 预览 部署",
	}
	for _, in := range inputs {
		s := AnalyzeText(in)
		assert.GreaterOrEqual(t, s.Confidence, 0.0)
		assert.LessOrEqual(t, s.Confidence, 1.0)
	}
}

func TestTruncateForModel(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, TruncateForModel(short))

	long := strings.Repeat("静", ModelPromptLimit+10)
	truncated := TruncateForModel(long)
	assert.Equal(t, ModelPromptLimit, len([]rune(truncated)))
}

func TestNormalizeReadmeSignal(t *testing.T) {
	raw := AnalyzeText("")
	raw.Confidence = 1.7
	raw.PreviewURLs = []string{"https://a.github.io", "https://a.github.io", ""}
	raw.DeployPlatforms = nil

	s := NormalizeReadmeSignal(raw)
	assert.Equal(t, 1.0, s.Confidence)
	assert.Equal(t, []string{"https://a.github.io"}, s.PreviewURLs)
	assert.NotNil(t, s.DeployPlatforms)
}
