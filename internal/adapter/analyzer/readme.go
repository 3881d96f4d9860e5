package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github-static-scout/internal/adapter/llm"
	"github-static-scout/internal/domain"
	"github-static-scout/internal/metrics"
	"github-static-scout/internal/port"
	"github-static-scout/internal/scoring"
)

const readmeSystemPrompt = "你是一个专业的GitHub项目分析助手，擅长识别静态部署项目和提取预览信息。"

// NewReadmeAnalyzer 有模型就用模型 (失败兜底到关键词)，没有就只用关键词
func NewReadmeAnalyzer(model port.LanguageModel, logger *slog.Logger) port.ReadmeAnalyzer {
	if model == nil {
		return HeuristicReadmeAnalyzer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelReadmeAnalyzer{model: model, logger: logger}
}

// HeuristicReadmeAnalyzer 关键词匹配，纯计算
type HeuristicReadmeAnalyzer struct{}

func (HeuristicReadmeAnalyzer) Analyze(_ context.Context, _ string, content string) domain.ReadmeSignal {
	return scoring.AnalyzeText(content)
}

// ModelReadmeAnalyzer 调用大模型判断，任何失败都回退到关键词匹配
type ModelReadmeAnalyzer struct {
	model  port.LanguageModel
	logger *slog.Logger
}

func (a *ModelReadmeAnalyzer) Analyze(ctx context.Context, repoName, content string) domain.ReadmeSignal {
	if content == "" {
		return scoring.AnalyzeText(content)
	}

	raw, err := a.model.Complete(ctx, readmeSystemPrompt, buildReadmePrompt(repoName, scoring.TruncateForModel(content)))
	if err == nil {
		var signal domain.ReadmeSignal
		if err = llm.DecodeJSON(raw, &signal); err == nil {
			return scoring.NormalizeReadmeSignal(signal)
		}
	}

	a.logger.Warn("readme model analysis failed, using keyword fallback", "repo", repoName, "error", err)
	metrics.RecordFallback("readme")
	return scoring.AnalyzeText(content)
}

func buildReadmePrompt(repoName, content string) string {
	return fmt.Sprintf(`
请分析以下GitHub仓库的README内容，判断它是否是静态部署项目，并提取相关信息：

仓库名称: %s
README内容:
%s

请以JSON格式返回分析结果：
{
  "isStaticDeploy": boolean,
  "hasPreviewUrl": boolean,
  "hasDeployButtons": boolean,
  "previewUrls": string[],
  "deployPlatforms": string[],
  "confidence": number,
  "summary": string
}

判断标准：
1. 静态部署项目：可以直接运行或部署的前端项目，包括个人博客、作品集、画廊、游戏、静态网站、文档网站、展示页面。
2. 需要后端服务、数据库、服务端 API 的项目不算静态部署项目。
3. 预览地址：Live demo、preview、在线演示链接、部署后的访问地址。
4. 部署按钮：Vercel、Netlify、GitHub Pages 等一键部署按钮或明确的部署说明。
5. confidence 取值 0 到 1。

请直接返回 JSON，不要包含 Markdown 格式标记。
`, repoName, content)
}
