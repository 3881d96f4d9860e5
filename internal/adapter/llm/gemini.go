package llm

import (
	"context"
	"fmt"
	"strings"

	"github-static-scout/internal/common"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32, maxTokens int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   int32(maxTokens),
	}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(g.temperature)
	if g.maxTokens > 0 {
		model.SetMaxOutputTokens(g.maxTokens)
	}
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "gemini 调用失败", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", common.NewError(common.ErrCodeAIProcessing, "gemini 返回内容为空")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", common.NewError(common.ErrCodeAIProcessing, fmt.Sprintf("gemini 返回格式错误: %d parts", len(resp.Candidates[0].Content.Parts)))
	}
	return sb.String(), nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}
