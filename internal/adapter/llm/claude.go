package llm

import (
	"context"
	"strings"

	"github-static-scout/internal/common"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

type ClaudeClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewClaudeClient(apiKey, model, baseURL string, maxTokens int) *ClaudeClient {
	opts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &ClaudeClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (c *ClaudeClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	// system 提示放在同一条用户消息的最前面
	content := prompt
	if system != "" {
		content = system + "\n\n---\n\n" + prompt
	}

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "claude 调用失败", err)
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", common.NewError(common.ErrCodeAIProcessing, "claude 返回内容为空")
	}
	return sb.String(), nil
}

func (c *ClaudeClient) Close() error { return nil }
