package llm

import (
	"context"

	"github-static-scout/internal/common"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient 也用于 ollama 等兼容 OpenAI 协议的服务
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	jsonMode    bool
}

func NewOpenAIClient(apiKey, model, baseURL string, temperature float32, maxTokens int) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		jsonMode:    baseURL == "",
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	// 官方接口支持 json_object，兼容服务不一定支持
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "openai 调用失败", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", common.NewError(common.ErrCodeAIProcessing, "openai 返回内容为空")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Close() error { return nil }
