package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github-static-scout/internal/config"
	"github-static-scout/internal/port"
)

// Client 带资源释放的模型客户端
type Client interface {
	port.LanguageModel
	Close() error
}

// NewClient 按 provider 构造模型客户端；没有配置凭证时返回 (nil, nil)，
// 调用方据此让所有分析器走确定性逻辑
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	var client Client
	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case "openai":
		client = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens)

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		client = c

	case "claude":
		client = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)

	case "ollama":
		// ollama 走 OpenAI 兼容接口
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		client = NewOpenAIClient(apiKey, cfg.Model, baseURL, cfg.Temperature, cfg.MaxTokens)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}

	logger.Info("language model enabled", "provider", provider, "model", cfg.Model)
	return withTimeout(client, cfg.Timeout()), nil
}

// timeoutClient 给每次调用加上超时
type timeoutClient struct {
	Client
	timeout time.Duration
}

func withTimeout(c Client, timeout time.Duration) Client {
	if timeout <= 0 {
		return c
	}
	return &timeoutClient{Client: c, timeout: timeout}
}

func (t *timeoutClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Client.Complete(ctx, system, prompt)
}
