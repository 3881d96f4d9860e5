package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type GitHubConfig struct {
	Token             string  `toml:"token"`
	BaseURL           string  `toml:"base_url"` // 为空时使用 api.github.com，测试 / GHES 时可覆盖
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	MaxRetries        int     `toml:"max_retries"`
	RetryDelayMillis  int     `toml:"retry_delay_ms"`
}

// RetryDelay 首次重试前的等待时间
func (g GitHubConfig) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelayMillis) * time.Millisecond
}

type LLMConfig struct {
	Provider       string  `toml:"provider"` // gemini / openai / claude / ollama
	Model          string  `toml:"model"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Temperature    float32 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Enabled 没有凭证时所有分析器都走确定性的兜底逻辑 (ollama 不需要 key)
func (l LLMConfig) Enabled() bool {
	if strings.EqualFold(l.Provider, "ollama") {
		return l.BaseURL != ""
	}
	return l.Provider != "" && l.APIKey != ""
}

// Timeout 单次模型调用超时
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

type PipelineConfig struct {
	Concurrency          int `toml:"concurrency"`
	EnrichTimeoutSeconds int `toml:"enrich_timeout_seconds"`
	DefaultPerPage       int `toml:"default_per_page"`
}

// EnrichTimeout 单个仓库分析的超时时间
func (p PipelineConfig) EnrichTimeout() time.Duration {
	return time.Duration(p.EnrichTimeoutSeconds) * time.Second
}

type StoreConfig struct {
	DSN string `toml:"dsn"`
}

type NotifyConfig struct {
	FeishuWebhook string  `toml:"feishu_webhook"`
	MinConfidence float64 `toml:"min_confidence"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text / json
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	GitHub   GitHubConfig   `toml:"github"`
	LLM      LLMConfig      `toml:"llm"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Store    StoreConfig    `toml:"store"`
	Notify   NotifyConfig   `toml:"notify"`
	Log      LogConfig      `toml:"log"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		GitHub: GitHubConfig{
			RequestsPerSecond: 5,
			Burst:             5,
			MaxRetries:        2,
			RetryDelayMillis:  500,
		},
		LLM: LLMConfig{
			Temperature:    0.3,
			MaxTokens:      1000,
			TimeoutSeconds: 30,
		},
		Pipeline: PipelineConfig{
			Concurrency:          3,
			EnrichTimeoutSeconds: 30,
			DefaultPerPage:       100,
		},
		Notify: NotifyConfig{MinConfidence: 0.8},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// LoadDotEnv 读取 .env，文件不存在不算错误
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "⚠️ 读取 .env 失败: %v\n", err)
	}
}

// Load 读取 TOML 配置文件 (path 为空则只用默认值)，再用环境变量覆盖
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.resolveLLM(os.Getenv)
	return cfg, cfg.Validate()
}

// ApplyEnv 环境变量覆盖配置文件
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString(&c.Server.Port, getenv("PORT"))
	setString(&c.GitHub.Token, getenv("GITHUB_TOKEN"))
	setString(&c.GitHub.BaseURL, getenv("GITHUB_API_URL"))
	setFloat(&c.GitHub.RequestsPerSecond, getenv("GITHUB_RPS"))
	setInt(&c.GitHub.MaxRetries, getenv("GITHUB_MAX_RETRIES"))
	setString(&c.LLM.Provider, getenv("LLM_PROVIDER"))
	setString(&c.LLM.Model, getenv("LLM_MODEL"))
	setString(&c.LLM.APIKey, getenv("LLM_API_KEY"))
	setString(&c.LLM.BaseURL, getenv("LLM_BASE_URL"))
	setInt(&c.Pipeline.Concurrency, getenv("ANALYZE_CONCURRENCY"))
	setString(&c.Store.DSN, getenv("DATABASE_DSN"))
	setString(&c.Notify.FeishuWebhook, getenv("FEISHU_WEBHOOK"))
	setString(&c.Log.Level, getenv("LOG_LEVEL"))
	setString(&c.Log.Format, getenv("LOG_FORMAT"))
}

// providerKeys 各家模型服务约定俗成的环境变量
var providerKeys = []struct {
	provider string
	env      string
	model    string
}{
	{"openai", "OPENAI_API_KEY", "gpt-4o-mini"},
	{"gemini", "GEMINI_API_KEY", "gemini-2.5-flash-lite"},
	{"claude", "ANTHROPIC_API_KEY", "claude-3-5-haiku-latest"},
}

// resolveLLM 未显式指定 provider 时，按已配置的 key 推断
func (c *Config) resolveLLM(getenv func(string) string) {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	for _, pk := range providerKeys {
		key := getenv(pk.env)
		if c.LLM.Provider == "" && c.LLM.APIKey == "" && key != "" {
			c.LLM.Provider = pk.provider
		}
		if c.LLM.Provider == pk.provider {
			if c.LLM.APIKey == "" {
				c.LLM.APIKey = key
			}
			if c.LLM.Model == "" {
				c.LLM.Model = pk.model
			}
		}
	}
	if c.LLM.Provider == "ollama" {
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "http://localhost:11434"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "llama3.1"
		}
	}
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "", "gemini", "openai", "claude", "ollama":
	default:
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be positive, got %d", c.Pipeline.Concurrency)
	}
	if c.Pipeline.DefaultPerPage <= 0 || c.Pipeline.DefaultPerPage > 100 {
		return fmt.Errorf("pipeline.default_per_page must be within 1..100, got %d", c.Pipeline.DefaultPerPage)
	}
	if c.GitHub.RequestsPerSecond < 0 {
		return fmt.Errorf("github.requests_per_second must not be negative")
	}
	return nil
}

// NewLogger 按配置构造 slog.Logger
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v string) {
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setFloat(dst *float64, v string) {
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}
