package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ClientOptions 构造 GitHub 客户端所需的参数
type ClientOptions struct {
	Token             string
	BaseURL           string  // 为空使用默认的 api.github.com
	RequestsPerSecond float64 // <= 0 表示不限速
	Burst             int
}

// rateLimitedTransport 在发请求前先拿令牌，避免把搜索配额一次打光
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// NewClient 初始化 GitHub 客户端
// token 为空就是匿名访问 (60次/小时)，是否允许匿名由 Searcher.CheckCredentials 决定
func NewClient(opts ClientOptions) (*github.Client, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		transport = &rateLimitedTransport{
			base:    transport,
			limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		}
	}

	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}

	client := github.NewClient(&http.Client{Transport: transport})

	if opts.BaseURL != "" {
		raw := opts.BaseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		baseURL, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base url %q: %w", opts.BaseURL, err)
		}
		client.BaseURL = baseURL
	}
	return client, nil
}
