package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github-static-scout/internal/common"
	"github-static-scout/internal/domain"
)

// Notifier 实现了 port.Notifier 接口
type Notifier struct {
	webhookURL string
	client     *http.Client
	retry      []common.Option
}

func NewNotifier(webhook string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if webhook == "" {
		logger.Warn("⚠️ 飞书 Webhook 为空，推送功能将无法工作！")
	}
	return &Notifier{
		webhookURL: webhook,
		client:     &http.Client{Timeout: 10 * time.Second},
		retry: []common.Option{
			common.WithMaxRetries(3),
			common.WithInitialDelay(500 * time.Millisecond),
		},
	}
}

// Notify 发送飞书卡片消息 (Schema 2.0)
func (n *Notifier) Notify(ctx context.Context, result *domain.RepoResult) error {
	if n.webhookURL == "" {
		return common.NewError(common.ErrCodeNotification, "Webhook URL 为空")
	}

	body, err := json.Marshal(buildCard(result))
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "构造卡片失败", err)
	}

	// 发送请求 (带重试机制)
	err = common.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if reqErr != nil {
			return common.Permanent(reqErr)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, postErr := n.client.Do(req)
		if postErr != nil {
			return postErr
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("飞书 API 报错: 状态码 %d", resp.StatusCode)
		}
		return nil
	}, n.retry...)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "发送请求失败", err)
	}
	return nil
}

func buildCard(result *domain.RepoResult) map[string]interface{} {
	title := fmt.Sprintf("🚀 发现可直接部署的项目: %s", result.FullName)

	var (
		confidence float64
		summary    = "暂无分析结果"
		platforms  = "-"
		previews   = "-"
	)
	if a := result.ComprehensiveAnalysis; a != nil {
		confidence = a.FinalAssessment.Confidence
		summary = a.FinalAssessment.Summary
		if len(a.FinalAssessment.DeployPlatforms) > 0 {
			platforms = strings.Join(a.FinalAssessment.DeployPlatforms, " / ")
		}
		if len(a.CombinedPreviewURLs) > 0 {
			previews = strings.Join(a.CombinedPreviewURLs, "\n")
		}
	}

	mdContent := fmt.Sprintf(`**⭐ Stars:** %d  |  **语言:** %s  |  **更新日期:** %s
**🏆 静态部署置信度:** %.0f%%

**📝 项目描述:**
%s

**🤖 分析结论:**
%s

**☁️ 部署平台:** %s

**🔗 预览地址:**
%s
`,
		result.Stars, result.Language, result.UpdatedAt.Format("2006-01-02"),
		confidence*100,
		result.Description,
		summary,
		platforms,
		previews)

	elements := []map[string]interface{}{
		{
			"tag":       "markdown",
			"content":   mdContent,
			"text_size": "normal",
		},
		openURLButton("🔗 查看源码", "primary", result.URL),
	}
	if a := result.ComprehensiveAnalysis; a != nil && len(a.CombinedPreviewURLs) > 0 {
		elements = append(elements, openURLButton("👀 在线预览", "default", a.CombinedPreviewURLs[0]))
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"config": map[string]interface{}{
				"update_multi": true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": "green",
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements":  elements,
			},
		},
	}
}

func openURLButton(text, kind, url string) map[string]interface{} {
	return map[string]interface{}{
		"tag": "button",
		"text": map[string]interface{}{
			"tag":     "plain_text",
			"content": text,
		},
		"type": kind,
		"behaviors": []map[string]interface{}{
			{
				"type":        "open_url",
				"default_url": url,
			},
		},
	}
}
