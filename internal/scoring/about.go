package scoring

import (
	"strings"

	"github-static-scout/internal/domain"
)

// AnalyzeAbout 只依赖搜索结果里已有的元数据，不发起额外请求
func AnalyzeAbout(repo *domain.Repo) domain.AboutSignal {
	signal := domain.AboutSignal{Topics: []string{}}
	if repo == nil {
		return signal
	}

	if repo.Homepage != nil {
		if hp := strings.TrimSpace(*repo.Homepage); hp != "" {
			signal.Homepage = &hp
			signal.HasHomepage = true
		}
	}

	signal.Topics = dedupe(repo.Topics)
	for _, topic := range signal.Topics {
		if containsAny(strings.ToLower(topic), StaticTopicFragments) {
			signal.HasStaticTopics = true
			break
		}
	}
	return signal
}
