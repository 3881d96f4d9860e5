package analyzer

import (
	"context"
	"log/slog"
	"strings"

	"github-static-scout/internal/domain"
	"github-static-scout/internal/port"
	"github-static-scout/internal/scoring"
)

const manifestFile = "package.json"

// FileStructureProbe 根目录列表 + package.json，失败时返回全 false / 0 的结果
type FileStructureProbe struct {
	fetcher port.ContentFetcher
	logger  *slog.Logger
}

func NewFileStructureProbe(fetcher port.ContentFetcher, logger *slog.Logger) *FileStructureProbe {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStructureProbe{fetcher: fetcher, logger: logger}
}

// Probe 从不返回错误
func (p *FileStructureProbe) Probe(ctx context.Context, owner, repo string) domain.FileStructureSignal {
	signal, _ := p.probe(ctx, owner, repo)
	return signal
}

// probe complete 为 false 表示有请求失败，结果不应该被缓存
func (p *FileStructureProbe) probe(ctx context.Context, owner, repo string) (domain.FileStructureSignal, bool) {
	entries, err := p.fetcher.RootEntries(ctx, owner, repo)
	if err != nil {
		p.logger.Debug("root listing failed", "repo", owner+"/"+repo, "error", err)
		return scoring.EmptyFileStructure(), false
	}

	if !hasEntry(entries, manifestFile) {
		return scoring.EvaluateFileStructure(entries, nil), true
	}

	data, found, err := p.fetcher.FileContent(ctx, owner, repo, manifestFile)
	if err != nil {
		// 拿不到依赖列表就无法做后端否决，按请求失败处理
		p.logger.Debug("manifest fetch failed", "repo", owner+"/"+repo, "error", err)
		return scoring.EmptyFileStructure(), false
	}
	if !found {
		return scoring.EvaluateFileStructure(entries, nil), true
	}

	manifest, err := scoring.ParseManifest(data)
	if err != nil {
		// 解析不了的 package.json 当作没有
		p.logger.Debug("manifest is not valid JSON", "repo", owner+"/"+repo, "error", err)
		manifest = nil
	}
	return scoring.EvaluateFileStructure(entries, manifest), true
}

func hasEntry(entries []string, name string) bool {
	for _, e := range entries {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}
