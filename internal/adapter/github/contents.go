package github

import (
	"context"
	"log/slog"
	"net/http"

	"github-static-scout/internal/common"
	"github-static-scout/internal/domain"
	"github-static-scout/internal/metrics"

	"github.com/google/go-github/v53/github"
)

// ContentFetcher 实现了 port.ContentFetcher 接口
type ContentFetcher struct {
	client *github.Client
	logger *slog.Logger
	retry  []common.Option
}

func NewContentFetcher(client *github.Client, logger *slog.Logger, retry ...common.Option) *ContentFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentFetcher{client: client, logger: logger, retry: retry}
}

// ReadmeContent 拉取 README 并做 base64 解码
func (f *ContentFetcher) ReadmeContent(ctx context.Context, owner, repo string) (string, error) {
	var content string
	err := common.Do(ctx, func() error {
		readme, resp, apiErr := f.client.Repositories.GetReadme(ctx, owner, repo, nil)
		if apiErr != nil {
			return classify(ctx, resp, apiErr)
		}
		decoded, decodeErr := readme.GetContent()
		if decodeErr != nil {
			return common.Permanent(decodeErr)
		}
		content = decoded
		return nil
	}, f.retry...)
	metrics.RecordContent("readme", err)
	if err != nil {
		return "", common.WrapError(common.ErrCodeGitHubAPI, "failed to fetch README of "+owner+"/"+repo, err)
	}
	return content, nil
}

// RootEntries 根目录下的文件/目录名
func (f *ContentFetcher) RootEntries(ctx context.Context, owner, repo string) ([]string, error) {
	var entries []string
	err := common.Do(ctx, func() error {
		_, dir, resp, apiErr := f.client.Repositories.GetContents(ctx, owner, repo, "", nil)
		if apiErr != nil {
			return classify(ctx, resp, apiErr)
		}
		entries = make([]string, 0, len(dir))
		for _, item := range dir {
			entries = append(entries, item.GetName())
		}
		return nil
	}, f.retry...)
	metrics.RecordContent("listing", err)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, "failed to list root of "+owner+"/"+repo, err)
	}
	return entries, nil
}

// FileContent 404 视为文件不存在，不算错误
func (f *ContentFetcher) FileContent(ctx context.Context, owner, repo, path string) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)
	err := common.Do(ctx, func() error {
		file, _, resp, apiErr := f.client.Repositories.GetContents(ctx, owner, repo, path, nil)
		if apiErr != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil
			}
			return classify(ctx, resp, apiErr)
		}
		if file == nil {
			// 路径是目录
			return nil
		}
		decoded, decodeErr := file.GetContent()
		if decodeErr != nil {
			return common.Permanent(decodeErr)
		}
		data, found = []byte(decoded), true
		return nil
	}, f.retry...)
	metrics.RecordContent("file", err)
	if err != nil {
		return nil, false, common.WrapError(common.ErrCodeGitHubAPI, "failed to fetch "+path+" of "+owner+"/"+repo, err)
	}
	return data, found, nil
}

// Repository 单个仓库的元数据，给调试命令用
func (f *ContentFetcher) Repository(ctx context.Context, owner, repo string) (domain.Repo, error) {
	var result domain.Repo
	err := common.Do(ctx, func() error {
		item, resp, apiErr := f.client.Repositories.Get(ctx, owner, repo)
		if apiErr != nil {
			return classify(ctx, resp, apiErr)
		}
		result = convertRepo(item)
		return nil
	}, f.retry...)
	if err != nil {
		return domain.Repo{}, common.WrapError(common.ErrCodeGitHubAPI, "failed to get "+owner+"/"+repo, err)
	}
	return result, nil
}
