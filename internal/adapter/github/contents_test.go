package github

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github-static-scout/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoded(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestContentFetcher_ReadmeContent(t *testing.T) {
	_, client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/site/readme", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"file","encoding":"base64","name":"README.md","content":"` + encoded("# Site\nDemo: https://site.vercel.app") + `"}`))
	})
	fetcher := NewContentFetcher(client, nil, common.WithMaxRetries(0))

	content, err := fetcher.ReadmeContent(context.Background(), "alice", "site")
	require.NoError(t, err)
	assert.Equal(t, "# Site\nDemo: https://site.vercel.app", content)
}

func TestContentFetcher_ReadmeNotFound(t *testing.T) {
	var requests atomic.Int32
	_, client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})
	fetcher := NewContentFetcher(client, nil, common.WithMaxRetries(3), common.WithInitialDelay(time.Millisecond))

	_, err := fetcher.ReadmeContent(context.Background(), "alice", "empty")
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeGitHubAPI, common.CodeOf(err))
	assert.Equal(t, int32(1), requests.Load(), "404 不应该重试")
}

func TestContentFetcher_RootEntries(t *testing.T) {
	_, client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/site/contents/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"type":"file","name":"index.html","path":"index.html"},
			{"type":"dir","name":"public","path":"public"},
			{"type":"file","name":"package.json","path":"package.json"}
		]`))
	})
	fetcher := NewContentFetcher(client, nil, common.WithMaxRetries(0))

	entries, err := fetcher.RootEntries(context.Background(), "alice", "site")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "public", "package.json"}, entries)
}

func TestContentFetcher_RootEntriesError(t *testing.T) {
	_, client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	fetcher := NewContentFetcher(client, nil, common.WithMaxRetries(0))

	entries, err := fetcher.RootEntries(context.Background(), "alice", "site")
	assert.Error(t, err)
	assert.Nil(t, entries)
}

func TestContentFetcher_FileContent(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		expectFound bool
		expectData  string
		expectError bool
	}{
		{
			name: "文件存在",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/alice/site/contents/package.json", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"type":"file","encoding":"base64","name":"package.json","content":"` + encoded(`{"scripts":{"build":"vite build"}}`) + `"}`))
			},
			expectFound: true,
			expectData:  `{"scripts":{"build":"vite build"}}`,
		},
		{
			name: "文件不存在",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found"}`))
			},
			expectFound: false,
		},
		{
			name: "服务端错误",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := setupMockGitHubServer(t, tt.handler)
			fetcher := NewContentFetcher(client, nil, common.WithMaxRetries(0))

			data, found, err := fetcher.FileContent(context.Background(), "alice", "site", "package.json")
			if tt.expectError {
				assert.Error(t, err)
				assert.False(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectFound, found)
			if tt.expectFound {
				assert.Equal(t, tt.expectData, string(data))
			} else {
				assert.Nil(t, data)
			}
		})
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseURL: "://bad"})
	assert.Error(t, err)
}

func TestNewClient_RateLimited(t *testing.T) {
	client, err := NewClient(ClientOptions{Token: "t", RequestsPerSecond: 2, Burst: 0})
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", client.BaseURL.String())
}

func TestContentFetcher_Repository(t *testing.T) {
	_, client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/site", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 7,
			"full_name": "alice/site",
			"homepage": "https://alice.dev",
			"topics": ["portfolio", "nextjs"],
			"stargazers_count": 88,
			"owner": {"login": "alice"}
		}`))
	})
	fetcher := NewContentFetcher(client, nil, common.WithMaxRetries(0))

	repo, err := fetcher.Repository(context.Background(), "alice", "site")
	require.NoError(t, err)
	assert.Equal(t, "alice/site", repo.FullName)
	assert.Equal(t, "alice", repo.Owner)
	assert.Equal(t, 88, repo.Stars)
	require.NotNil(t, repo.Homepage)
	assert.Equal(t, "https://alice.dev", *repo.Homepage)
	assert.Equal(t, []string{"portfolio", "nextjs"}, repo.Topics)
}
