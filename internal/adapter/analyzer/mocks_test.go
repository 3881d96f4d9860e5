package analyzer

import (
	"context"
	"time"

	"github-static-scout/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockFetcher 模拟 ContentFetcher 接口
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) ReadmeContent(ctx context.Context, owner, repo string) (string, error) {
	args := m.Called(ctx, owner, repo)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) RootEntries(ctx context.Context, owner, repo string) ([]string, error) {
	args := m.Called(ctx, owner, repo)
	entries, _ := args.Get(0).([]string)
	return entries, args.Error(1)
}

func (m *MockFetcher) FileContent(ctx context.Context, owner, repo, path string) ([]byte, bool, error) {
	args := m.Called(ctx, owner, repo, path)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

// MockModel 模拟 LanguageModel 接口
type MockModel struct {
	mock.Mock
}

func (m *MockModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

// MockStore 模拟 AnalysisStore 接口
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, fullName string, at time.Time) (*domain.AnalysisSnapshot, bool, error) {
	args := m.Called(ctx, fullName, at)
	snapshot, _ := args.Get(0).(*domain.AnalysisSnapshot)
	return snapshot, args.Bool(1), args.Error(2)
}

func (m *MockStore) Save(ctx context.Context, fullName string, at time.Time, snapshot *domain.AnalysisSnapshot) error {
	args := m.Called(ctx, fullName, at, snapshot)
	return args.Error(0)
}
