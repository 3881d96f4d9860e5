package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github-static-scout/internal/adapter/analyzer"
	"github-static-scout/internal/adapter/filter"
	"github-static-scout/internal/adapter/github"
	"github-static-scout/internal/adapter/llm"
	"github-static-scout/internal/common"
	"github-static-scout/internal/config"
	"github-static-scout/internal/port"
)

func main() {
	configPath := flag.String("config", "", "TOML 配置文件路径 (可选)")
	aiFilter := flag.String("filter", "", "自然语言筛选条件 (可选)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "用法: %s [-config path] [-filter text] owner/repo\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	config.LoadDotEnv()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ 加载配置失败: %v", err)
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	owner, name, ok := strings.Cut(strings.Trim(flag.Arg(0), "/"), "/")
	if !ok || owner == "" || name == "" {
		log.Fatalf("❌ 仓库格式应为 owner/repo: %s", flag.Arg(0))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// 初始化组件
	client, err := github.NewClient(github.ClientOptions{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
	})
	if err != nil {
		log.Fatalf("❌ GitHub 客户端初始化失败: %v", err)
	}
	fetcher := github.NewContentFetcher(client, logger,
		common.WithMaxRetries(cfg.GitHub.MaxRetries),
		common.WithInitialDelay(cfg.GitHub.RetryDelay()))

	model, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		log.Fatalf("❌ AI 初始化失败: %v", err)
	}
	var languageModel port.LanguageModel
	if model != nil {
		defer model.Close()
		languageModel = model
		fmt.Printf("🧠 使用模型: %s / %s\n", cfg.LLM.Provider, cfg.LLM.Model)
	} else {
		fmt.Println("🧠 未配置模型，使用启发式分析")
	}

	fmt.Printf("🔍 调试模式：分析 %s/%s\n", owner, name)
	repo, err := fetcher.Repository(ctx, owner, name)
	if err != nil {
		log.Fatalf("❌ 获取仓库信息失败: %v", err)
	}
	fmt.Printf("✅ ⭐ %d | 语言: %s | 更新: %s\n", repo.Stars, repo.Language, repo.UpdatedAt.Format("2006-01-02"))

	started := time.Now()
	repoAnalyzer := analyzer.NewRepoAnalyzer(fetcher, analyzer.NewReadmeAnalyzer(languageModel, logger), nil, logger)
	analysis, readme, _ := repoAnalyzer.Analyze(ctx, &repo)
	fmt.Printf("✅ 分析完成，耗时 %s，README %d 字\n", time.Since(started).Round(time.Millisecond), len([]rune(readme)))

	printJSON("综合分析", analysis)

	if *aiFilter != "" {
		engine := filter.NewEngine(languageModel, logger)
		rules := engine.Parse(ctx, *aiFilter)
		printJSON("筛选规则", rules)
		printJSON("筛选结论", engine.Evaluate(ctx, &repo, readme, rules))
	}
}

func printJSON(title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("⚠️ 序列化 %s 失败: %v", title, err)
		return
	}
	fmt.Printf("\n================ [ %s ] ================\n%s\n", title, data)
}
