package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github-static-scout/internal/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type scanOptions struct {
	language   string
	stars      string
	perPage    int
	startPage  int
	aiFilter   string
	staticOnly bool
	jsonOutput bool
}

var scanOpts scanOptions

var scanCmd = &cobra.Command{
	Use:   "scan <keywords...>",
	Short: "Run one search in the terminal and print events as they arrive",
	Example: `  static-scout scan portfolio --language TypeScript --stars ">100"
  static-scout scan blog template --filter "只显示 React 项目" --static-only
  static-scout scan hugo theme --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		failed := false
		for ev := range app.stream.Stream(ctx, scanOpts.request(args)) {
			if err := printEvent(os.Stdout, ev, scanOpts.jsonOutput); err != nil {
				return err
			}
			if ev.Type == domain.EventError {
				failed = true
			}
		}
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "\n👋 已取消")
			return nil
		}
		if failed {
			return fmt.Errorf("检索失败")
		}
		return nil
	},
}

func init() {
	f := scanCmd.Flags()
	f.StringVarP(&scanOpts.language, "language", "l", "", "限定语言，例如 TypeScript")
	f.StringVarP(&scanOpts.stars, "stars", "s", "", "stars 限定，例如 \">100\" 或 \"10..500\"")
	f.IntVar(&scanOpts.perPage, "per-page", 0, "首页条数 (1-100)，默认使用配置")
	f.IntVar(&scanOpts.startPage, "page", 1, "起始页")
	f.StringVarP(&scanOpts.aiFilter, "filter", "f", "", "自然语言筛选条件")
	f.BoolVar(&scanOpts.staticOnly, "static-only", false, "只输出可以直接静态部署的项目")
	f.BoolVar(&scanOpts.jsonOutput, "json", false, "每个事件输出一行 JSON")
}

func (o scanOptions) request(keywords []string) domain.StreamRequest {
	return domain.StreamRequest{
		Query: domain.SearchQuery{
			Keywords:  keywords,
			Language:  o.language,
			MinStars:  o.stars,
			StartPage: o.startPage,
			PerPage:   o.perPage,
		},
		AIFilterText: strings.TrimSpace(o.aiFilter),
		StaticOnly:   o.staticOnly,
	}
}

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// printEvent 终端输出: 默认彩色单行，--json 时每行一个事件
func printEvent(w io.Writer, ev domain.Event, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var err error
	switch ev.Type {
	case domain.EventStage:
		_, err = fmt.Fprintf(w, "%s\n", cyan("== "+string(ev.Stage)+" =="))
	case domain.EventTotalCount:
		_, err = fmt.Fprintf(w, "📚 共找到 %d 个仓库\n", *ev.TotalCount)
	case domain.EventResult:
		_, err = fmt.Fprintln(w, formatResult(ev.Result))
	case domain.EventError:
		_, err = fmt.Fprintf(w, "%s %s\n", red("❌ 错误:"), ev.Message)
	case domain.EventEnd:
		_, err = fmt.Fprintln(w, green("🎉 完成"))
	}
	return err
}

func formatResult(r *domain.RepoResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  ⭐ %d", yellow(r.FullName), r.Stars)
	if r.Language != "" {
		fmt.Fprintf(&b, "  %s", gray(r.Language))
	}

	if a := r.ComprehensiveAnalysis; a != nil {
		final := a.FinalAssessment
		verdict := gray("非静态")
		if final.IsStaticDeploy {
			verdict = green("静态")
		}
		fmt.Fprintf(&b, "  %s %.0f%%", verdict, final.Confidence*100)
		if len(a.CombinedPreviewURLs) > 0 {
			fmt.Fprintf(&b, "  🔗 %s", a.CombinedPreviewURLs[0])
		}
	}
	if f := r.AIFilter; f != nil {
		mark := red("✗")
		if f.Matches {
			mark = green("✓")
		}
		fmt.Fprintf(&b, "  筛选 %s %.2f", mark, f.Score)
	}
	return b.String()
}
