package main

import (
	"fmt"
	"log/slog"
	"os"

	"github-static-scout/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "static-scout",
	Short: "Search GitHub and score repositories for static deployability",
	Long: `static-scout 在 GitHub 上检索仓库，并逐个分析其是否为可以直接静态部署的项目。
结果以事件流的形式推送 (HTTP SSE 或命令行输出)。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			config.LoadDotEnv(envFile)
		} else {
			config.LoadDotEnv()
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		cfg = loaded
		logger = cfg.Log.NewLogger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML 配置文件路径 (可选)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env 文件路径，默认读取当前目录的 .env")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
