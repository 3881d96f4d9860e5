package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github-static-scout/internal/server"

	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (GET /api/search streams SSE events)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		port := cfg.Server.Port
		if servePort != "" {
			port = servePort
		}

		srv := server.New(app.stream, logger)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(":" + port)
		}()

		fmt.Printf("🚀 服务已启动: http://localhost:%s/api/search\n", port)
		fmt.Println("按下 Ctrl+C 可以优雅停止程序")

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		fmt.Println("\n👋 收到停止信号，正在退出...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️ 关闭服务失败: %v\n", err)
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "监听端口，默认使用配置中的 server.port")
}
