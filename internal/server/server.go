// Package server 基于 echo 的 HTTP 入口：SSE 检索接口 + 健康检查 + 指标
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github-static-scout/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Streamer 一次检索对应一条事件流
type Streamer interface {
	Stream(ctx context.Context, req domain.StreamRequest) <-chan domain.Event
}

type Server struct {
	echo     *echo.Echo
	streamer Streamer
	logger   *slog.Logger
}

func New(streamer Streamer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{echo: e, streamer: streamer, logger: logger}
	e.GET("/api/search", s.handleSearch)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s
}

// Handler 便于测试直接 ServeHTTP
func (s *Server) Handler() http.Handler { return s.echo }

// Start 阻塞直到服务关闭；正常关闭不返回错误
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleSearch GET /api/search，以 text/event-stream 推送事件，每条事件一帧
func (s *Server) handleSearch(c echo.Context) error {
	req, err := parseStreamRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// 客户端断开或写失败时都要让流水线停下来
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	logger := s.logger.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	started := time.Now()
	count := 0

	for ev := range s.streamer.Stream(ctx, req) {
		if err := writeEvent(c.Response(), ev); err != nil {
			logger.Info("client disconnected", "error", err)
			return nil
		}
		count++
	}
	logger.Info("search stream closed",
		"query", req.Query.QueryString(),
		"events", count,
		"elapsed", time.Since(started))
	return nil
}

func writeEvent(w *echo.Response, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// parseStreamRequest query 支持逗号或空格分隔的多个关键词
func parseStreamRequest(c echo.Context) (domain.StreamRequest, error) {
	var req domain.StreamRequest

	req.Query.Keywords = strings.FieldsFunc(c.QueryParam("query"), func(r rune) bool {
		return r == ',' || r == '，' || r == ' ' || r == '\t'
	})
	req.Query.Language = strings.TrimSpace(c.QueryParam("language"))
	req.Query.MinStars = strings.TrimSpace(c.QueryParam("stars"))
	req.AIFilterText = strings.TrimSpace(c.QueryParam("aiFilter"))

	perPage, err := intParam(c, "per_page")
	if err != nil {
		return req, err
	}
	req.Query.PerPage = perPage

	page := c.QueryParam("start_page")
	if page == "" {
		page = c.QueryParam("page")
	}
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return req, errors.New("page must be a positive integer")
		}
		req.Query.StartPage = n
	}

	if v := c.QueryParam("static_only"); v != "" {
		staticOnly, err := strconv.ParseBool(v)
		if err != nil {
			return req, errors.New("static_only must be a boolean")
		}
		req.StaticOnly = staticOnly
	}
	return req, nil
}

func intParam(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
