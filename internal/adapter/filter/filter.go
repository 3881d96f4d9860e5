package filter

import (
	"log/slog"
	"time"

	"github-static-scout/internal/port"
)

// Engine 实现了 port.FilterEngine 接口
type Engine struct {
	model   port.LanguageModel // 为 nil 时只使用确定性逻辑
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewEngine 创建新的筛选引擎实例
func NewEngine(model port.LanguageModel, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		model:   model,
		logger:  logger,
		nowFunc: time.Now, // 便于测试注入当前时间
	}
}
