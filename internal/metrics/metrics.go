// Package metrics 暴露给 /metrics 的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "static_scout"

var (
	// SearchPagesTotal 检索分页请求次数，status: ok / failed
	SearchPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_pages_total",
			Help:      "Total number of GitHub search page requests",
		},
		[]string{"kind", "status"},
	)

	// ContentRequestsTotal README / 目录 / 清单文件请求次数
	ContentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_requests_total",
			Help:      "Total number of GitHub content requests",
		},
		[]string{"kind", "status"},
	)

	EnrichDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrich_duration_seconds",
			Help:      "Duration of per-repository analysis in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ModelFallbacksTotal 模型调用失败、退回确定性逻辑的次数
	ModelFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_fallbacks_total",
			Help:      "Total number of model failures that fell back to heuristics",
		},
		[]string{"operation"},
	)

	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_total",
			Help:      "Total number of search streams by outcome",
		},
		[]string{"outcome"},
	)

	ResultsEmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_emitted_total",
			Help:      "Total number of result events emitted",
		},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_lookups_total",
			Help:      "Analysis cache lookups by result (hit / miss / error)",
		},
		[]string{"result"},
	)
)

// RecordPage 记录一次检索分页请求
func RecordPage(kind string, err error) {
	SearchPagesTotal.WithLabelValues(kind, status(err)).Inc()
}

// RecordContent 记录一次内容请求
func RecordContent(kind string, err error) {
	ContentRequestsTotal.WithLabelValues(kind, status(err)).Inc()
}

// RecordFallback 记录一次模型兜底
func RecordFallback(operation string) {
	ModelFallbacksTotal.WithLabelValues(operation).Inc()
}

// RecordStream 记录一次流的最终结果: done / error / canceled
func RecordStream(outcome string) {
	StreamsTotal.WithLabelValues(outcome).Inc()
}

// RecordCache 记录一次缓存查询
func RecordCache(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
