// Package metrics Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 应用指标
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 工具目录
	ToolUpsertsTotal *prometheus.CounterVec

	// 爬虫
	CrawlerRunsTotal *prometheus.CounterVec
	CrawlerURLsTotal *prometheus.CounterVec

	// CASL 缓存
	CASLCacheTotal *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ToolUpsertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolhub_tool_upserts_total",
				Help: "Total number of toolinfo upserts by origin and outcome",
			},
			[]string{"origin", "outcome"},
		),
		CrawlerRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolhub_crawler_runs_total",
				Help: "Total number of crawler runs",
			},
			[]string{"status"},
		),
		CrawlerURLsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolhub_crawler_urls_total",
				Help: "Total number of crawled URLs by result",
			},
			[]string{"result"},
		),
		CASLCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolhub_casl_cache_total",
				Help: "CASL rule cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ToolUpsertsTotal,
		m.CrawlerRunsTotal,
		m.CrawlerURLsTotal,
		m.CASLCacheTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry 指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordUpsert 记录一次工具写入结果，nil 接收者安全
func (m *Metrics) RecordUpsert(origin string, created, updated bool, err error) {
	if m == nil {
		return
	}
	outcome := "unchanged"
	switch {
	case err != nil:
		outcome = "error"
	case created:
		outcome = "created"
	case updated:
		outcome = "updated"
	}
	m.ToolUpsertsTotal.WithLabelValues(origin, outcome).Inc()
}

// RecordCrawlerRun 记录一次爬虫运行
func (m *Metrics) RecordCrawlerRun(status string) {
	if m == nil {
		return
	}
	m.CrawlerRunsTotal.WithLabelValues(status).Inc()
}

// RecordCrawledURL 记录单个 URL 的抓取结果
func (m *Metrics) RecordCrawledURL(result string) {
	if m == nil {
		return
	}
	m.CrawlerURLsTotal.WithLabelValues(result).Inc()
}

// RecordCASLCache 记录 CASL 缓存命中情况
func (m *Metrics) RecordCASLCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CASLCacheTotal.WithLabelValues(result).Inc()
}
