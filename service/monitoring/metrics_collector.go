/*
 * @module service/monitoring/metrics_collector
 * @description 指标收集器，记录刷新任务和外部数据源请求的Prometheus指标
 * @architecture 分层架构 - 基础设施层
 * @stateFlow 指标定义 -> 业务代码上报 -> /metrics 暴露
 * @rules 指标名统一使用 countries_ 前缀
 * @dependencies github.com/prometheus/client_golang
 */

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 刷新结果标签
const (
	RefreshResultSuccess     = "success"
	RefreshResultUnavailable = "unavailable"
	RefreshResultError       = "error"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "countries",
		Name:      "refresh_total",
		Help:      "刷新任务执行次数",
	}, []string{"result"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "countries",
		Name:      "refresh_duration_seconds",
		Help:      "刷新任务耗时",
		Buckets:   prometheus.DefBuckets,
	})

	storedCountries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "countries",
		Name:      "stored_total",
		Help:      "最近一次刷新后的国家记录数",
	})

	summaryRenderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "countries",
		Name:      "summary_render_failures_total",
		Help:      "汇总图片生成失败次数",
	})

	externalFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "countries",
		Name:      "external_fetch_duration_seconds",
		Help:      "外部数据源请求耗时",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	}, []string{"source"})

	externalFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "countries",
		Name:      "external_fetch_failures_total",
		Help:      "外部数据源请求失败次数",
	}, []string{"source"})
)

// ObserveRefresh 记录一次刷新
func ObserveRefresh(result string, duration time.Duration) {
	refreshTotal.WithLabelValues(result).Inc()
	refreshDuration.Observe(duration.Seconds())
}

// SetStoredCountries 记录当前记录数
func SetStoredCountries(total int64) {
	storedCountries.Set(float64(total))
}

// IncSummaryRenderFailure 记录汇总图片生成失败
func IncSummaryRenderFailure() {
	summaryRenderFailures.Inc()
}

// ObserveExternalFetch 记录外部请求耗时
func ObserveExternalFetch(source string, duration time.Duration) {
	externalFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// IncExternalFetchFailure 记录外部请求失败
func IncExternalFetchFailure(source string) {
	externalFetchFailures.WithLabelValues(source).Inc()
}
