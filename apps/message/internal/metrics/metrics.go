// Package metrics 私信服务的 Prometheus 指标，注册到默认 Registry，由 /metrics 暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "market"
	subsystem = "message"
)

var (
	// HTTPRequestsTotal HTTP 请求数
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// MessagesSent 发送成功的消息数
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "messages_sent_total",
		Help:      "Messages appended to threads.",
	})

	// ThreadsCreated 新建会话数，kind=direct|group
	ThreadsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "threads_created_total",
		Help:      "Threads created by kind.",
	}, []string{"kind"})

	// FlagsCreated 新建举报数
	FlagsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "flags_created_total",
		Help:      "Message flags created.",
	})

	// RateLimited 被限流的请求，scope=user|ip
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"scope"})

	// CacheRetries 缓存失效重放结果，result=success|requeue|dropped
	CacheRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "cache_retry_total",
		Help:      "Replayed cache invalidation tasks by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		MessagesSent,
		ThreadsCreated,
		FlagsCreated,
		RateLimited,
		CacheRetries,
	)
}
