package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 测验完成次数
	QuizCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edureach_quiz_completions_total",
			Help: "Total number of completed quiz attempts",
		},
		[]string{"quiz_id"},
	)

	// 离线内容状态迁移，transition: started/completed/cancelled/deleted
	OfflineTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edureach_offline_transitions_total",
			Help: "Offline content state transitions",
		},
		[]string{"transition"},
	)

	// 当前实例上的下载进度 websocket 连接数
	ProgressClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edureach_progress_ws_clients",
			Help: "Connected offline progress websocket clients",
		},
	)

	// 推送的进度消息，direction: in/out
	ProgressMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edureach_progress_ws_messages_total",
			Help: "Offline progress websocket messages",
		},
		[]string{"type", "direction"},
	)

	TutorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edureach_tutor_requests_total",
			Help: "AI tutor requests by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Init 注册全部指标，重复调用无副作用
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			QuizCompletions,
			OfflineTransitions,
			ProgressClients,
			ProgressMessages,
			TutorRequests,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
