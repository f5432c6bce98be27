// Package metrics exposes Prometheus instrumentation for the chat daemon.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type chatMetrics struct {
	chatRunsTotal   *prometheus.CounterVec
	chatRunDuration *prometheus.HistogramVec

	tokensStreamedTotal     prometheus.Counter
	toolExecutionsTotal     *prometheus.CounterVec
	planStepsCompletedTotal prometheus.Counter

	activeSessions       prometheus.Gauge
	sessionsCreatedTotal prometheus.Counter
}

var (
	metricsOnce sync.Once
	metricsInst *chatMetrics
)

func getMetrics() *chatMetrics {
	metricsOnce.Do(func() {
		m := &chatMetrics{
			chatRunsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_runs_total",
					Help: "Total chat runs by agent mode and status.",
				},
				[]string{"agent_mode", "status"},
			),
			chatRunDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "chat_run_duration_seconds",
					Help:    "Chat run duration in seconds by agent mode.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"agent_mode"},
			),
			tokensStreamedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "tokens_streamed_total",
					Help: "Total token events streamed to clients.",
				},
			),
			toolExecutionsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_executions_total",
					Help: "Total tool executions by tool and status.",
				},
				[]string{"tool", "status"},
			),
			planStepsCompletedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "plan_steps_completed_total",
					Help: "Total plan steps completed.",
				},
			),
			activeSessions: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "active_sessions",
					Help: "Current live session count.",
				},
			),
			sessionsCreatedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "sessions_created_total",
					Help: "Total sessions created.",
				},
			),
		}

		prometheus.MustRegister(
			m.chatRunsTotal,
			m.chatRunDuration,
			m.tokensStreamedTotal,
			m.toolExecutionsTotal,
			m.planStepsCompletedTotal,
			m.activeSessions,
			m.sessionsCreatedTotal,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func Handler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordChatRun(agentMode, status string, duration time.Duration) {
	m := getMetrics()
	m.chatRunsTotal.WithLabelValues(agentMode, status).Inc()
	m.chatRunDuration.WithLabelValues(agentMode).Observe(duration.Seconds())
}

func RecordTokenStreamed() {
	getMetrics().tokensStreamedTotal.Inc()
}

func RecordToolExecution(tool string, success bool) {
	status := "error"
	if success {
		status = "success"
	}
	getMetrics().toolExecutionsTotal.WithLabelValues(tool, status).Inc()
}

func RecordPlanStepCompleted() {
	getMetrics().planStepsCompletedTotal.Inc()
}

func SetActiveSessions(count int) {
	getMetrics().activeSessions.Set(float64(count))
}

func RecordSessionCreated() {
	getMetrics().sessionsCreatedTotal.Inc()
}
