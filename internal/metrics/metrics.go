package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics tracks processing volume and outcomes.
type WorkerMetrics struct {
	emailsProcessed *prometheus.CounterVec
	rpcCalls        *prometheus.CounterVec
	ignoredSenders  prometheus.Counter
}

func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		emailsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "myship_emails_processed_total",
			Help: "Total number of inbound emails processed, by type and outcome",
		}, []string{"type", "outcome"}),
		rpcCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "myship_rpc_calls_total",
			Help: "Total number of remote procedure calls, by procedure and result",
		}, []string{"procedure", "result"}),
		ignoredSenders: promauto.NewCounter(prometheus.CounterOpts{
			Name: "myship_ignored_senders_total",
			Help: "Total number of inbound emails ignored because the sender is not allow-listed",
		}),
	}
}

func (m *WorkerMetrics) EmailProcessed(emailType, outcome string) {
	if m == nil {
		return
	}
	m.emailsProcessed.WithLabelValues(emailType, outcome).Inc()
}

func (m *WorkerMetrics) RPCCall(procedure string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.rpcCalls.WithLabelValues(procedure, result).Inc()
}

func (m *WorkerMetrics) SenderIgnored() {
	if m == nil {
		return
	}
	m.ignoredSenders.Inc()
}
