package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpDurationHistogram   *prometheus.HistogramVec
	routingDecisionCounter  *prometheus.CounterVec
	routingRejectionCounter *prometheus.CounterVec
	settlementCounter       *prometheus.CounterVec
	idempotencyCounter      *prometheus.CounterVec
	workerRunCounter        *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		routingDecisionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_routing_decisions_total",
			Help: "Transfer routing resolutions by mode",
		}, []string{"mode"})

		routingRejectionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_routing_rejections_total",
			Help: "Transfer requests rejected by the routing resolver or builder",
		}, []string{"reason"})

		settlementCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_transitions_total",
			Help: "Channel transfer settlement outcomes",
		}, []string{"result"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			routingDecisionCounter,
			routingRejectionCounter,
			settlementCounter,
			idempotencyCounter,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementRoutingDecision(mode string) {
	if routingDecisionCounter == nil {
		return
	}
	routingDecisionCounter.WithLabelValues(mode).Inc()
}

func IncrementRoutingRejection(reason string) {
	if routingRejectionCounter == nil {
		return
	}
	routingRejectionCounter.WithLabelValues(reason).Inc()
}

func IncrementSettlement(result string) {
	if settlementCounter == nil {
		return
	}
	settlementCounter.WithLabelValues(result).Inc()
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
