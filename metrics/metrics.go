package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	GateDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_client_gate_denials_total", Help: "Actions denied by stage or role gates"},
		[]string{"action"},
	)
	RemoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_client_remote_calls_total", Help: "Calls to the remote tournament API"},
		[]string{"op", "status"},
	)
	RemoteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "tournament_client_remote_call_seconds", Help: "Remote call latency", Buckets: prometheus.DefBuckets},
		[]string{"op"},
	)
	VoteOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_client_vote_outcomes_total", Help: "Audience vote submission outcomes"},
		[]string{"outcome"},
	)
	CacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournament_client_cache_evictions_total", Help: "Expired tournament cache entries removed by the sweeper"},
	)
)

func Register() {
	prometheus.MustRegister(GateDenials, RemoteCalls, RemoteLatency, VoteOutcomes, CacheEvictions)
}

// Recorder forwards service events to the package counters.
type Recorder struct{}

func (Recorder) ObserveRemoteCall(op string, status int, err error, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "transport_error"
	}
	RemoteCalls.WithLabelValues(op, label).Inc()
	RemoteLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (Recorder) GateDenied(action string) {
	GateDenials.WithLabelValues(action).Inc()
}

func (Recorder) VoteOutcome(outcome string) {
	VoteOutcomes.WithLabelValues(outcome).Inc()
}

func (Recorder) CacheEvicted(n int) {
	CacheEvictions.Add(float64(n))
}
