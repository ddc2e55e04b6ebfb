package remote

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"affiliate-admin/internal/domain"
)

var (
	backendReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backend_requests_total", Help: "Count of calls to the REST backend"},
		[]string{"route", "method", "outcome"},
	)
	backendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency of calls to the REST backend",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"},
	)
)

func init() { prometheus.MustRegister(backendReqTotal, backendLatency) }

// outcome 标签：ok / rejected / network
func outcome(err error) string {
	var re *domain.RejectedError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &re):
		return "rejected"
	default:
		return "network"
	}
}
