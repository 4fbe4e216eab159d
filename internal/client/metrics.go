package client

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payroll_client",
			Name:      "calls_total",
			Help:      "Backend calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payroll_client",
			Name:      "call_duration_seconds",
			Help:      "Backend call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// outcome is "ok", "unreachable" or the HTTP status of a failed call.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Status != 0 {
		return strconv.Itoa(re.Status)
	}
	return "unreachable"
}

func observeCall(op string, start time.Time, err error) {
	callsTotal.WithLabelValues(op, outcome(err)).Inc()
	callDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
