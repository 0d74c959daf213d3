package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cobalt",
		Subsystem: "executor",
		Name:      "commands_total",
		Help:      "Total number of scheduler commands executed",
	}, []string{"command", "status"})
	commandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cobalt",
		Subsystem: "executor",
		Name:      "command_duration_seconds",
		Help:      "Duration of scheduler commands in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // from 10ms to ~20s
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(commandTotal)
	prometheus.MustRegister(commandDuration)
}

func observe(command string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	commandTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}
