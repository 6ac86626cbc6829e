package verifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultPass = "pass"
	resultFail = "fail"
)

// Metrics exposes step outcomes and latencies. A nil *Metrics records nothing.
type Metrics struct {
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	lastRun  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qfight",
			Subsystem: "verifier",
			Name:      "steps_total",
			Help:      "Scenario steps executed, by step and result.",
		}, []string{"step", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qfight",
			Subsystem: "verifier",
			Name:      "step_duration_seconds",
			Help:      "Wall time of each scenario step.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qfight",
			Subsystem: "verifier",
			Name:      "runs_total",
			Help:      "Complete scenario runs, by result.",
		}, []string{"result"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "qfight",
			Subsystem: "verifier",
			Name:      "last_run_success",
			Help:      "1 when the most recent run passed, 0 otherwise.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.steps, m.duration, m.runs, m.lastRun)
	}
	return m
}

func (m *Metrics) observeStep(step string, passed bool, d time.Duration) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(step, result(passed)).Inc()
	m.duration.WithLabelValues(step).Observe(d.Seconds())
}

func (m *Metrics) observeRun(passed bool) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result(passed)).Inc()
	if passed {
		m.lastRun.Set(1)
	} else {
		m.lastRun.Set(0)
	}
}

func result(passed bool) string {
	if passed {
		return resultPass
	}
	return resultFail
}
