package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/vitaminpack/internal/gate"
)

const namespace = "vitaminpack"

// GateRecorder exports gate outcomes as Prometheus series. It implements
// gate.Recorder.
type GateRecorder struct {
	decisions *prometheus.CounterVec
	failures  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

func NewGateRecorder(registerer prometheus.Registerer) (*GateRecorder, error) {
	recorder := &GateRecorder{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Gate decisions by action.",
		}, []string{"action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "dependency_failures_total",
			Help:      "Session or profile calls that failed, timed out or panicked.",
		}, []string{"dependency"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "dependency_seconds",
			Help:      "Latency of session and profile calls made by the gate.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .2, .3, .5, 1},
		}, []string{"dependency"}),
	}

	for _, collector := range []prometheus.Collector{recorder.decisions, recorder.failures, recorder.latency} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return recorder, nil
}

func (recorder *GateRecorder) ObserveDecision(action gate.Action) {
	recorder.decisions.WithLabelValues(action.String()).Inc()
}

func (recorder *GateRecorder) ObserveDependency(dependency string, elapsed time.Duration, failed bool) {
	recorder.latency.WithLabelValues(dependency).Observe(elapsed.Seconds())
	if failed {
		recorder.failures.WithLabelValues(dependency).Inc()
	}
}
