// Package metrics exports undo history activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// History counts what undo stacks record and replay.
type History struct {
	recorded  *prometheus.CounterVec
	echoes    prometheus.Counter
	discarded prometheus.Counter
	replays   *prometheus.CounterVec
	refused   *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewHistory registers the history collectors on reg. A nil reg uses the
// default registerer.
func NewHistory(reg prometheus.Registerer) *History {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &History{
		recorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esdl_history_commands_recorded_total",
			Help: "Commands recorded into undo history by kind",
		}, []string{"kind"}),
		echoes: f.NewCounter(prometheus.CounterOpts{
			Name: "esdl_history_opposite_echoes_dropped_total",
			Help: "Mirrored opposite-reference commands dropped while recording",
		}),
		discarded: f.NewCounter(prometheus.CounterOpts{
			Name: "esdl_history_commands_discarded_total",
			Help: "Commands received while not recording",
		}),
		replays: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esdl_history_replays_total",
			Help: "Undo and redo operations by direction",
		}, []string{"direction"}),
		refused: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esdl_history_replays_refused_total",
			Help: "Undo and redo calls refused while a transaction is open",
		}, []string{"direction"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esdl_history_replay_failures_total",
			Help: "Undo and redo operations that returned an error",
		}, []string{"direction"}),
	}
}

func (h *History) CommandRecorded(kind string) { h.recorded.WithLabelValues(kind).Inc() }

func (h *History) EchoDropped() { h.echoes.Inc() }

func (h *History) CommandDiscarded() { h.discarded.Inc() }

func (h *History) Replayed(direction string) { h.replays.WithLabelValues(direction).Inc() }

func (h *History) ReplayRefused(direction string) { h.refused.WithLabelValues(direction).Inc() }

func (h *History) ReplayFailed(direction string) { h.failures.WithLabelValues(direction).Inc() }
