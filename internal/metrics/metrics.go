// Package metrics exports the same actor lifecycle/heartbeat data the TUI
// dashboard renders, as Prometheus gauges, grounded on amp-labs-amp-common's
// prometheus/client_golang usage — the only pack repo that imports it.
package metrics

import (
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActorsRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odin",
		Subsystem: "actor",
		Name:      "running_total",
		Help:      "Number of actors currently registered with the system.",
	})

	HeartbeatCycle = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odin",
		Subsystem: "actor",
		Name:      "heartbeat_cycle",
		Help:      "The most recently started heartbeat cycle number.",
	})

	HeartbeatLastNanos = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "odin",
		Subsystem: "actor",
		Name:      "heartbeat_last_response_nanos",
		Help:      "Most recent ping round-trip time per actor, in nanoseconds.",
	}, []string{"actor_id"})

	UnresponsiveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odin",
		Subsystem: "actor",
		Name:      "unresponsive_total",
		Help:      "Count of heartbeat cycles an actor was declared unresponsive.",
	}, []string{"actor_id"})
)

func init() {
	prometheus.MustRegister(ActorsRunning, HeartbeatCycle, HeartbeatLastNanos, UnresponsiveTotal)
}

// Observer adapts the actor package's event stream into the gauges above,
// installed with (*actor.ActorSystem).SetObserver alongside (or instead of)
// the TUI dashboard's observer.
func Observer() actor.EventObserver {
	running := 0
	return func(ev actor.Event) {
		switch e := ev.(type) {
		case actor.AddActor:
			running++
			ActorsRunning.Set(float64(running))
		case actor.RemoveActor:
			running--
			ActorsRunning.Set(float64(running))
		case actor.HeartBeatCycleStarted:
			HeartbeatCycle.Set(float64(e.Cycle))
		case actor.ActorHeartbeat:
			HeartbeatLastNanos.WithLabelValues(string(e.ID)).Set(float64(e.Status.LastNanos))
		case actor.UnresponsiveActor:
			UnresponsiveTotal.WithLabelValues(string(e.ID)).Inc()
		}
	}
}
