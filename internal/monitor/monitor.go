package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor exposes the server's prometheus metrics. One instance per process,
// registered against the given registerer and served by the rest server.
type Monitor struct {
	onlinePlayers prometheus.Gauge
	activeRooms   prometheus.Gauge
	inputsTotal   prometheus.Counter
	inputsDropped prometheus.Counter
}

// New - creates and registers the metric set.
func New(namespace string, registerer prometheus.Registerer) *Monitor {
	m := &Monitor{
		onlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected human players",
		}),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		inputsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_total",
			Help:      "Total directional inputs received",
		}),
		inputsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_dropped_total",
			Help:      "Inputs dropped by validation, buffering or rate limiting",
		}),
	}

	registerer.MustRegister(m.onlinePlayers, m.activeRooms, m.inputsTotal, m.inputsDropped)

	return m
}

func (that *Monitor) IncOnlinePlayers() {
	that.onlinePlayers.Inc()
}

func (that *Monitor) DecOnlinePlayers() {
	that.onlinePlayers.Dec()
}

func (that *Monitor) SetActiveRooms(count int) {
	that.activeRooms.Set(float64(count))
}

func (that *Monitor) IncInputsReceived() {
	that.inputsTotal.Inc()
}

func (that *Monitor) IncInputsDropped() {
	that.inputsDropped.Inc()
}
