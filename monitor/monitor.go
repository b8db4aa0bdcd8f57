// monitor/monitor.go
package monitor

import (
	"encoding/json"
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedClients prometheus.Gauge
	ActiveRooms      prometheus.Gauge
	MessagesReceived prometheus.Counter
	MessagesSent     prometheus.Counter
	SendFailures     prometheus.Counter
	RevealsTotal     prometheus.Counter
	CommandLatency   prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of live websocket connections",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total client commands received",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total pushes delivered",
		}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Total pushes dropped on dead connections",
		}),
		RevealsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reveals_total",
			Help:      "Total completed reveals",
		}),
		CommandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_latency_seconds",
			Help:      "Command handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ConnectedClients,
		m.ActiveRooms,
		m.MessagesReceived,
		m.MessagesSent,
		m.SendFailures,
		m.RevealsTotal,
		m.CommandLatency,
	)

	return m
}

// Counts feeds the health endpoint its live numbers.
type Counts func() (rooms, clients int)

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
	counts    Counts
}

func NewMonitor(namespace string, counts Counts) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
		counts:    counts,
	}
}

// HealthHandler answers deployment-platform health probes.
func (m *Monitor) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, clients := m.counts()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":           "healthy",
			"timestamp":        time.Now().Format(time.RFC3339),
			"rooms":            rooms,
			"connectedClients": clients,
		})
	}
}

// StartServer serves /metrics and /health on its own listener.
func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", m.HealthHandler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))
	mux.Handle("/debug/vars", expvar.Handler())

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}

func (m *Monitor) IncConnectedClients() { m.metrics.ConnectedClients.Inc() }
func (m *Monitor) DecConnectedClients() { m.metrics.ConnectedClients.Dec() }
func (m *Monitor) SetActiveRooms(n int) { m.metrics.ActiveRooms.Set(float64(n)) }
func (m *Monitor) IncMessagesReceived() { m.metrics.MessagesReceived.Inc() }
func (m *Monitor) IncMessagesSent()     { m.metrics.MessagesSent.Inc() }
func (m *Monitor) IncSendFailures()     { m.metrics.SendFailures.Inc() }
func (m *Monitor) IncReveals()          { m.metrics.RevealsTotal.Inc() }

func (m *Monitor) ObserveCommandLatency(d time.Duration) {
	m.metrics.CommandLatency.Observe(d.Seconds())
}
