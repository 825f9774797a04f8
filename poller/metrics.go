package poller

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blockberries/chainxt/types"
)

// Metrics are the poller's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	BlocksProcessed prometheus.Counter
	Backoffs        prometheus.Counter
	EventsMatched   *prometheus.CounterVec
	EntriesSkipped  prometheus.Counter
	DecodeErrors    *prometheus.CounterVec
	Cursor          prometheus.Gauge
}

// NewMetrics creates the poller collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chainxt",
			Subsystem: "poller",
			Name:      "blocks_processed_total",
			Help:      "Blocks whose events were fully delivered.",
		}),
		Backoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chainxt",
			Subsystem: "poller",
			Name:      "backoffs_total",
			Help:      "Backoff sleeps taken because the next block was not produced yet.",
		}),
		EventsMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainxt",
			Subsystem: "poller",
			Name:      "events_matched_total",
			Help:      "Decoded events delivered, by descriptor.",
		}, []string{"module", "event"}),
		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chainxt",
			Subsystem: "poller",
			Name:      "entries_skipped_total",
			Help:      "Event log entries the transport failed to parse.",
		}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainxt",
			Subsystem: "poller",
			Name:      "decode_errors_total",
			Help:      "Events whose tag matched but whose payload did not decode, by descriptor.",
		}, []string{"module", "event"}),
		Cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chainxt",
			Subsystem: "poller",
			Name:      "cursor_index",
			Help:      "Index of the next block the poller will process.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.BlocksProcessed,
			m.Backoffs,
			m.EventsMatched,
			m.EntriesSkipped,
			m.DecodeErrors,
			m.Cursor,
		)
	}
	return m
}

func (m *Metrics) backoff() {
	if m == nil {
		return
	}
	m.Backoffs.Inc()
}

func (m *Metrics) delivered(ev BlockEvents, next types.BlockCursor) {
	if m == nil {
		return
	}
	m.BlocksProcessed.Inc()
	m.EntriesSkipped.Add(float64(len(ev.Skipped)))
	for _, match := range ev.Matches {
		desc := match.Raw.Descriptor()
		if match.Err != nil {
			m.DecodeErrors.WithLabelValues(desc.Module, desc.Event).Inc()
			continue
		}
		m.EventsMatched.WithLabelValues(desc.Module, desc.Event).Inc()
	}
	m.Cursor.Set(float64(next.Index))
}

func (m *Metrics) setCursor(c types.BlockCursor) {
	if m == nil {
		return
	}
	m.Cursor.Set(float64(c.Index))
}
