package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts backoffice events in backoffice_events_total{event}.
type Metrics struct {
	events   *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

var _ Recorder = (*Metrics)(nil)

// NewMetrics registers the event counter on reg. A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "events_total",
		Help:      "Backoffice events by name.",
	}, []string{"event"})
	if err := reg.Register(events); err != nil {
		return nil, fmt.Errorf("telemetry: register events counter: %w", err)
	}
	return &Metrics{events: events, gatherer: reg}, nil
}

// Record increments the counter for event.
func (m *Metrics) Record(_ context.Context, event string, _ map[string]any) {
	m.events.WithLabelValues(event).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Count returns the current counter value for event.
func (m *Metrics) Count(event string) (float64, error) {
	families, err := m.gatherer.Gather()
	if err != nil {
		return 0, fmt.Errorf("telemetry: gather: %w", err)
	}
	for _, family := range families {
		if family.GetName() != "backoffice_events_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "event" && label.GetValue() == event {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, nil
}
