// Package metrics exposes run and node metrics to Prometheus, fed by graph
// lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stepflow"

// Collector holds the Prometheus collectors.
type Collector struct {
	NodeVisits   *prometheus.CounterVec
	NodeDuration *prometheus.HistogramVec
	Runs         *prometheus.CounterVec
	RunSteps     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
// A nil reg means a fresh private registry.
func New(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_visits_total",
				Help:      "Total number of node executions, by outcome.",
			},
			[]string{"graph_id", "node", "status"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Duration of node transforms.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"graph_id", "node"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of finished runs, by status.",
			},
			[]string{"graph_id", "status"},
		),
		RunSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_steps",
				Help:      "Number of node executions per run.",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"graph_id"},
		),
		gatherer: reg,
	}

	for _, col := range []prometheus.Collector{c.NodeVisits, c.NodeDuration, c.Runs, c.RunSteps} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks recording node and run metrics.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			status := string(domain.TraceCompleted)
			if e.Entry != nil {
				status = string(e.Entry.Status)
			}
			c.NodeVisits.WithLabelValues(e.GraphID, e.Node, status).Inc()
			c.NodeDuration.WithLabelValues(e.GraphID, e.Node).Observe(e.Duration.Seconds())
		},
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			c.Runs.WithLabelValues(e.GraphID, string(e.Status)).Inc()
			c.RunSteps.WithLabelValues(e.GraphID).Observe(float64(e.Iterations))
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
