package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// GaugeOpts configures a Gauge.
type GaugeOpts struct {
	Name string
	Help string
}

// Gauge is a named value that can go up and down.
type Gauge struct {
	prometheus.Gauge
	name string
}

// NewGauge validates opts and returns an unregistered Gauge.
func NewGauge(opts GaugeOpts) (*Gauge, error) {
	if !metricNameRE.MatchString(opts.Name) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrInvalidInstrument, opts.Name)
	}
	if strings.TrimSpace(opts.Help) == "" {
		return nil, fmt.Errorf("%w: %s: help text is required", ErrInvalidInstrument, opts.Name)
	}
	return &Gauge{
		Gauge: prometheus.NewGauge(prometheus.GaugeOpts{Name: opts.Name, Help: opts.Help}),
		name:  opts.Name,
	}, nil
}

// Name returns the metric name.
func (g *Gauge) Name() string {
	return g.name
}
