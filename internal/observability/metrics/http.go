package metrics

import "fmt"

// Label names of the request duration histogram.
const (
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelCode   = "code"
)

// DefaultHTTPBuckets covers fast API responses (5ms) up to slow ones (5s).
var DefaultHTTPBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// HTTPMetrics groups the instruments written by the HTTP timing middleware.
type HTTPMetrics struct {
	// RequestDuration is http_request_duration_seconds{method,route,code}.
	RequestDuration *Histogram

	// InFlight is the number of requests currently being served.
	InFlight *Gauge
}

// NewHTTPMetrics creates the HTTP instruments and registers them with reg.
func NewHTTPMetrics(reg *Registry) (*HTTPMetrics, error) {
	duration, err := NewHistogram(HistogramOpts{
		Name:       "http_request_duration_seconds",
		Help:       "Duration of HTTP requests in seconds",
		Buckets:    DefaultHTTPBuckets,
		LabelNames: []string{LabelMethod, LabelRoute, LabelCode},
	})
	if err != nil {
		return nil, err
	}

	inFlight, err := NewGauge(GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})
	if err != nil {
		return nil, err
	}

	for _, inst := range []Instrument{duration, inFlight} {
		if err := reg.Register(inst); err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
	}

	return &HTTPMetrics{
		RequestDuration: duration,
		InFlight:        inFlight,
	}, nil
}
