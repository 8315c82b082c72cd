// Package metrics provides the in-process Prometheus instruments of the service.
//
// A Registry owns named instruments (Histogram, Gauge, and the default Go and
// process collectors) and renders them on demand in the text exposition format.
// Instruments are registered on an explicit Registry created at startup; the
// Prometheus default registry is not used.
//
// Histograms validate every observation strictly: the supplied labels must match
// the declared label names exactly (ErrLabelMismatch), label values must be
// valid UTF-8 (ErrInvalidLabelValue), and values must be finite and
// non-negative (ErrInvalidObservation).
//
// Example usage:
//
//	reg := metrics.NewRegistry()
//	httpMetrics, err := metrics.NewHTTPMetrics(reg)
//	if err != nil {
//	    return err
//	}
//
//	timer := httpMetrics.RequestDuration.StartTimer()
//	// ... serve request ...
//	_, err = timer.ObserveDuration(metrics.Labels{"method": "GET", "route": "/healthz", "code": "200"})
//
//	_ = reg.Render(os.Stdout)
package metrics
