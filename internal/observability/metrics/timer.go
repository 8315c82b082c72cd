package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer measures the wall-clock (monotonic) duration of one operation and
// records it into a Histogram. Labels are supplied on completion because
// values such as the status code are only known at the end.
//
// A Timer belongs to a single request and must not be shared.
type Timer struct {
	labels  Labels
	err     error
	stopped atomic.Bool
	timer   *prometheus.Timer
}

// StartTimer returns a Timer that starts counting now.
func (h *Histogram) StartTimer() *Timer {
	t := &Timer{}
	t.timer = prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
		t.err = h.Observe(seconds, t.labels)
	}))
	return t
}

// ObserveDuration stops the timer and records the elapsed time under labels.
// Only the first call records; later calls return ErrTimerStopped.
func (t *Timer) ObserveDuration(labels Labels) (time.Duration, error) {
	if !t.stopped.CompareAndSwap(false, true) {
		return 0, ErrTimerStopped
	}
	t.labels = labels
	d := t.timer.ObserveDuration()
	return d, t.err
}

// Stopped reports whether ObserveDuration has been called.
func (t *Timer) Stopped() bool {
	return t.stopped.Load()
}
