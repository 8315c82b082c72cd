package metrics

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	metricNameRE = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRE  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Labels maps declared label names to the values of a single observation.
type Labels map[string]string

// HistogramOpts configures a Histogram.
type HistogramOpts struct {
	Name string
	Help string

	// Buckets are the upper bounds, strictly ascending and finite.
	// The +Inf bucket is implicit.
	Buckets []float64

	// LabelNames is the exact label set every observation must supply.
	LabelNames []string
}

// Bucket is a cumulative histogram bucket.
type Bucket struct {
	UpperBound      float64
	CumulativeCount uint64
}

// HistogramSnapshot is a read-only copy of one label combination.
type HistogramSnapshot struct {
	Labels  Labels
	Count   uint64
	Sum     float64
	Buckets []Bucket
}

// Histogram records observations into fixed cumulative buckets, one series
// per distinct label combination. Series are created on first observation
// and are never removed.
//
// All methods are safe for concurrent use.
type Histogram struct {
	name       string
	labelNames []string
	buckets    []float64
	vec        *prometheus.HistogramVec
}

// NewHistogram validates opts and returns an unregistered Histogram.
func NewHistogram(opts HistogramOpts) (*Histogram, error) {
	if err := validateHistogramOpts(opts); err != nil {
		return nil, err
	}

	buckets := slices.Clone(opts.Buckets)
	labelNames := slices.Clone(opts.LabelNames)

	return &Histogram{
		name:       opts.Name,
		labelNames: labelNames,
		buckets:    buckets,
		vec: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    opts.Name,
				Help:    opts.Help,
				Buckets: buckets,
			},
			labelNames,
		),
	}, nil
}

// Name returns the metric family name.
func (h *Histogram) Name() string {
	return h.name
}

// Buckets returns a copy of the configured upper bounds.
func (h *Histogram) Buckets() []float64 {
	return slices.Clone(h.buckets)
}

// LabelNames returns a copy of the declared label names.
func (h *Histogram) LabelNames() []string {
	return slices.Clone(h.labelNames)
}

// Observe records value (in seconds for durations) for the given label combination.
// Every bucket whose upper bound is >= value is incremented, along with sum and count.
func (h *Histogram) Observe(value float64, labels Labels) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%w: %s: %v", ErrInvalidObservation, h.name, value)
	}
	if err := h.checkLabels(labels); err != nil {
		return err
	}

	for name, value := range labels {
		if !utf8.ValidString(value) {
			return fmt.Errorf("%w: %s: label %s: %q is not valid UTF-8", ErrInvalidLabelValue, h.name, name, value)
		}
	}

	obs, err := h.vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return fmt.Errorf("metrics: observe %s: %w", h.name, err)
	}
	obs.Observe(value)
	return nil
}

// Snapshot returns the current state of one label combination without creating it.
// The boolean reports whether the combination has been observed.
func (h *Histogram) Snapshot(labels Labels) (HistogramSnapshot, bool, error) {
	if err := h.checkLabels(labels); err != nil {
		return HistogramSnapshot{}, false, err
	}

	snapshots, err := h.Snapshots()
	if err != nil {
		return HistogramSnapshot{}, false, err
	}
	for _, s := range snapshots {
		if maps.Equal(s.Labels, labels) {
			return s, true, nil
		}
	}
	return HistogramSnapshot{Labels: maps.Clone(labels)}, false, nil
}

// Snapshots returns every observed label combination, ordered by label values.
func (h *Histogram) Snapshots() ([]HistogramSnapshot, error) {
	ch := make(chan prometheus.Metric)
	go func() {
		h.vec.Collect(ch)
		close(ch)
	}()

	var (
		out      []HistogramSnapshot
		firstErr error
	)
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("metrics: snapshot %s: %w", h.name, err)
			}
			continue
		}
		out = append(out, snapshotFromProto(&pb))
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(out, func(i, j int) bool {
		return h.seriesKey(out[i].Labels) < h.seriesKey(out[j].Labels)
	})
	return out, nil
}

// Describe implements prometheus.Collector.
func (h *Histogram) Describe(ch chan<- *prometheus.Desc) {
	h.vec.Describe(ch)
}

// Collect implements prometheus.Collector.
func (h *Histogram) Collect(ch chan<- prometheus.Metric) {
	h.vec.Collect(ch)
}

func (h *Histogram) checkLabels(labels Labels) error {
	var missing, extra []string
	for _, name := range h.labelNames {
		if _, ok := labels[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range labels {
		if !slices.Contains(h.labelNames, name) {
			extra = append(extra, name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	sort.Strings(extra)
	return fmt.Errorf("%w: %s: missing %v, unexpected %v", ErrLabelMismatch, h.name, missing, extra)
}

func (h *Histogram) seriesKey(labels Labels) string {
	values := make([]string, len(h.labelNames))
	for i, name := range h.labelNames {
		values[i] = labels[name]
	}
	return strings.Join(values, "\xff")
}

func snapshotFromProto(pb *dto.Metric) HistogramSnapshot {
	s := HistogramSnapshot{Labels: make(Labels, len(pb.GetLabel()))}
	for _, lp := range pb.GetLabel() {
		s.Labels[lp.GetName()] = lp.GetValue()
	}

	hist := pb.GetHistogram()
	s.Count = hist.GetSampleCount()
	s.Sum = hist.GetSampleSum()
	for _, b := range hist.GetBucket() {
		s.Buckets = append(s.Buckets, Bucket{
			UpperBound:      b.GetUpperBound(),
			CumulativeCount: b.GetCumulativeCount(),
		})
	}
	return s
}

func validateHistogramOpts(opts HistogramOpts) error {
	if !metricNameRE.MatchString(opts.Name) {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidInstrument, opts.Name)
	}
	if strings.TrimSpace(opts.Help) == "" {
		return fmt.Errorf("%w: %s: help text is required", ErrInvalidInstrument, opts.Name)
	}
	if len(opts.Buckets) == 0 {
		return fmt.Errorf("%w: %s: at least one bucket is required", ErrInvalidInstrument, opts.Name)
	}
	for i, b := range opts.Buckets {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: %s: bucket %d is not finite", ErrInvalidInstrument, opts.Name, i)
		}
		if i > 0 && b <= opts.Buckets[i-1] {
			return fmt.Errorf("%w: %s: buckets must be strictly ascending", ErrInvalidInstrument, opts.Name)
		}
	}

	seen := make(map[string]struct{}, len(opts.LabelNames))
	for _, name := range opts.LabelNames {
		if !labelNameRE.MatchString(name) || strings.HasPrefix(name, "__") || name == "le" {
			return fmt.Errorf("%w: %s: invalid label name %q", ErrInvalidInstrument, opts.Name, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s: duplicate label name %q", ErrInvalidInstrument, opts.Name, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
