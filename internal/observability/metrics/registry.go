package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Reserved names used by CollectDefault.
const (
	GoRuntimeCollectorName = "go_runtime"
	ProcessCollectorName   = "process"
)

var textFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

// Instrument is a named collector that can be registered once per Registry.
type Instrument interface {
	prometheus.Collector
	Name() string
}

// Registry owns the instruments of one process and renders them in the
// Prometheus text exposition format. It is created once at startup and
// shared by pointer; the Prometheus default registry is never touched.
//
// Instrument names and default collector names live in separate namespaces.
// Both are checked against the metric family names already exposed, so two
// registrations can never write the same family.
type Registry struct {
	mu          sync.Mutex
	instruments map[string]struct{}
	collectors  map[string]struct{}
	families    map[string]string // exposed family name -> owning instrument or collector
	reg         *prometheus.Registry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		instruments: make(map[string]struct{}),
		collectors:  make(map[string]struct{}),
		families:    make(map[string]string),
		reg:         prometheus.NewRegistry(),
	}
}

// Register adds inst under its name. Registering a name twice, or a name
// already exposed by another instrument or a default collector, returns
// ErrDuplicateName.
func (r *Registry) Register(inst Instrument) error {
	if inst == nil {
		return fmt.Errorf("%w: nil instrument", ErrInvalidInstrument)
	}
	name := inst.Name()
	return r.register(r.instruments, name, []string{name}, inst)
}

// MustRegister registers every instrument and panics on the first error.
func (r *Registry) MustRegister(insts ...Instrument) {
	for _, inst := range insts {
		if err := r.Register(inst); err != nil {
			panic(err)
		}
	}
}

// CollectDefault registers the Go runtime and process collectors
// (memory, goroutines, CPU, open file descriptors, start time).
func (r *Registry) CollectDefault() error {
	defaults := []struct {
		name string
		c    prometheus.Collector
	}{
		{GoRuntimeCollectorName, collectors.NewGoCollector()},
		{ProcessCollectorName, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})},
	}
	for _, d := range defaults {
		if err := r.register(r.collectors, d.name, familyNames(d.c), d.c); err != nil {
			return err
		}
	}
	return nil
}

// familyNames returns the metric families c currently exposes.
// A partial gather still reports the families that were collected.
func familyNames(c prometheus.Collector) []string {
	scratch := prometheus.NewRegistry()
	if err := scratch.Register(c); err != nil {
		return nil
	}
	mfs, _ := scratch.Gather()
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	return names
}

func (r *Registry) register(namespace map[string]struct{}, name string, families []string, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := namespace[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	for _, family := range families {
		if owner, ok := r.families[family]; ok {
			return fmt.Errorf("%w: %q: metric %q is already exposed by %q", ErrDuplicateName, name, family, owner)
		}
	}
	if err := r.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return fmt.Errorf("%w: %q: %v", ErrDuplicateName, name, err)
		}
		return fmt.Errorf("metrics: register %q: %w", name, err)
	}

	namespace[name] = struct{}{}
	for _, family := range families {
		r.families[family] = name
	}
	return nil
}

// Names returns the registered instrument and collector names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.instruments)+len(r.collectors))
	for name := range r.instruments {
		names = append(names, name)
	}
	for name := range r.collectors {
		if _, ok := r.instruments[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Gatherer returns the underlying registry as a prometheus.Gatherer.
// Render reads through it.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ContentType is the media type of Render's output.
func (r *Registry) ContentType() string {
	return string(textFormat)
}

// Render writes every instrument to w. Families are sorted by name; histogram
// buckets are written in ascending bound order followed by _sum and _count.
//
// If some collectors fail, the families that were gathered are still written
// and the gather error is returned.
func (r *Registry) Render(w io.Writer) error {
	mfs, gatherErr := r.Gatherer().Gather()

	enc := expfmt.NewEncoder(w, textFormat)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	if gatherErr != nil {
		return fmt.Errorf("metrics: gather: %w", gatherErr)
	}
	return nil
}

// Text returns Render's output as a string.
func (r *Registry) Text() (string, error) {
	var buf bytes.Buffer
	err := r.Render(&buf)
	return buf.String(), err
}
