package metrics

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	h := newTestHistogram(t)

	require.NoError(t, reg.Register(h))
	assert.Equal(t, []string{"test_duration_seconds"}, reg.Names())
}

func TestRegistry_Register_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, reg *Registry) Instrument
		wantErr error
	}{
		{
			name: "same instrument twice",
			setup: func(t *testing.T, reg *Registry) Instrument {
				h := newTestHistogram(t)
				require.NoError(t, reg.Register(h))
				return h
			},
			wantErr: ErrDuplicateName,
		},
		{
			name: "different instrument with the same name",
			setup: func(t *testing.T, reg *Registry) Instrument {
				require.NoError(t, reg.Register(newTestHistogram(t)))
				other, err := NewHistogram(HistogramOpts{
					Name:    "test_duration_seconds",
					Help:    "different shape",
					Buckets: []float64{1, 2},
				})
				require.NoError(t, err)
				return other
			},
			wantErr: ErrDuplicateName,
		},
		{
			name: "gauge reusing a histogram name",
			setup: func(t *testing.T, reg *Registry) Instrument {
				require.NoError(t, reg.Register(newTestHistogram(t)))
				g, err := NewGauge(GaugeOpts{Name: "test_duration_seconds", Help: "gauge"})
				require.NoError(t, err)
				return g
			},
			wantErr: ErrDuplicateName,
		},
		{
			name: "nil instrument",
			setup: func(t *testing.T, reg *Registry) Instrument {
				return nil
			},
			wantErr: ErrInvalidInstrument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			inst := tt.setup(t, reg)
			err := reg.Register(inst)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.LessOrEqual(t, len(reg.Names()), 1)
		})
	}
}

func TestRegistry_MustRegister_Panics(t *testing.T) {
	reg := NewRegistry()
	h := newTestHistogram(t)

	assert.NotPanics(t, func() { reg.MustRegister(h) })
	assert.Panics(t, func() { reg.MustRegister(h) })
}

func TestRegistry_CollectDefault(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.CollectDefault())
	assert.Equal(t, []string{GoRuntimeCollectorName, ProcessCollectorName}, reg.Names())

	text, _ := reg.Text()
	assert.Contains(t, text, "go_goroutines")
	assert.Contains(t, text, "go_memstats_heap_alloc_bytes")

	err := reg.CollectDefault()
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRegistry_DefaultFamilyConflicts(t *testing.T) {
	newGauge := func(t *testing.T, name string) *Gauge {
		t.Helper()
		g, err := NewGauge(GaugeOpts{Name: name, Help: "gauge"})
		require.NoError(t, err)
		return g
	}

	t.Run("instrument after default collectors", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.CollectDefault())

		err := reg.Register(newGauge(t, "go_goroutines"))

		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.NotContains(t, reg.Names(), "go_goroutines")
	})

	t.Run("default collectors after instrument", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(newGauge(t, "go_goroutines")))

		err := reg.CollectDefault()

		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.NotContains(t, reg.Names(), GoRuntimeCollectorName)
	})

	t.Run("collector names are not metric names", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.CollectDefault())

		require.NoError(t, reg.Register(newGauge(t, ProcessCollectorName)))

		text, _ := reg.Text()
		assert.Contains(t, text, "# TYPE process gauge")
		assert.Contains(t, reg.Names(), ProcessCollectorName)
	})
}

func TestRegistry_ContentType(t *testing.T) {
	reg := NewRegistry()
	ct := reg.ContentType()

	assert.True(t, strings.HasPrefix(ct, "text/plain"), ct)
	assert.Contains(t, ct, "version=0.0.4")
}

func TestRegistry_Render_Empty(t *testing.T) {
	reg := NewRegistry()

	var buf bytes.Buffer
	require.NoError(t, reg.Render(&buf))
	assert.Empty(t, buf.String())
}

func TestRegistry_Render_HistogramLayout(t *testing.T) {
	reg := NewRegistry()
	m, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	for _, v := range []float64{0.003, 0.04, 0.04, 0.7, 9} {
		require.NoError(t, m.RequestDuration.Observe(v, getHealthz()))
	}

	text, err := reg.Text()
	require.NoError(t, err)

	assert.Contains(t, text, "# HELP http_request_duration_seconds Duration of HTTP requests in seconds")
	assert.Contains(t, text, "# TYPE http_request_duration_seconds histogram")
	assert.Contains(t, text, `http_request_duration_seconds_count{code="200",method="GET",route="/healthz"} 5`)
	assert.Contains(t, text, "# TYPE http_requests_in_flight gauge")

	var (
		bounds    []float64
		counts    []float64
		sumLine   = -1
		countLine = -1
		lastBkt   = -1
	)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "http_request_duration_seconds_bucket{"):
			le := line[strings.Index(line, `le="`)+4:]
			le = le[:strings.Index(le, `"`)]
			bound, err := strconv.ParseFloat(le, 64)
			require.NoError(t, err, line)
			count, err := strconv.ParseFloat(line[strings.LastIndex(line, " ")+1:], 64)
			require.NoError(t, err, line)
			bounds = append(bounds, bound)
			counts = append(counts, count)
			lastBkt = i
		case strings.HasPrefix(line, "http_request_duration_seconds_sum{"):
			sumLine = i
		case strings.HasPrefix(line, "http_request_duration_seconds_count{"):
			countLine = i
		}
	}

	require.Len(t, bounds, len(DefaultHTTPBuckets)+1, "configured buckets plus +Inf")
	for i := 1; i < len(bounds); i++ {
		assert.Less(t, bounds[i-1], bounds[i], "bucket bounds must ascend")
		assert.LessOrEqual(t, counts[i-1], counts[i], "bucket counts must be cumulative")
	}
	assert.Equal(t, float64(5), counts[len(counts)-1])
	assert.Greater(t, sumLine, lastBkt, "_sum follows the buckets")
	assert.Greater(t, countLine, sumLine, "_count follows _sum")
}

func TestRegistry_Render_MatchesGatherer(t *testing.T) {
	reg := NewRegistry()
	g, err := NewGauge(GaugeOpts{Name: "queue_depth", Help: "Items waiting"})
	require.NoError(t, err)
	require.NoError(t, reg.Register(g))
	g.Set(3)

	expected := `
# HELP queue_depth Items waiting
# TYPE queue_depth gauge
queue_depth 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg.Gatherer(), strings.NewReader(expected), "queue_depth"))

	text, err := reg.Text()
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(expected, "\n"), text)
}

func TestNewHTTPMetrics_TwiceOnSameRegistry(t *testing.T) {
	reg := NewRegistry()

	_, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	_, err = NewHTTPMetrics(reg)
	assert.ErrorIs(t, err, ErrDuplicateName)
}
