// Package gas reduces noisy gas-price readings to a stable display
// value via median filtering.
package gas

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"
)

// Default sampling parameters. Three quick readings spaced 120ms apart
// are enough to filter out the transient sub-gwei glitches some BSC
// nodes report.
const (
	DefaultSampleCount = 3
	DefaultSampleDelay = 120 * time.Millisecond
)

// ErrNoValidSamples is returned when every reading in a sampling round
// failed or was non-finite/non-positive. Callers retain the last
// known-good value instead of displaying an error.
var ErrNoValidSamples = errors.New("no valid gas samples")

// ReadFunc performs one raw gas-price reading in gwei.
type ReadFunc func(ctx context.Context) (float64, error)

// Sampler collects repeated raw readings and reduces them to a median.
type Sampler struct {
	read  ReadFunc
	count int
	delay time.Duration
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithSampleCount sets the number of sequential readings per round.
func WithSampleCount(n int) SamplerOption {
	return func(s *Sampler) {
		s.count = n
	}
}

// WithSampleDelay sets the pause between readings.
func WithSampleDelay(d time.Duration) SamplerOption {
	return func(s *Sampler) {
		s.delay = d
	}
}

// NewSampler creates a Sampler around a raw read function.
func NewSampler(read ReadFunc, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		read:  read,
		count: DefaultSampleCount,
		delay: DefaultSampleDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample takes the configured number of sequential readings, skips
// failed readings (they are not retried) and non-finite or
// non-positive values, and returns the median of what remains.
func (s *Sampler) Sample(ctx context.Context) (float64, error) {
	var samples []float64

	for i := 0; i < s.count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		v, err := s.read(ctx)
		if err != nil {
			continue
		}
		if !validSample(v) {
			continue
		}
		samples = append(samples, v)
	}

	if len(samples) == 0 {
		return 0, ErrNoValidSamples
	}

	return median(samples), nil
}

func validSample(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// median returns the middle element of the sorted samples. For
// even-length sets the upper-middle element is chosen, so [5,7]
// yields 7.
func median(samples []float64) float64 {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// Tracker carries the last known-good gas estimate across sampling
// rounds. A failed round never downgrades the displayed value; the
// only writer is the gas polling loop, last write wins.
type Tracker struct {
	mu    sync.RWMutex
	gwei  float64
	label string
	ok    bool
}

// Update records a successful sampling round.
func (t *Tracker) Update(gwei float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gwei = gwei
	t.label = FormatLabel(gwei)
	t.ok = true
}

// Current returns the last known-good value in gwei. ok is false until
// the first successful round.
func (t *Tracker) Current() (gwei float64, label string, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gwei, t.label, t.ok
}

// ScoreValue returns the gwei value the health heuristic should see.
// Floor-labelled readings ("< 0.5") are reported as 0.49 so scoring
// still runs. ok is false when no round has succeeded yet.
func (t *Tracker) ScoreValue() (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.ok {
		return 0, false
	}
	if t.gwei < FloorGwei {
		return 0.49, true
	}
	return t.gwei, true
}
