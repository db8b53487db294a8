package gas

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// sequenceReader returns scripted readings one at a time.
func sequenceReader(values []float64, errs []error) ReadFunc {
	i := 0
	return func(_ context.Context) (float64, error) {
		defer func() { i++ }()
		if errs != nil && errs[i] != nil {
			return 0, errs[i]
		}
		return values[i], nil
	}
}

func newTestSampler(read ReadFunc, count int) *Sampler {
	return NewSampler(read, WithSampleCount(count), WithSampleDelay(time.Millisecond))
}

func TestSample_MedianOfThree(t *testing.T) {
	s := newTestSampler(sequenceReader([]float64{5, 7, 9}, nil), 3)

	got, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got != 7 {
		t.Errorf("expected median 7, got %f", got)
	}
}

func TestSample_EvenLengthUpperMiddle(t *testing.T) {
	// One failed reading leaves [5,7]; the upper-middle rule picks 7.
	readErr := errors.New("rpc down")
	s := newTestSampler(sequenceReader([]float64{5, 0, 7}, []error{nil, readErr, nil}), 3)

	got, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got != 7 {
		t.Errorf("expected 7 for [5,7], got %f", got)
	}
}

func TestSample_DiscardsInvalidReadings(t *testing.T) {
	s := newTestSampler(sequenceReader([]float64{math.NaN(), -3, 4, math.Inf(1), 0}, nil), 5)

	got, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4 (only valid sample), got %f", got)
	}
}

func TestSample_AllFailed(t *testing.T) {
	readErr := errors.New("rpc down")
	s := newTestSampler(sequenceReader([]float64{0, 0, 0}, []error{readErr, readErr, readErr}), 3)

	if _, err := s.Sample(context.Background()); !errors.Is(err, ErrNoValidSamples) {
		t.Errorf("expected ErrNoValidSamples, got %v", err)
	}
}

func TestFormatLabel(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{25.4, "25"},
		{10, "10"},
		{5.25, "5.3"},
		{5.0, "5"},
		{1.0, "1"},
		{0.87, "0.87"},
		{0.8, "0.8"},
		{0.5, "0.5"},
		{0.49, "< 0.5"},
		{0.1, "< 0.5"},
	}

	for _, tc := range cases {
		if got := FormatLabel(tc.in); got != tc.want {
			t.Errorf("FormatLabel(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestTracker_RetainsLastGood(t *testing.T) {
	var tr Tracker

	if _, _, ok := tr.Current(); ok {
		t.Fatal("expected no value before first update")
	}

	tr.Update(7)
	gwei, label, ok := tr.Current()
	if !ok || gwei != 7 || label != "7" {
		t.Errorf("expected 7/\"7\"/true, got %f/%q/%v", gwei, label, ok)
	}

	// A failed round performs no Update; the old value must survive.
	gwei, label, ok = tr.Current()
	if !ok || gwei != 7 {
		t.Errorf("value lost after failed round: %f/%q/%v", gwei, label, ok)
	}
}

func TestTracker_ScoreValueFloor(t *testing.T) {
	var tr Tracker

	if _, ok := tr.ScoreValue(); ok {
		t.Fatal("expected no score value before first update")
	}

	tr.Update(0.2)
	v, ok := tr.ScoreValue()
	if !ok || v != 0.49 {
		t.Errorf("expected floor score 0.49, got %f/%v", v, ok)
	}

	tr.Update(12)
	v, ok = tr.ScoreValue()
	if !ok || v != 12 {
		t.Errorf("expected 12, got %f/%v", v, ok)
	}
}
