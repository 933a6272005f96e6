package metric

import (
	"errors"
	"math"
	"testing"

	"wavefinder/feature"
)

const epsilon = 1e-12

var allMetrics = []Metric{L1, L2, LInf}

func TestDistanceKnownValues(t *testing.T) {
	a := feature.Vector{1, 2, 3, 4}
	b := feature.Vector{2, 4, 1, 0}
	// diffs: 1, 2, 2, 4

	cases := []struct {
		m    Metric
		want float64
	}{
		{L1, 9},
		{L2, 5},
		{LInf, 4},
	}
	for _, c := range cases {
		got, err := c.m.Distance(a, b)
		if err != nil {
			t.Fatalf("%s: %v", c.m, err)
		}
		if math.Abs(got-c.want) > epsilon {
			t.Errorf("%s: got %v, want %v", c.m, got, c.want)
		}
	}
}

func TestDistanceIdentity(t *testing.T) {
	v := feature.Vector{3.5, -1, 0, 2.25, 100}
	for _, m := range allMetrics {
		got, err := m.Distance(v, v)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if got != 0 {
			t.Errorf("%s: dist(a,a) = %v, want 0", m, got)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := feature.Vector{1, -2, 3.5, 0}
	b := feature.Vector{-4, 2, 0, 7}
	for _, m := range allMetrics {
		ab, err := m.Distance(a, b)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		ba, err := m.Distance(b, a)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if math.Abs(ab-ba) > epsilon {
			t.Errorf("%s: dist(a,b)=%v, dist(b,a)=%v", m, ab, ba)
		}
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	vectors := []feature.Vector{
		{0, 0, 0},
		{1, 2, 3},
		{-5, 0.5, 2},
		{10, -10, 0.25},
	}
	for _, m := range allMetrics {
		for _, a := range vectors {
			for _, b := range vectors {
				for _, c := range vectors {
					ab, _ := m.Distance(a, b)
					ac, _ := m.Distance(a, c)
					cb, _ := m.Distance(c, b)
					if ab > ac+cb+epsilon {
						t.Errorf("%s: triangle violated: d(a,b)=%v > d(a,c)+d(c,b)=%v",
							m, ab, ac+cb)
					}
				}
			}
		}
	}
}

func TestDistanceLengthMismatch(t *testing.T) {
	a := feature.Vector{1, 2}
	b := feature.Vector{1, 2, 3}
	for _, m := range allMetrics {
		if _, err := m.Distance(a, b); !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("%s: expected ErrLengthMismatch, got %v", m, err)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		want Metric
	}{
		{"l1", L1},
		{"L1", L1},
		{"manhattan", L1},
		{"l2", L2},
		{"euclidean", L2},
		{"linf", LInf},
		{"chebyshev", LInf},
		{" max ", LInf},
	}
	for _, c := range cases {
		got, err := Parse(c.name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q): got %v, want %v", c.name, got, c.want)
		}
	}

	if _, err := Parse("cosine"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}
}
