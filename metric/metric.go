// Package metric provides the distance functions used to compare feature
// vectors.
package metric

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"wavefinder/feature"
)

// Metric identifies one of the supported distance functions. The set is
// closed; dispatch is a switch rather than an interface so that per-pair
// comparison costs no dynamic call.
type Metric int

const (
	// L1 is the Manhattan distance, sum of absolute differences.
	L1 Metric = iota
	// L2 is the Euclidean distance.
	L2
	// LInf is the Chebyshev distance, the largest absolute difference.
	LInf
)

var (
	// ErrUnknownMetric reports a metric name that does not parse.
	ErrUnknownMetric = errors.New("unknown distance metric")

	// ErrLengthMismatch reports vectors of different lengths, typically
	// descriptors built with different decomposition depths. Comparisons
	// fail fast; vectors are never truncated or padded.
	ErrLengthMismatch = errors.New("feature vectors have different lengths")
)

// Parse resolves a metric by name: "l1", "l2" or "linf" (also accepted:
// "manhattan", "euclidean", "chebyshev").
func Parse(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "l1", "manhattan":
		return L1, nil
	case "l2", "euclidean":
		return L2, nil
	case "linf", "chebyshev", "max":
		return LInf, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

func (m Metric) String() string {
	switch m {
	case L1:
		return "l1"
	case L2:
		return "l2"
	case LInf:
		return "linf"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// Distance returns the distance between two equal-length feature vectors.
// All three metrics are true metrics: non-negative, zero iff the vectors
// are element-wise equal, symmetric, and the triangle inequality holds.
func (m Metric) Distance(a, b feature.Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}

	switch m {
	case L1:
		var sum float64
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum, nil
	case L2:
		var sum float64
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return math.Sqrt(sum), nil
	case LInf:
		var max float64
		for i := range a {
			if d := math.Abs(a[i] - b[i]); d > max {
				max = d
			}
		}
		return max, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
}
