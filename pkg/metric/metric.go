// Package metric implements scalar dissimilarity measures between two bundles
// of streamlines. Both policies use the MDF-style distance between a pair of
// equal-length streamlines: the mean Euclidean distance between points at the
// same index.
package metric

import (
	"errors"
	"fmt"
	"math"

	"tractreg/internal/models"
)

// ErrSizeMismatch is returned when a metric is evaluated on bundles that do
// not satisfy its cardinality or point-count preconditions.
var ErrSizeMismatch = errors.New("bundle size mismatch")

// Metric scores the dissimilarity of a moving bundle against a static bundle.
// Lower is better; zero means identical. Both bundles must already be
// resampled so every streamline carries the same number of points.
type Metric interface {
	Evaluate(static, moving models.Bundle) (float64, error)
}

// SumMetric pairs the bundles index for index and sums the per-pair
// streamline distances. It is symmetric but requires equal bundle sizes,
// which makes it suited to registering two samplings of the same anatomy.
type SumMetric struct{}

// Evaluate returns the summed index-paired streamline distances, or
// ErrSizeMismatch when the bundles differ in streamline count or any paired
// streamlines differ in point count.
func (SumMetric) Evaluate(static, moving models.Bundle) (float64, error) {
	if len(static) != len(moving) {
		return 0, fmt.Errorf("%w: static has %d streamlines, moving has %d",
			ErrSizeMismatch, len(static), len(moving))
	}
	total := 0.0
	for i := range static {
		d, err := streamlineDistance(static[i], moving[i])
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// MinMetric matches every moving streamline with its closest static
// streamline and sums the minima. It is intentionally asymmetric and
// tolerant of unequal or partially overlapping bundles: the static bundle
// may cover more (or different) anatomy than the moving one.
type MinMetric struct{}

// Evaluate returns the summed per-moving-streamline minimum distances.
func (MinMetric) Evaluate(static, moving models.Bundle) (float64, error) {
	if len(static) == 0 || len(moving) == 0 {
		return 0, fmt.Errorf("%w: both bundles must be non-empty", ErrSizeMismatch)
	}
	total := 0.0
	for _, m := range moving {
		best := math.MaxFloat64
		for _, s := range static {
			d, err := streamlineDistance(s, m)
			if err != nil {
				return 0, err
			}
			if d < best {
				best = d
			}
		}
		total += best
	}
	return total, nil
}

// ByName returns the metric for a configuration or flag value, "sum" or "min"
func ByName(name string) (Metric, error) {
	switch name {
	case "sum":
		return SumMetric{}, nil
	case "min":
		return MinMetric{}, nil
	default:
		return nil, fmt.Errorf("unknown metric %q (want sum or min)", name)
	}
}

// streamlineDistance computes the mean pointwise Euclidean distance between
// two streamlines with the same number of points.
func streamlineDistance(a, b models.Streamline) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: streamlines have %d and %d points",
			ErrSizeMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	sum := 0.0
	for i := range a {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		sum += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return sum / float64(len(a)), nil
}
