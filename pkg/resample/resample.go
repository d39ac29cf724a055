// Package resample reduces or expands streamlines to a fixed number of
// points evenly distributed along arc length. The registration metrics
// require every streamline to carry the same point count, so bundles are
// normally passed through Bundle before any metric evaluation.
package resample

import (
	"math"

	"tractreg/internal/models"
)

// Streamline resamples s to exactly n points spaced evenly along its arc
// length, using linear interpolation between the original points. The first
// and last points are preserved. n must be at least 2; a streamline with
// fewer than 2 points is returned unchanged.
func Streamline(s models.Streamline, n int) models.Streamline {
	if len(s) < 2 || n < 2 {
		out := make(models.Streamline, len(s))
		copy(out, s)
		return out
	}

	// Cumulative arc length at each original point
	cum := make([]float64, len(s))
	for i := 1; i < len(s); i++ {
		dx := s[i].X - s[i-1].X
		dy := s[i].Y - s[i-1].Y
		dz := s[i].Z - s[i-1].Z
		cum[i] = cum[i-1] + math.Sqrt(dx*dx+dy*dy+dz*dz)
	}
	total := cum[len(cum)-1]

	out := make(models.Streamline, n)
	out[0] = s[0]
	out[n-1] = s[len(s)-1]

	if total == 0 {
		// Degenerate streamline, all points coincide
		for i := 1; i < n-1; i++ {
			out[i] = s[0]
		}
		return out
	}

	seg := 1
	for i := 1; i < n-1; i++ {
		target := total * float64(i) / float64(n-1)
		for seg < len(cum)-1 && cum[seg] < target {
			seg++
		}
		span := cum[seg] - cum[seg-1]
		t := 0.0
		if span > 0 {
			t = (target - cum[seg-1]) / span
		}
		a, b := s[seg-1], s[seg]
		out[i] = models.Point3D{
			X: a.X + t*(b.X-a.X),
			Y: a.Y + t*(b.Y-a.Y),
			Z: a.Z + t*(b.Z-a.Z),
		}
	}
	return out
}

// Bundle resamples every streamline in the bundle to n points.
func Bundle(b models.Bundle, n int) models.Bundle {
	out := make(models.Bundle, len(b))
	for i, s := range b {
		out[i] = Streamline(s, n)
	}
	return out
}
