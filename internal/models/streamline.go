package models

// Point3D represents a single point of a streamline in mm coordinates
type Point3D struct {
	X, Y, Z float64
}

// Streamline is an ordered sequence of 3D points approximating a fiber tract.
// Streamlines are read-only once produced by resampling; geometric operations
// always return new streamlines instead of mutating in place.
type Streamline []Point3D

// Bundle is an ordered collection of streamlines. Collection order matters
// for index-paired metrics and is irrelevant for closest-match metrics.
type Bundle []Streamline

// NumPoints returns the point count shared by all streamlines in the bundle,
// or -1 if the bundle is empty or the streamlines have differing lengths.
func (b Bundle) NumPoints() int {
	if len(b) == 0 {
		return -1
	}
	n := len(b[0])
	for _, s := range b[1:] {
		if len(s) != n {
			return -1
		}
	}
	return n
}

// TotalPoints returns the number of points across all streamlines
func (b Bundle) TotalPoints() int {
	total := 0
	for _, s := range b {
		total += len(s)
	}
	return total
}

// Clone returns a deep copy of the bundle
func (b Bundle) Clone() Bundle {
	out := make(Bundle, len(b))
	for i, s := range b {
		cs := make(Streamline, len(s))
		copy(cs, s)
		out[i] = cs
	}
	return out
}
