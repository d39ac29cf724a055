package registration

import "fmt"

// Kind selects the transform family being fitted
type Kind int

const (
	// Rigid fits 6 parameters: translation and rotation
	Rigid Kind = iota

	// Affine fits 12 parameters: rigid plus anisotropic scale and shear
	Affine
)

// NumParams returns the length of the parameter vector for this kind
func (k Kind) NumParams() int {
	if k == Affine {
		return 12
	}
	return 6
}

func (k Kind) String() string {
	if k == Affine {
		return "affine"
	}
	return "rigid"
}

// ParseKind converts a configuration or flag value into a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "rigid":
		return Rigid, nil
	case "affine":
		return Affine, nil
	default:
		return Rigid, fmt.Errorf("unknown transform kind %q (want rigid or affine)", s)
	}
}

// IdentityParams returns the parameter vector describing the identity
// transform for the given kind: all zeros for rigid, unit scales and zero
// shears for affine.
func IdentityParams(k Kind) []float64 {
	p := make([]float64, k.NumParams())
	if k == Affine {
		p[6], p[7], p[8] = 1, 1, 1
	}
	return p
}

// Options holds the optimizer configuration for a registration. All fields
// have usable defaults via DefaultOptions; a zero Options is not valid.
type Options struct {
	// Kind selects rigid (6 parameter) or affine (12 parameter) fitting
	Kind Kind

	// InitialGuess is the starting parameter vector. Nil means the identity
	// transform for the selected kind.
	InitialGuess []float64

	// MaxIterations caps the optimizer's major iterations. Exhausting the
	// cap is reported through Result.Converged, not as an error.
	MaxIterations int

	// Tolerance is the absolute objective-change threshold for convergence
	Tolerance float64

	// FullOutput retains the optimizer diagnostics (objective, iteration
	// count, convergence flag) on the Result. When false only the fitted
	// transform and parameters are kept.
	FullOutput bool
}

// DefaultOptions returns sensible defaults for bundle registration
func DefaultOptions() Options {
	return Options{
		Kind:          Rigid,
		MaxIterations: 2000,
		Tolerance:     1e-8,
		FullOutput:    true,
	}
}
