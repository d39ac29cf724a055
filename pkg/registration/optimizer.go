// Package registration fits rigid and affine transforms that align a moving
// bundle of streamlines onto a static one by minimizing a streamline distance
// metric with a derivative-free optimizer.
package registration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"tractreg/internal/models"
	"tractreg/pkg/geometry"
	"tractreg/pkg/metric"
)

// alignedThreshold is the objective value below which the bundles are
// considered already aligned and the search is skipped entirely.
const alignedThreshold = 1e-10

// Result holds a fitted transform. Matrix and Params are always populated;
// the diagnostic fields are populated only when Options.FullOutput was set.
// A Result is immutable after creation.
type Result struct {
	// Matrix is the fitted 4x4 homogeneous transform
	Matrix *mat.Dense

	// Params is the fitted parameter vector (length 6 or 12)
	Params []float64

	// Objective is the final metric value at Params
	Objective float64

	// Iterations is the number of major optimizer iterations performed
	Iterations int

	// FuncEvaluations is the number of objective evaluations performed
	FuncEvaluations int

	// Converged reports whether the optimizer met its tolerance before
	// exhausting MaxIterations. A false value is a soft outcome: the
	// best-found transform is still usable.
	Converged bool
}

// Transform applies the fitted transform to a bundle and returns the moved
// bundle. The input is never modified.
func (r *Result) Transform(bundle models.Bundle) models.Bundle {
	return geometry.ApplyTransform(bundle, r.Matrix)
}

// Optimize fits a transform of the configured kind that minimizes
// m(static, transform(moving)), starting from opts.InitialGuess, using a
// Nelder-Mead simplex search. Malformed inputs (metric preconditions, bad
// initial guess length) fail immediately; running out of iterations does
// not, and is reported through Result.Converged instead.
func Optimize(static, moving models.Bundle, m metric.Metric, opts Options) (*Result, error) {
	x0 := opts.InitialGuess
	if x0 == nil {
		x0 = IdentityParams(opts.Kind)
	}
	if len(x0) != opts.Kind.NumParams() {
		return nil, fmt.Errorf("initial guess has %d parameters, %s registration needs %d",
			len(x0), opts.Kind, opts.Kind.NumParams())
	}

	// Validate the metric preconditions once up front so the objective can
	// treat later evaluation errors as unreachable.
	m0, err := geometry.BuildTransform(x0)
	if err != nil {
		return nil, err
	}
	f0, err := m.Evaluate(static, geometry.ApplyTransform(moving, m0))
	if err != nil {
		return nil, err
	}
	if f0 < alignedThreshold {
		// Already aligned, nothing to search for
		res := &Result{Matrix: m0, Params: append([]float64(nil), x0...)}
		if opts.FullOutput {
			res.Objective = f0
			res.Converged = true
		}
		return res, nil
	}

	objective := func(x []float64) float64 {
		t, err := geometry.BuildTransform(x)
		if err != nil {
			return math.Inf(1)
		}
		d, err := m.Evaluate(static, geometry.ApplyTransform(moving, t))
		if err != nil {
			return math.Inf(1)
		}
		return d
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance,
			Iterations: 100,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return nil, fmt.Errorf("optimizer failed: %v", err)
	}

	matrix, berr := geometry.BuildTransform(result.X)
	if berr != nil {
		return nil, berr
	}

	res := &Result{
		Matrix: matrix,
		Params: append([]float64(nil), result.X...),
	}
	if opts.FullOutput {
		res.Objective = result.F
		res.Iterations = result.Stats.MajorIterations
		res.FuncEvaluations = result.Stats.FuncEvaluations
		res.Converged = err == nil && result.Status != optimize.IterationLimit &&
			result.Status != optimize.NotTerminated && result.Status != optimize.Failure
	}
	return res, nil
}
