package registration

import (
	"errors"

	"tractreg/internal/models"
	"tractreg/pkg/metric"
)

// ErrNotFitted is returned when Transform is called on a registration whose
// Optimize has not been run yet.
var ErrNotFitted = errors.New("registration is not fitted, call Optimize first")

// Transform is the one-shot functional entry point: it fits a transform of
// the given kind with default options and returns the moved bundle. Neither
// bundle is centered automatically; callers who need centering should use
// geometry.CenterBundle beforehand.
func Transform(static, moving models.Bundle, m metric.Metric, kind Kind) (models.Bundle, error) {
	opts := DefaultOptions()
	opts.Kind = kind
	res, err := Optimize(static, moving, m, opts)
	if err != nil {
		return nil, err
	}
	return res.Transform(moving), nil
}

// StreamlineRegistration is the stateful entry point: it holds a metric and
// options, and caches the most recent fit so it can be re-applied to other
// bundles. An instance must not be shared between concurrent Optimize calls;
// the cached fit is the only mutable state.
type StreamlineRegistration struct {
	metric metric.Metric
	opts   Options
	result *Result
}

// New creates a registration with the given metric and options
func New(m metric.Metric, opts Options) *StreamlineRegistration {
	return &StreamlineRegistration{metric: m, opts: opts}
}

// Optimize fits the transform aligning moving onto static, stores it for
// later Transform calls and returns it. A second call overwrites the stored
// fit.
func (r *StreamlineRegistration) Optimize(static, moving models.Bundle) (*Result, error) {
	res, err := Optimize(static, moving, r.metric, r.opts)
	if err != nil {
		return nil, err
	}
	r.result = res
	return res, nil
}

// Transform applies the stored fit to a bundle, which need not be the one
// the fit was computed from. Returns ErrNotFitted before the first
// successful Optimize.
func (r *StreamlineRegistration) Transform(bundle models.Bundle) (models.Bundle, error) {
	if r.result == nil {
		return nil, ErrNotFitted
	}
	return r.result.Transform(bundle), nil
}

// Result returns the stored fit, or nil before the first successful Optimize
func (r *StreamlineRegistration) Result() *Result {
	return r.result
}
