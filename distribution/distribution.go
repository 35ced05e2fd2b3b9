// Package distribution provides conditional probability distributions
// for variational latent-variable models. A Distribution represents
// P(y|x) for a batch of conditioning inputs x, with a uniform contract
// for conditional means, sampling, log-likelihoods, and KL divergence
// against another distribution of the same family.
package distribution

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/samuelfneumann/condist"
	"github.com/samuelfneumann/condist/fcn"
)

// Sample is a realized draw from a conditional distribution in its
// compact representation. The concrete type is fixed per distribution
// family: Bernoulli and Gaussian produce *DenseSample, SpikeSlab
// produces *SpikeSlabSample, and MatrixProduct produces *MatrixSample.
type Sample interface {
	isSample()
}

// DenseSample is a sample whose compact and standard representations
// coincide: a dense tensor of realized values, shape (n) or (n, d_y).
type DenseSample struct {
	Values tensor.Tensor
}

func (*DenseSample) isSample() {}

// SpikeSlabSample is the compact representation of a spike-and-slab
// draw. Support[i] reports whether sample i is active, and Values
// holds one row per active sample, in support order. Values is nil
// when no sample is active.
type SpikeSlabSample struct {
	N       int
	Support []bool
	Values  tensor.Tensor
}

func (*SpikeSlabSample) isSample() {}

// MatrixSample is the compact representation of a matrix-product
// draw: one compact sample per column, in column order.
type MatrixSample struct {
	Cols []Sample
}

func (*MatrixSample) isSample() {}

// Distribution is a conditional distribution P(y|x) over a batch of
// conditioning inputs. Methods are pure functions of the current
// parameters and their tensor arguments; every returned tensor is a
// fresh allocation.
type Distribution interface {
	// Mean returns the conditional mean of the distribution at each
	// row of x.
	Mean(x tensor.Tensor) (tensor.Tensor, error)

	// Sample draws one sample per row of x, returned in the family's
	// compact representation. Families whose parameters admit a
	// smooth reparameterization construct the draw as a deterministic
	// transform of base noise.
	Sample(x tensor.Tensor) (Sample, error)

	// LogProb returns a length-n vector of conditional log-likelihoods
	// of y, which must be in the compact representation produced by
	// Sample.
	LogProb(x tensor.Tensor, y Sample) (tensor.Tensor, error)

	// KL returns a length-n vector of per-row divergences
	// KL(P_self(.|x) || P_other(.|x)). The other distribution must be
	// of the same concrete family as the receiver. smp may supply a
	// pre-drawn sample from the receiver for empirical estimation; a
	// nil smp makes the receiver draw its own. Families with a closed
	// form ignore smp.
	KL(other Distribution, x tensor.Tensor, smp Sample) (tensor.Tensor,
		error)

	// FormStandardSample expands a compact sample into its dense
	// standard representation.
	FormStandardSample(smp Sample) (tensor.Tensor, error)

	// FormCompactSample packs a standard, dense sample into the
	// family's compact representation.
	FormCompactSample(smp tensor.Tensor) (Sample, error)

	// ReparamParams returns the parameters whose sampling gradients
	// flow through the reparameterization trick.
	ReparamParams() []*fcn.Param

	// ScoreParams returns the parameters whose sampling gradients
	// require a score-function estimator.
	ScoreParams() []*fcn.Param
}

// EmpiricalKL is the single-sample divergence estimate
// log p(y|x) - log q(y|x) with y drawn from p. When smp is non-nil it
// is used as y, so a caller can share one draw between a
// reconstruction term and the KL term; otherwise a fresh sample is
// drawn from p. The distributions must accept each other's compact
// sample representation, which holds exactly when they are of the same
// family.
func EmpiricalKL(p, q Distribution, x tensor.Tensor, smp Sample) (
	tensor.Tensor, error) {
	if smp == nil {
		var err error
		smp, err = p.Sample(x)
		if err != nil {
			return nil, fmt.Errorf("empiricalKL: could not sample: %v", err)
		}
	}

	lp, err := p.LogProb(x, smp)
	if err != nil {
		return nil, fmt.Errorf("empiricalKL: could not compute log "+
			"probability under p: %v", err)
	}

	lq, err := q.LogProb(x, smp)
	if err != nil {
		return nil, fmt.Errorf("empiricalKL: could not compute log "+
			"probability under q: %v", err)
	}

	kl, err := tensor.Sub(lp, lq)
	if err != nil {
		return nil, fmt.Errorf("empiricalKL: could not subtract log "+
			"probabilities: %v", err)
	}

	return kl, nil
}

// rowsOf returns the number of rows of the conditioning input x, which
// must be a dense vector or matrix.
func rowsOf(method string, x tensor.Tensor) (int, error) {
	d, ok := x.(*tensor.Dense)
	if !ok {
		return 0, fmt.Errorf("%v: expected a dense tensor but got %T",
			method, x)
	} else if d.Dims() < 1 || d.Dims() > 2 {
		return 0, fmt.Errorf("%v: expected a vector or matrix but got "+
			"shape %v", method, d.Shape())
	}

	return d.Shape()[0], nil
}

// scalarOf returns v as a scalar of the given dtype for use with
// tensor arithmetic.
func scalarOf(dt tensor.Dtype, v float64) (interface{}, error) {
	switch dt {
	case tensor.Float64:
		return v, nil

	case tensor.Float32:
		return float32(v), nil

	default:
		return nil, fmt.Errorf("scalarOf: dtype %v not supported", dt)
	}
}

// vectorFcnOutput runs f on x and flattens the result to a vector,
// accepting outputs of shape (n) or (n, 1).
func vectorFcnOutput(method string, f fcn.Fcn, x tensor.Tensor) (
	tensor.Tensor, error) {
	out, err := f.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("%v: could not evaluate function: %v",
			method, err)
	}

	v, err := condist.AsVector(out)
	if err != nil {
		return nil, fmt.Errorf("%v: expected a length-n function output: %v",
			method, err)
	}

	return v, nil
}

// matrixFcnOutput runs f on x and promotes the result to a matrix,
// accepting outputs of shape (n) or (n, d).
func matrixFcnOutput(method string, f fcn.Fcn, x tensor.Tensor) (
	tensor.Tensor, error) {
	out, err := f.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("%v: could not evaluate function: %v",
			method, err)
	}

	m, err := condist.AsMatrix(out)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", method, err)
	}

	return m, nil
}
