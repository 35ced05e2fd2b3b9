package distribution

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/condist"
	"github.com/samuelfneumann/condist/fcn"
)

// Gaussian is a conditional distribution over conditionally
// independent real variables. It wraps a conditional mean function and
// a strictly positive conditional scale function, each mapping a batch
// of conditioning inputs of shape (n, d_x) to a tensor of shape
// (n, d_y).
//
// Sampling uses the location-scale reparameterization mn + z*std with
// standard-normal base noise z, so gradients of a draw flow through
// both the mean and scale parameters; accordingly every parameter sits
// in the reparameterizable partition. The KL divergence between two
// Gaussians has the diagonal closed form and overrides the empirical
// estimator.
type Gaussian struct {
	meanFcn fcn.Fcn
	stdFcn  fcn.Fcn
	source  rand.Source
	seed    uint64
}

// NewGaussian returns a new Gaussian with the given conditional mean
// and standard deviation functions.
func NewGaussian(meanFcn, stdFcn fcn.Fcn, seed uint64) (*Gaussian, error) {
	if meanFcn == nil {
		return nil, fmt.Errorf("newGaussian: meanFcn cannot be nil")
	} else if stdFcn == nil {
		return nil, fmt.Errorf("newGaussian: stdFcn cannot be nil")
	}

	return &Gaussian{
		meanFcn: meanFcn,
		stdFcn:  stdFcn,
		source:  rand.NewSource(seed),
		seed:    seed,
	}, nil
}

// Mean returns the conditional mean at each row of x.
func (g *Gaussian) Mean(x tensor.Tensor) (tensor.Tensor, error) {
	mn, err := g.meanFcn.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("mean: could not evaluate mean function: %v",
			err)
	}

	return mn, nil
}

// LogProb computes the diagonal-Gaussian log density of y summed
// across the y-dimension per row:
//
//	ll = -0.5*sum(((y - mn)/std)^2) - sum(log(std)) - (d_y/2)*log(2pi)
//
// A rank-1 y is promoted to a single-column matrix. The row counts of
// x and y must match.
func (g *Gaussian) LogProb(x tensor.Tensor, y Sample) (tensor.Tensor,
	error) {
	ys, ok := y.(*DenseSample)
	if !ok {
		return nil, fmt.Errorf("logProb: expected a dense sample but got %T",
			y)
	}

	yt, err := condist.AsMatrix(ys.Values)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	n, err := rowsOf("logProb", x)
	if err != nil {
		return nil, err
	}
	if yt.Shape()[0] != n {
		return nil, fmt.Errorf("logProb: expected x and y to have the same "+
			"number of rows but got %v and %v", n, yt.Shape()[0])
	}

	mn, err := matrixFcnOutput("logProb", g.meanFcn, x)
	if err != nil {
		return nil, err
	}
	std, err := matrixFcnOutput("logProb", g.stdFcn, x)
	if err != nil {
		return nil, err
	}

	if !mn.Shape().Eq(yt.Shape()) {
		return nil, fmt.Errorf("logProb: expected y to have shape %v but "+
			"got %v", mn.Shape(), yt.Shape())
	}

	dY := yt.Shape()[1]

	z, err := tensor.Sub(yt, mn)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not subtract mean: %v", err)
	}
	z, err = tensor.Div(z, std)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not scale residual: %v", err)
	}
	sq, err := tensor.Mul(z, z)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not square residual: %v", err)
	}
	ssq, err := tensor.Sum(sq, 1)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not sum squared residual: "+
			"%v", err)
	}

	negativeHalf, err := scalarOf(ssq.Dtype(), -0.5)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	ll, err := tensor.Mul(ssq, negativeHalf)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not scale sum: %v", err)
	}

	lnStd, err := condist.Log(std)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	sumLnStd, err := tensor.Sum(lnStd, 1)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not sum log scales: %v", err)
	}
	ll, err = tensor.Sub(ll, sumLnStd)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not subtract log scales: "+
			"%v", err)
	}

	norm, err := scalarOf(ll.Dtype(), 0.5*float64(dY)*math.Log(2*math.Pi))
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	ll, err = tensor.Sub(ll, norm)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not subtract normalizing "+
			"constant: %v", err)
	}

	return ll, nil
}

// Sample draws one sample per row of x using the location-scale
// reparameterization: standard-normal noise of the conditional mean's
// shape, scaled by the conditional standard deviation and shifted by
// the conditional mean.
func (g *Gaussian) Sample(x tensor.Tensor) (Sample, error) {
	mn, err := matrixFcnOutput("sample", g.meanFcn, x)
	if err != nil {
		return nil, err
	}
	std, err := matrixFcnOutput("sample", g.stdFcn, x)
	if err != nil {
		return nil, err
	}

	if !mn.Shape().Eq(std.Shape()) {
		return nil, fmt.Errorf("sample: expected mean and std to have the "+
			"same shape but got %v and %v", mn.Shape(), std.Shape())
	}

	z, err := normalRand(mn.Dtype(), g.source, mn.Shape()...)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	scaled, err := tensor.Mul(z, std)
	if err != nil {
		return nil, fmt.Errorf("sample: could not scale noise: %v", err)
	}
	y, err := tensor.Add(mn, scaled)
	if err != nil {
		return nil, fmt.Errorf("sample: could not shift noise: %v", err)
	}

	return &DenseSample{Values: y}, nil
}

// KL computes the closed-form divergence between two diagonal
// Gaussians conditioned on the same x:
//
//	kl = 0.5*(sum(log(std2^2/std1^2)) - d + sum(std1^2/std2^2)
//	     + sum(((mn2 - mn1)/std2)^2))
//
// The smp argument is accepted for interface uniformity and ignored.
func (g *Gaussian) KL(other Distribution, x tensor.Tensor, smp Sample) (
	tensor.Tensor, error) {
	o, ok := other.(*Gaussian)
	if !ok {
		return nil, fmt.Errorf("kl: KL divergence requires distributions "+
			"of the same family but got *Gaussian and %T", other)
	}

	mn1, err := matrixFcnOutput("kl", g.meanFcn, x)
	if err != nil {
		return nil, err
	}
	std1, err := matrixFcnOutput("kl", g.stdFcn, x)
	if err != nil {
		return nil, err
	}
	mn2, err := matrixFcnOutput("kl", o.meanFcn, x)
	if err != nil {
		return nil, err
	}
	std2, err := matrixFcnOutput("kl", o.stdFcn, x)
	if err != nil {
		return nil, err
	}

	if !mn1.Shape().Eq(mn2.Shape()) || !std1.Shape().Eq(std2.Shape()) {
		return nil, fmt.Errorf("kl: distributions are over variables of "+
			"different sizes: %v and %v", mn1.Shape(), mn2.Shape())
	}

	d := mn1.Shape()[1]

	// sum(log(std2^2/std1^2)) = 2*(sum(log(std2)) - sum(log(std1)))
	lnStd1, err := condist.Log(std1)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	lnStd2, err := condist.Log(std2)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	logDetDiff, err := tensor.Sub(lnStd2, lnStd1)
	if err != nil {
		return nil, fmt.Errorf("kl: could not subtract log scales: %v", err)
	}
	logDetDiff, err = tensor.Sum(logDetDiff, 1)
	if err != nil {
		return nil, fmt.Errorf("kl: could not sum log scales: %v", err)
	}
	two, err := scalarOf(logDetDiff.Dtype(), 2.0)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	logDetDiff, err = tensor.Mul(logDetDiff, two)
	if err != nil {
		return nil, fmt.Errorf("kl: could not scale log determinant "+
			"difference: %v", err)
	}

	ratio, err := tensor.Div(std1, std2)
	if err != nil {
		return nil, fmt.Errorf("kl: could not divide scales: %v", err)
	}
	ratio, err = tensor.Mul(ratio, ratio)
	if err != nil {
		return nil, fmt.Errorf("kl: could not square scale ratio: %v", err)
	}
	ratioSum, err := tensor.Sum(ratio, 1)
	if err != nil {
		return nil, fmt.Errorf("kl: could not sum scale ratios: %v", err)
	}

	mnDiff, err := tensor.Sub(mn2, mn1)
	if err != nil {
		return nil, fmt.Errorf("kl: could not subtract means: %v", err)
	}
	mnDiff, err = tensor.Div(mnDiff, std2)
	if err != nil {
		return nil, fmt.Errorf("kl: could not scale mean difference: %v",
			err)
	}
	mnDiff, err = tensor.Mul(mnDiff, mnDiff)
	if err != nil {
		return nil, fmt.Errorf("kl: could not square mean difference: %v",
			err)
	}
	mnDiffSum, err := tensor.Sum(mnDiff, 1)
	if err != nil {
		return nil, fmt.Errorf("kl: could not sum mean differences: %v", err)
	}

	kl, err := tensor.Add(logDetDiff, ratioSum)
	if err != nil {
		return nil, fmt.Errorf("kl: could not accumulate terms: %v", err)
	}
	kl, err = tensor.Add(kl, mnDiffSum)
	if err != nil {
		return nil, fmt.Errorf("kl: could not accumulate terms: %v", err)
	}
	dims, err := scalarOf(kl.Dtype(), float64(d))
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	kl, err = tensor.Sub(kl, dims)
	if err != nil {
		return nil, fmt.Errorf("kl: could not subtract dimension count: "+
			"%v", err)
	}
	half, err := scalarOf(kl.Dtype(), 0.5)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	kl, err = tensor.Mul(kl, half)
	if err != nil {
		return nil, fmt.Errorf("kl: could not halve divergence: %v", err)
	}

	return kl, nil
}

// FormStandardSample returns the sample's values; the compact and
// standard representations of a Gaussian sample are identical.
func (g *Gaussian) FormStandardSample(smp Sample) (tensor.Tensor, error) {
	s, ok := smp.(*DenseSample)
	if !ok {
		return nil, fmt.Errorf("formStandardSample: expected a dense "+
			"sample but got %T", smp)
	}

	return s.Values, nil
}

// FormCompactSample wraps a dense sample tensor of shape (n) or
// (n, d_y).
func (g *Gaussian) FormCompactSample(smp tensor.Tensor) (Sample, error) {
	m, err := condist.AsMatrix(smp)
	if err != nil {
		return nil, fmt.Errorf("formCompactSample: %v", err)
	}

	return &DenseSample{Values: m}, nil
}

// ReparamParams returns the mean and scale function parameters; both
// receive gradients through the location-scale reparameterization.
func (g *Gaussian) ReparamParams() []*fcn.Param {
	params := append([]*fcn.Param{}, g.meanFcn.Params()...)
	return append(params, g.stdFcn.Params()...)
}

// ScoreParams returns an empty partition.
func (g *Gaussian) ScoreParams() []*fcn.Param {
	return nil
}
