package distribution

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/condist"
	"github.com/samuelfneumann/condist/fcn"
)

// Bernoulli is a conditional distribution over a single binary
// variable. It wraps a gate log-probability function mapping a batch
// of conditioning inputs x to log P(y=1|x), one scalar per row.
//
// Its compact and standard sample representations coincide: a flat
// 0/1 vector with one entry per row of x. The gate probability has no
// smooth reparameterization, so every parameter sits in the
// score-function partition.
type Bernoulli struct {
	logProbFcn fcn.Fcn
	source     rand.Source
	seed       uint64
}

// NewBernoulli returns a new Bernoulli wrapping logProbFcn, which must
// output a tensor of shape (n) or (n, 1) holding log P(y=1|x) for each
// row of its input.
func NewBernoulli(logProbFcn fcn.Fcn, seed uint64) (*Bernoulli, error) {
	if logProbFcn == nil {
		return nil, fmt.Errorf("newBernoulli: logProbFcn cannot be nil")
	}

	return &Bernoulli{
		logProbFcn: logProbFcn,
		source:     rand.NewSource(seed),
		seed:       seed,
	}, nil
}

// Mean returns P(y=1|x) for each row of x as a length-n vector.
func (b *Bernoulli) Mean(x tensor.Tensor) (tensor.Tensor, error) {
	lp, err := vectorFcnOutput("mean", b.logProbFcn, x)
	if err != nil {
		return nil, err
	}

	p, err := condist.Exp(lp)
	if err != nil {
		return nil, fmt.Errorf("mean: %v", err)
	}

	return p, nil
}

// LogProb computes log P(y|x). The sample y must be a flat 0/1 vector
// with one entry per row of x; rows with y=1 contribute the gate
// function's output and rows with y=0 contribute log(1 - exp) of it.
func (b *Bernoulli) LogProb(x tensor.Tensor, y Sample) (tensor.Tensor,
	error) {
	ys, ok := y.(*DenseSample)
	if !ok {
		return nil, fmt.Errorf("logProb: expected a dense sample but got %T",
			y)
	}

	yd, ok := ys.Values.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("logProb: expected a dense sample tensor "+
			"but got %T", ys.Values)
	} else if yd.Dims() != 1 {
		return nil, fmt.Errorf("logProb: y must be a vector but has shape "+
			"%v", yd.Shape())
	}

	n, err := rowsOf("logProb", x)
	if err != nil {
		return nil, err
	}
	if yd.Shape()[0] != n {
		return nil, fmt.Errorf("logProb: expected %v samples but got %v",
			n, yd.Shape()[0])
	}

	lp, err := vectorFcnOutput("logProb", b.logProbFcn, x)
	if err != nil {
		return nil, err
	}

	active, err := condist.NonzeroRows(yd)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out := lp.(*tensor.Dense).Clone().(*tensor.Dense)
	switch out.Dtype() {
	case tensor.Float64:
		data := out.Data().([]float64)
		for i := range data {
			if !active[i] {
				data[i] = math.Log1p(-math.Exp(data[i]))
			}
		}

	case tensor.Float32:
		data := out.Data().([]float32)
		for i := range data {
			if !active[i] {
				data[i] = math32.Log1p(-math32.Exp(data[i]))
			}
		}

	default:
		return nil, fmt.Errorf("logProb: dtype %v not supported",
			out.Dtype())
	}

	return out, nil
}

// Sample draws one independent Bernoulli trial per row of x with the
// gate probabilities computed from x.
func (b *Bernoulli) Sample(x tensor.Tensor) (Sample, error) {
	p, err := b.Mean(x)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	draws, err := bernoulliRand(p, b.source)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return &DenseSample{Values: draws}, nil
}

// KL computes the per-row divergence against another Bernoulli using
// the single-sample empirical estimator.
func (b *Bernoulli) KL(other Distribution, x tensor.Tensor, smp Sample) (
	tensor.Tensor, error) {
	o, ok := other.(*Bernoulli)
	if !ok {
		return nil, fmt.Errorf("kl: KL divergence requires distributions "+
			"of the same family but got *Bernoulli and %T", other)
	}

	kl, err := EmpiricalKL(b, o, x, smp)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}

	return kl, nil
}

// FormStandardSample returns the sample's values; the compact and
// standard representations of a Bernoulli sample are identical.
func (b *Bernoulli) FormStandardSample(smp Sample) (tensor.Tensor, error) {
	s, ok := smp.(*DenseSample)
	if !ok {
		return nil, fmt.Errorf("formStandardSample: expected a dense "+
			"sample but got %T", smp)
	}

	return s.Values, nil
}

// FormCompactSample wraps a flat 0/1 sample vector, accepting shape
// (n) or (n, 1).
func (b *Bernoulli) FormCompactSample(smp tensor.Tensor) (Sample, error) {
	v, err := condist.AsVector(smp)
	if err != nil {
		return nil, fmt.Errorf("formCompactSample: %v", err)
	}

	return &DenseSample{Values: v}, nil
}

// ReparamParams returns an empty partition; the gate probability has
// no reparameterized sampling path.
func (b *Bernoulli) ReparamParams() []*fcn.Param {
	return nil
}

// ScoreParams returns the gate function's parameters.
func (b *Bernoulli) ScoreParams() []*fcn.Param {
	return b.logProbFcn.Params()
}
