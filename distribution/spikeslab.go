package distribution

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/samuelfneumann/condist"
	"github.com/samuelfneumann/condist/fcn"
)

// SpikeSlab is a conditional spike-and-slab distribution over
// d-dimensional variables. The spike distribution governs a binary
// support indicator per row and the slab distribution governs the
// continuous value of the rows whose support is active; inactive rows
// are exactly zero.
//
// Slab values are only ever sampled and scored for active rows, so no
// work is spent on rows known to be zero. The gradient partition
// delegates to the children: reparameterizable parameters are the
// slab's, score-function parameters are the spike's.
type SpikeSlab struct {
	d     int
	spike Distribution
	slab  Distribution
}

// NewSpikeSlab returns a new SpikeSlab over d-dimensional variables
// with the given spike (support) and slab (value) distributions.
func NewSpikeSlab(d int, spike, slab Distribution) (*SpikeSlab, error) {
	if d < 1 {
		return nil, fmt.Errorf("newSpikeSlab: expected a positive "+
			"dimension but got %v", d)
	} else if spike == nil {
		return nil, fmt.Errorf("newSpikeSlab: spike cannot be nil")
	} else if slab == nil {
		return nil, fmt.Errorf("newSpikeSlab: slab cannot be nil")
	}

	return &SpikeSlab{d: d, spike: spike, slab: slab}, nil
}

// Mean returns E[y|x] = P(support=1|x) * E[slab|x] for each row of x,
// the conditional mean accounting for the probability of being zero.
func (s *SpikeSlab) Mean(x tensor.Tensor) (tensor.Tensor, error) {
	n, err := rowsOf("mean", x)
	if err != nil {
		return nil, err
	}

	ones, err := condist.Ones(x.Dtype(), n)
	if err != nil {
		return nil, fmt.Errorf("mean: %v", err)
	}

	lp, err := s.spike.LogProb(x, &DenseSample{Values: ones})
	if err != nil {
		return nil, fmt.Errorf("mean: could not compute support "+
			"probability: %v", err)
	}
	p, err := condist.Exp(lp)
	if err != nil {
		return nil, fmt.Errorf("mean: %v", err)
	}

	slabMn, err := s.slab.Mean(x)
	if err != nil {
		return nil, fmt.Errorf("mean: could not compute slab mean: %v", err)
	}
	slabMn, err = condist.AsMatrix(slabMn)
	if err != nil {
		return nil, fmt.Errorf("mean: %v", err)
	}

	mn, err := condist.ScaleRows(slabMn, p)
	if err != nil {
		return nil, fmt.Errorf("mean: %v", err)
	}

	return mn, nil
}

// Sample draws the support pattern from the spike and, when any row is
// active, slab values for exactly the active rows.
func (s *SpikeSlab) Sample(x tensor.Tensor) (Sample, error) {
	n, err := rowsOf("sample", x)
	if err != nil {
		return nil, err
	}

	spikeSmp, err := s.spike.Sample(x)
	if err != nil {
		return nil, fmt.Errorf("sample: could not sample support: %v", err)
	}
	supportT, err := s.spike.FormStandardSample(spikeSmp)
	if err != nil {
		return nil, fmt.Errorf("sample: could not form support sample: %v",
			err)
	}

	support, err := condist.NonzeroRows(supportT)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	idx := condist.MaskIndices(support)
	if len(idx) == 0 {
		return &SpikeSlabSample{N: n, Support: support}, nil
	}

	xActive, err := condist.Rows(x, idx)
	if err != nil {
		return nil, fmt.Errorf("sample: could not select active rows: %v",
			err)
	}

	slabSmp, err := s.slab.Sample(xActive)
	if err != nil {
		return nil, fmt.Errorf("sample: could not sample slab values: %v",
			err)
	}
	vals, err := s.slab.FormStandardSample(slabSmp)
	if err != nil {
		return nil, fmt.Errorf("sample: could not form slab sample: %v", err)
	}
	vals, err = condist.AsMatrix(vals)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return &SpikeSlabSample{N: n, Support: support, Values: vals}, nil
}

// LogProb computes log P(y|x) additively: the spike's log-probability
// of the observed support pattern, plus, for active rows only, the
// slab's log-probability of the observed values.
func (s *SpikeSlab) LogProb(x tensor.Tensor, y Sample) (tensor.Tensor,
	error) {
	ys, ok := y.(*SpikeSlabSample)
	if !ok {
		return nil, fmt.Errorf("logProb: expected a spike-and-slab sample "+
			"but got %T", y)
	}

	n, err := rowsOf("logProb", x)
	if err != nil {
		return nil, err
	}
	if ys.N != n || len(ys.Support) != n {
		return nil, fmt.Errorf("logProb: expected a sample over %v rows "+
			"but got %v", n, ys.N)
	}

	supportT, err := condist.MaskTensor(ys.Support, x.Dtype())
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	ll, err := s.spike.LogProb(x, &DenseSample{Values: supportT})
	if err != nil {
		return nil, fmt.Errorf("logProb: could not compute support "+
			"log probability: %v", err)
	}

	idx := condist.MaskIndices(ys.Support)
	if len(idx) == 0 {
		return ll, nil
	}
	if ys.Values == nil {
		return nil, fmt.Errorf("logProb: sample has %v active rows but no "+
			"values", len(idx))
	}

	xActive, err := condist.Rows(x, idx)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not select active rows: %v",
			err)
	}

	slabLL, err := s.slab.LogProb(xActive, &DenseSample{Values: ys.Values})
	if err != nil {
		return nil, fmt.Errorf("logProb: could not compute slab log "+
			"probability: %v", err)
	}

	if err := condist.ScatterAddVec(ll, idx, slabLL); err != nil {
		return nil, fmt.Errorf("logProb: could not accumulate slab log "+
			"probability: %v", err)
	}

	return ll, nil
}

// KL computes the per-row divergence against another SpikeSlab using
// the single-sample empirical estimator.
func (s *SpikeSlab) KL(other Distribution, x tensor.Tensor, smp Sample) (
	tensor.Tensor, error) {
	o, ok := other.(*SpikeSlab)
	if !ok {
		return nil, fmt.Errorf("kl: KL divergence requires distributions "+
			"of the same family but got *SpikeSlab and %T", other)
	}
	if o.d != s.d {
		return nil, fmt.Errorf("kl: distributions are over variables of "+
			"different sizes: %v and %v", s.d, o.d)
	}

	kl, err := EmpiricalKL(s, o, x, smp)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}

	return kl, nil
}

// FormStandardSample expands a compact sample into a dense (n, d)
// tensor with zero rows wherever the support is inactive. When no
// sample is active the result is all zero.
func (s *SpikeSlab) FormStandardSample(smp Sample) (tensor.Tensor, error) {
	ys, ok := smp.(*SpikeSlabSample)
	if !ok {
		return nil, fmt.Errorf("formStandardSample: expected a "+
			"spike-and-slab sample but got %T", smp)
	}

	dt := tensor.Float64
	if ys.Values != nil {
		dt = ys.Values.Dtype()
	}

	out := tensor.NewDense(dt, []int{ys.N, s.d})
	idx := condist.MaskIndices(ys.Support)
	if len(idx) == 0 {
		return out, nil
	}
	if ys.Values == nil {
		return nil, fmt.Errorf("formStandardSample: sample has %v active "+
			"rows but no values", len(idx))
	}

	vals, err := condist.AsMatrix(ys.Values)
	if err != nil {
		return nil, fmt.Errorf("formStandardSample: %v", err)
	}

	if err := condist.ScatterRows(out, idx, vals); err != nil {
		return nil, fmt.Errorf("formStandardSample: could not place "+
			"values: %v", err)
	}

	return out, nil
}

// FormCompactSample packs a dense sample into compact form. A row is
// considered active when all d of its entries are nonzero; the packed
// values hold exactly the active rows.
func (s *SpikeSlab) FormCompactSample(smp tensor.Tensor) (Sample, error) {
	m, err := condist.AsMatrix(smp)
	if err != nil {
		return nil, fmt.Errorf("formCompactSample: %v", err)
	}
	if m.Shape()[1] != s.d {
		return nil, fmt.Errorf("formCompactSample: expected %v columns but "+
			"got %v", s.d, m.Shape()[1])
	}

	support, err := condist.NonzeroRows(m)
	if err != nil {
		return nil, fmt.Errorf("formCompactSample: %v", err)
	}

	n := m.Shape()[0]
	idx := condist.MaskIndices(support)
	if len(idx) == 0 {
		return &SpikeSlabSample{N: n, Support: support}, nil
	}

	vals, err := condist.Rows(m, idx)
	if err != nil {
		return nil, fmt.Errorf("formCompactSample: could not pack active "+
			"rows: %v", err)
	}

	return &SpikeSlabSample{N: n, Support: support, Values: vals}, nil
}

// ReparamParams delegates to the slab; slab values sample through the
// slab's own reparameterization.
func (s *SpikeSlab) ReparamParams() []*fcn.Param {
	return s.slab.ReparamParams()
}

// ScoreParams delegates to the spike; the support indicator is
// discrete and needs a score-function estimator.
func (s *SpikeSlab) ScoreParams() []*fcn.Param {
	return s.spike.ScoreParams()
}
