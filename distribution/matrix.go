package distribution

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/samuelfneumann/condist"
	"github.com/samuelfneumann/condist/fcn"
)

// MatrixProduct is a conditional distribution over a matrix W with one
// column per child distribution, conditionally independent across
// columns given the per-row conditioning data:
//
//	P(W|X) = prod_j P_j(W[:,j] | X)
//
// Columns may mix families, e.g. a spike-and-slab column next to a
// plain Gaussian column. Samples stay in per-column compact form so
// heterogeneous columns are never forced into one tensor.
type MatrixProduct struct {
	cols []Distribution
}

// NewMatrixProduct returns a new MatrixProduct with cols[j] governing
// column j of the matrix.
func NewMatrixProduct(cols []Distribution) (*MatrixProduct, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("newMatrixProduct: at least one column " +
			"distribution is required")
	}
	for j, col := range cols {
		if col == nil {
			return nil, fmt.Errorf("newMatrixProduct: column %v is nil", j)
		}
	}

	dists := make([]Distribution, len(cols))
	copy(dists, cols)

	return &MatrixProduct{cols: dists}, nil
}

// Mean concatenates each column's conditional mean along the column
// axis.
func (m *MatrixProduct) Mean(x tensor.Tensor) (tensor.Tensor, error) {
	means := make([]tensor.Tensor, len(m.cols))
	for j, col := range m.cols {
		mn, err := col.Mean(x)
		if err != nil {
			return nil, fmt.Errorf("mean: could not compute mean of column "+
				"%v: %v", j, err)
		}
		means[j] = mn
	}

	out, err := condist.Hstack(means...)
	if err != nil {
		return nil, fmt.Errorf("mean: could not join column means: %v", err)
	}

	return out, nil
}

// Sample draws each column independently, returning the per-column
// compact samples in column order.
func (m *MatrixProduct) Sample(x tensor.Tensor) (Sample, error) {
	colSmps := make([]Sample, len(m.cols))
	for j, col := range m.cols {
		smp, err := col.Sample(x)
		if err != nil {
			return nil, fmt.Errorf("sample: could not sample column %v: %v",
				j, err)
		}
		colSmps[j] = smp
	}

	return &MatrixSample{Cols: colSmps}, nil
}

// LogProb computes each column's log-probability independently and
// sums across columns per row; this is the conditional-independence
// decomposition of the joint density.
func (m *MatrixProduct) LogProb(x tensor.Tensor, y Sample) (tensor.Tensor,
	error) {
	ys, ok := y.(*MatrixSample)
	if !ok {
		return nil, fmt.Errorf("logProb: expected a matrix sample but got "+
			"%T", y)
	}
	if len(ys.Cols) != len(m.cols) {
		return nil, fmt.Errorf("logProb: expected %v column samples but "+
			"got %v", len(m.cols), len(ys.Cols))
	}

	var ll tensor.Tensor
	for j, col := range m.cols {
		colLL, err := col.LogProb(x, ys.Cols[j])
		if err != nil {
			return nil, fmt.Errorf("logProb: could not compute log "+
				"probability of column %v: %v", j, err)
		}

		if ll == nil {
			ll = colLL
			continue
		}

		ll, err = tensor.Add(ll, colLL)
		if err != nil {
			return nil, fmt.Errorf("logProb: could not accumulate column "+
				"%v: %v", j, err)
		}
	}

	return ll, nil
}

// KL computes the per-row divergence against another MatrixProduct
// using the single-sample empirical estimator.
func (m *MatrixProduct) KL(other Distribution, x tensor.Tensor,
	smp Sample) (tensor.Tensor, error) {
	o, ok := other.(*MatrixProduct)
	if !ok {
		return nil, fmt.Errorf("kl: KL divergence requires distributions "+
			"of the same family but got *MatrixProduct and %T", other)
	}
	if len(o.cols) != len(m.cols) {
		return nil, fmt.Errorf("kl: distributions have different column "+
			"counts: %v and %v", len(m.cols), len(o.cols))
	}

	kl, err := EmpiricalKL(m, o, x, smp)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}

	return kl, nil
}

// FormStandardSample expands each column's compact sample through the
// column's own conversion and joins the results into a dense matrix.
func (m *MatrixProduct) FormStandardSample(smp Sample) (tensor.Tensor,
	error) {
	ys, ok := smp.(*MatrixSample)
	if !ok {
		return nil, fmt.Errorf("formStandardSample: expected a matrix "+
			"sample but got %T", smp)
	}
	if len(ys.Cols) != len(m.cols) {
		return nil, fmt.Errorf("formStandardSample: expected %v column "+
			"samples but got %v", len(m.cols), len(ys.Cols))
	}

	colTs := make([]tensor.Tensor, len(m.cols))
	for j, col := range m.cols {
		t, err := col.FormStandardSample(ys.Cols[j])
		if err != nil {
			return nil, fmt.Errorf("formStandardSample: could not form "+
				"column %v: %v", j, err)
		}
		colTs[j] = t
	}

	out, err := condist.Hstack(colTs...)
	if err != nil {
		return nil, fmt.Errorf("formStandardSample: could not join "+
			"columns: %v", err)
	}

	return out, nil
}

// FormCompactSample splits a dense matrix into its columns and packs
// each through the corresponding column distribution's own conversion.
func (m *MatrixProduct) FormCompactSample(smp tensor.Tensor) (Sample,
	error) {
	mt, err := condist.AsMatrix(smp)
	if err != nil {
		return nil, fmt.Errorf("formCompactSample: %v", err)
	}
	if mt.Shape()[1] != len(m.cols) {
		return nil, fmt.Errorf("formCompactSample: expected %v columns "+
			"but got %v", len(m.cols), mt.Shape()[1])
	}

	colTs, err := condist.SplitCols(mt)
	if err != nil {
		return nil, fmt.Errorf("formCompactSample: could not split "+
			"columns: %v", err)
	}

	colSmps := make([]Sample, len(m.cols))
	for j, col := range m.cols {
		s, err := col.FormCompactSample(colTs[j])
		if err != nil {
			return nil, fmt.Errorf("formCompactSample: could not pack "+
				"column %v: %v", j, err)
		}
		colSmps[j] = s
	}

	return &MatrixSample{Cols: colSmps}, nil
}

// ReparamParams returns the union of the columns' reparameterizable
// partitions.
func (m *MatrixProduct) ReparamParams() []*fcn.Param {
	var params []*fcn.Param
	for _, col := range m.cols {
		params = append(params, col.ReparamParams()...)
	}

	return params
}

// ScoreParams returns the union of the columns' score-function
// partitions.
func (m *MatrixProduct) ScoreParams() []*fcn.Param {
	var params []*fcn.Param
	for _, col := range m.cols {
		params = append(params, col.ScoreParams()...)
	}

	return params
}
