package fcn

import (
	"fmt"
	"math"

	"gorgonia.org/tensor"
)

// ConstantReal is a function which is constant with respect to its
// input and whose output can take values anywhere in the reals. It is
// useful in place of a predictive network when a constant conditional
// mean or gate log-probability is desired.
type ConstantReal struct {
	vl *tensor.Dense // shape (d)
}

// NewConstantReal returns a new ConstantReal initialized to init. The
// length of init determines the output dimensionality.
func NewConstantReal(init []float64) (*ConstantReal, error) {
	if len(init) == 0 {
		return nil, fmt.Errorf("newConstantReal: init cannot be empty")
	}

	backing := make([]float64, len(init))
	copy(backing, init)

	return &ConstantReal{
		vl: tensor.NewDense(
			tensor.Float64,
			[]int{len(init)},
			tensor.WithBacking(backing),
		),
	}, nil
}

// Forward returns a matrix of shape (n, d) whose every row holds the
// current constant value, where n is the number of rows of x.
func (c *ConstantReal) Forward(x tensor.Tensor) (tensor.Tensor, error) {
	n, err := rowsOf("forward", x)
	if err != nil {
		return nil, err
	}

	d := c.vl.Shape()[0]
	vals := c.vl.Data().([]float64)
	backing := make([]float64, n*d)
	for i := 0; i < n; i++ {
		copy(backing[i*d:(i+1)*d], vals)
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{n, d},
		tensor.WithBacking(backing),
	), nil
}

func (c *ConstantReal) Params() []*Param {
	return []*Param{{Name: "vl", Value: c.vl}}
}

// ConstantBounded is a function which is constant with respect to its
// input and whose output is squashed into a fixed open interval per
// output dimension. Because the output can never reach its bounds, a
// ConstantBounded with a positive lower bound is the standard way to
// supply a strictly positive conditional scale.
//
// The bounded value is parameterized as
//
//	vl = lower + (0.5*tanh(w) + 0.5)*(upper - lower)
//
// with w the trainable parameter, so no constraint handling is needed
// during optimization.
type ConstantBounded struct {
	lower, upper []float64
	w            *tensor.Dense // shape (d)
}

// NewConstantBounded returns a new ConstantBounded with the given
// per-dimension bounds, initialized so that its output equals init.
// Each init value must lie strictly between its bounds.
func NewConstantBounded(lower, upper, init []float64) (*ConstantBounded,
	error) {
	if len(lower) == 0 {
		return nil, fmt.Errorf("newConstantBounded: bounds cannot be empty")
	} else if len(upper) != len(lower) || len(init) != len(lower) {
		return nil, fmt.Errorf("newConstantBounded: expected bounds and "+
			"init of equal length but got %v, %v, and %v", len(lower),
			len(upper), len(init))
	}

	backing := make([]float64, len(init))
	for j := range init {
		if lower[j] >= upper[j] {
			return nil, fmt.Errorf("newConstantBounded: lower bound %v is "+
				"not below upper bound %v at dimension %v", lower[j],
				upper[j], j)
		} else if init[j] <= lower[j] || init[j] >= upper[j] {
			return nil, fmt.Errorf("newConstantBounded: init value %v is "+
				"not strictly inside (%v, %v) at dimension %v", init[j],
				lower[j], upper[j], j)
		}
		backing[j] = math.Atanh(2*(init[j]-lower[j])/(upper[j]-lower[j]) - 1)
	}

	l := make([]float64, len(lower))
	copy(l, lower)
	u := make([]float64, len(upper))
	copy(u, upper)

	return &ConstantBounded{
		lower: l,
		upper: u,
		w: tensor.NewDense(
			tensor.Float64,
			[]int{len(init)},
			tensor.WithBacking(backing),
		),
	}, nil
}

// values computes the current bounded value per dimension. Saturated
// parameters drive tanh to exactly +-1 in float64, which would land
// the output on a bound; such values are nudged one ulp into the
// interval so the output is always strictly inside (lower, upper).
func (c *ConstantBounded) values() []float64 {
	ws := c.w.Data().([]float64)
	vals := make([]float64, len(ws))
	for j := range vals {
		v := c.lower[j] +
			(0.5*math.Tanh(ws[j])+0.5)*(c.upper[j]-c.lower[j])
		if v <= c.lower[j] {
			v = math.Nextafter(c.lower[j], c.upper[j])
		} else if v >= c.upper[j] {
			v = math.Nextafter(c.upper[j], c.lower[j])
		}
		vals[j] = v
	}

	return vals
}

// Forward returns a matrix of shape (n, d) whose every row holds the
// current bounded value, where n is the number of rows of x.
func (c *ConstantBounded) Forward(x tensor.Tensor) (tensor.Tensor, error) {
	n, err := rowsOf("forward", x)
	if err != nil {
		return nil, err
	}

	d := c.w.Shape()[0]
	vals := c.values()

	backing := make([]float64, n*d)
	for i := 0; i < n; i++ {
		copy(backing[i*d:(i+1)*d], vals)
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{n, d},
		tensor.WithBacking(backing),
	), nil
}

func (c *ConstantBounded) Params() []*Param {
	return []*Param{{Name: "w", Value: c.w}}
}

// Bias applies a trainable offset to its input: y = x + o.
type Bias struct {
	o *tensor.Dense // shape (d)
}

// NewBias returns a new Bias over d-dimensional input with a zero
// initial offset.
func NewBias(d int) (*Bias, error) {
	if d < 1 {
		return nil, fmt.Errorf("newBias: expected a positive dimension but "+
			"got %v", d)
	}

	return &Bias{
		o: tensor.NewDense(tensor.Float64, []int{d}),
	}, nil
}

// Forward returns x + o, broadcasting the offset across rows. The
// input must be a float64 matrix with as many columns as the offset
// has dimensions.
func (b *Bias) Forward(x tensor.Tensor) (tensor.Tensor, error) {
	d, ok := x.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("forward: expected a dense tensor but got %T",
			x)
	} else if d.Dims() != 2 {
		return nil, fmt.Errorf("forward: expected a matrix but got shape %v",
			d.Shape())
	} else if d.Shape()[1] != b.o.Shape()[0] {
		return nil, fmt.Errorf("forward: expected %v columns but got %v",
			b.o.Shape()[0], d.Shape()[1])
	} else if d.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("forward: dtype %v not supported", d.Dtype())
	}

	cols := d.Shape()[1]
	rows := d.Shape()[0]
	offsets := b.o.Data().([]float64)
	data := d.Data().([]float64)

	backing := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			backing[i*cols+j] = data[i*cols+j] + offsets[j]
		}
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{rows, cols},
		tensor.WithBacking(backing),
	), nil
}

func (b *Bias) Params() []*Param {
	return []*Param{{Name: "o", Value: b.o}}
}

// IndSmpConstantReal is a function which assigns a different
// real-valued constant scalar to each sample. It is useful when each
// sample should have its own trainable conditional mean, e.g. one
// mean per latent variable in a matrix model.
type IndSmpConstantReal struct {
	n  int
	vl *tensor.Dense // shape (n)
}

// NewIndSmpConstantReal returns a new IndSmpConstantReal over n
// samples, every sample initialized to init.
func NewIndSmpConstantReal(n int, init float64) (*IndSmpConstantReal,
	error) {
	if n < 1 {
		return nil, fmt.Errorf("newIndSmpConstantReal: expected a positive "+
			"number of samples but got %v", n)
	}

	backing := make([]float64, n)
	for i := range backing {
		backing[i] = init
	}

	return &IndSmpConstantReal{
		n: n,
		vl: tensor.NewDense(
			tensor.Float64,
			[]int{n},
			tensor.WithBacking(backing),
		),
	}, nil
}

// Forward returns a matrix of shape (n, 1) holding each sample's
// current value. The input must have exactly n rows.
func (c *IndSmpConstantReal) Forward(x tensor.Tensor) (tensor.Tensor,
	error) {
	rows, err := rowsOf("forward", x)
	if err != nil {
		return nil, err
	}
	if rows != c.n {
		return nil, fmt.Errorf("forward: expected %v input samples but got "+
			"%v", c.n, rows)
	}

	backing := make([]float64, c.n)
	copy(backing, c.vl.Data().([]float64))

	return tensor.NewDense(
		tensor.Float64,
		[]int{c.n, 1},
		tensor.WithBacking(backing),
	), nil
}

func (c *IndSmpConstantReal) Params() []*Param {
	return []*Param{{Name: "vl", Value: c.vl}}
}

// IndSmpConstantBounded is a function which assigns a different
// bounded constant scalar to each sample. It is useful when each
// sample should have its own trainable conditional standard deviation,
// with all samples sharing the same bounds.
type IndSmpConstantBounded struct {
	n int
	f *ConstantBounded
}

// NewIndSmpConstantBounded returns a new IndSmpConstantBounded over n
// samples with the given shared bounds, every sample initialized to
// init. init must lie strictly between the bounds.
func NewIndSmpConstantBounded(n int, lower, upper, init float64) (
	*IndSmpConstantBounded, error) {
	if n < 1 {
		return nil, fmt.Errorf("newIndSmpConstantBounded: expected a "+
			"positive number of samples but got %v", n)
	}

	l := make([]float64, n)
	u := make([]float64, n)
	vls := make([]float64, n)
	for i := 0; i < n; i++ {
		l[i] = lower
		u[i] = upper
		vls[i] = init
	}

	f, err := NewConstantBounded(l, u, vls)
	if err != nil {
		return nil, fmt.Errorf("newIndSmpConstantBounded: %v", err)
	}

	return &IndSmpConstantBounded{n: n, f: f}, nil
}

// Forward returns a matrix of shape (n, 1) holding each sample's
// current bounded value. The input must have exactly n rows.
func (c *IndSmpConstantBounded) Forward(x tensor.Tensor) (tensor.Tensor,
	error) {
	rows, err := rowsOf("forward", x)
	if err != nil {
		return nil, err
	}
	if rows != c.n {
		return nil, fmt.Errorf("forward: expected %v input samples but got "+
			"%v", c.n, rows)
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{c.n, 1},
		tensor.WithBacking(c.f.values()),
	), nil
}

func (c *IndSmpConstantBounded) Params() []*Param {
	return c.f.Params()
}

// rowsOf returns the number of rows of x, which must be a dense vector
// or matrix.
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
