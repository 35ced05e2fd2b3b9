package distribution

import (
	"math"
	"testing"

	"gorgonia.org/tensor"

	"github.com/samuelfneumann/condist"
	"github.com/samuelfneumann/condist/fcn"
)

// newConstBernoulli returns a Bernoulli whose gate log-probability is
// logP for every row.
func newConstBernoulli(t *testing.T, logP float64, seed uint64) *Bernoulli {
	t.Helper()

	gate, err := fcn.NewConstantReal([]float64{logP})
	if err != nil {
		t.Fatal(err)
	}

	b, err := NewBernoulli(gate, seed)
	if err != nil {
		t.Fatal(err)
	}

	return b
}

// newConstGaussian returns a Gaussian with constant conditional mean
// and standard deviation.
func newConstGaussian(t *testing.T, mn, std []float64, seed uint64) *Gaussian {
	t.Helper()

	mnF, err := fcn.NewConstantReal(mn)
	if err != nil {
		t.Fatal(err)
	}
	stdF, err := fcn.NewConstantReal(std)
	if err != nil {
		t.Fatal(err)
	}

	g, err := NewGaussian(mnF, stdF, seed)
	if err != nil {
		t.Fatal(err)
	}

	return g
}

func newMatrix(t *testing.T, rows, cols int, backing []float64) *tensor.Dense {
	t.Helper()

	return tensor.NewDense(
		tensor.Float64,
		[]int{rows, cols},
		tensor.WithBacking(backing),
	)
}

func newVector(t *testing.T, backing []float64) *tensor.Dense {
	t.Helper()

	return tensor.NewDense(
		tensor.Float64,
		[]int{len(backing)},
		tensor.WithBacking(backing),
	)
}

// conditioning returns an arbitrary conditioning batch of shape
// (n, 2).
func conditioning(t *testing.T, n int) *tensor.Dense {
	t.Helper()

	backing := make([]float64, n*2)
	for i := range backing {
		backing[i] = float64(i%7) - 3.0
	}

	return newMatrix(t, n, 2, backing)
}

func f64s(t *testing.T, x tensor.Tensor) []float64 {
	t.Helper()

	vals, err := condist.Float64s(x)
	if err != nil {
		t.Fatal(err)
	}

	return vals
}

// checkRoundTrip verifies that converting a drawn sample to standard
// form, packing it back to compact form, and expanding it again yields
// the same standard tensor element for element.
func checkRoundTrip(t *testing.T, d Distribution, x tensor.Tensor) {
	t.Helper()

	const threshold float64 = 0.0

	smp, err := d.Sample(x)
	if err != nil {
		t.Fatal(err)
	}

	std1, err := d.FormStandardSample(smp)
	if err != nil {
		t.Fatal(err)
	}

	compact, err := d.FormCompactSample(std1)
	if err != nil {
		t.Fatal(err)
	}

	std2, err := d.FormStandardSample(compact)
	if err != nil {
		t.Fatal(err)
	}

	first := f64s(t, std1)
	second := f64s(t, std2)
	if len(first) != len(second) {
		t.Fatalf("expected %v elements after round trip but got %v",
			len(first), len(second))
	}

	for i := range first {
		if math.Abs(first[i]-second[i]) > threshold {
			t.Errorf("expected %v at index %v after round trip but got %v",
				first[i], i, second[i])
		}
	}
}

func TestEmpiricalKLSharedSample(t *testing.T) {
	const threshold float64 = 0.000001
	const n int = 6

	p := newConstBernoulli(t, math.Log(0.4), 11)
	q := newConstBernoulli(t, math.Log(0.7), 12)
	x := conditioning(t, n)

	smp, err := p.Sample(x)
	if err != nil {
		t.Fatal(err)
	}

	kl, err := EmpiricalKL(p, q, x, smp)
	if err != nil {
		t.Fatal(err)
	}

	lp, err := p.LogProb(x, smp)
	if err != nil {
		t.Fatal(err)
	}
	lq, err := q.LogProb(x, smp)
	if err != nil {
		t.Fatal(err)
	}

	klVals := f64s(t, kl)
	lpVals := f64s(t, lp)
	lqVals := f64s(t, lq)
	for i := range klVals {
		expected := lpVals[i] - lqVals[i]
		if math.Abs(klVals[i]-expected) > threshold {
			t.Errorf("expected %v at row %v but got %v", expected, i,
				klVals[i])
		}
	}
}
