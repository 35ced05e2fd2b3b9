package condist

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
)

// Exp returns a new tensor holding the element-wise exponential of t.
// Supported dtypes are tensor.Float64 and tensor.Float32.
func Exp(t tensor.Tensor) (tensor.Tensor, error) {
	return unary("exp", t, math.Exp, math32.Exp)
}

// Log returns a new tensor holding the element-wise natural logarithm
// of t.
func Log(t tensor.Tensor) (tensor.Tensor, error) {
	return unary("log", t, math.Log, math32.Log)
}

// Log1p returns a new tensor holding the element-wise log(1 + x) of t.
// Log1p is more accurate than Log when its argument is near zero,
// which is where the Bernoulli inactive-gate term log(1 - p) lands for
// small gate probabilities.
func Log1p(t tensor.Tensor) (tensor.Tensor, error) {
	return unary("log1p", t, math.Log1p, math32.Log1p)
}

// unary applies f64 or f32 element-wise depending on the dtype of t,
// returning a fresh tensor.
func unary(method string, t tensor.Tensor, f64 func(float64) float64,
	f32 func(float32) float32) (tensor.Tensor, error) {
	d, err := dense(method, t)
	if err != nil {
		return nil, err
	}

	out := d.Clone().(*tensor.Dense)
	switch out.Dtype() {
	case tensor.Float64:
		data := out.Data().([]float64)
		for i := range data {
			data[i] = f64(data[i])
		}

	case tensor.Float32:
		data := out.Data().([]float32)
		for i := range data {
			data[i] = f32(data[i])
		}

	default:
		return nil, fmt.Errorf("%v: dtype %v not supported", method,
			out.Dtype())
	}

	return out, nil
}
