// Package condist provides eager tensor operations shared by the
// conditional distributions in the distribution subpackage.
package condist

import (
	"fmt"

	"gorgonia.org/tensor"
)

// dense asserts that t is a dense tensor. The method argument is used
// as the error prefix.
func dense(method string, t tensor.Tensor) (*tensor.Dense, error) {
	if t == nil {
		return nil, fmt.Errorf("%v: cannot operate on nil tensor", method)
	}

	d, ok := t.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("%v: expected a dense tensor but got %T",
			method, t)
	} else if d.Size() == 0 {
		return nil, fmt.Errorf("%v: cannot operate on empty tensor", method)
	}

	return d, nil
}

// Float64s returns the elements of t as a float64 slice, regardless
// of whether t holds float64 or float32 data. The returned slice is
// always a fresh allocation.
func Float64s(t tensor.Tensor) ([]float64, error) {
	d, err := dense("float64s", t)
	if err != nil {
		return nil, err
	}

	switch d.Dtype() {
	case tensor.Float64:
		data := d.Data().([]float64)
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil

	case tensor.Float32:
		data := d.Data().([]float32)
		out := make([]float64, len(data))
		for i := range data {
			out[i] = float64(data[i])
		}
		return out, nil

	default:
		return nil, fmt.Errorf("float64s: dtype %v not supported", d.Dtype())
	}
}
