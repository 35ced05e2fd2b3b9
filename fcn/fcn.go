// Package fcn provides trainable functions of batched conditioning
// data. These serve as the conditional mean, scale, and gate
// log-probability functions consumed by the distribution package.
package fcn

import (
	"gorgonia.org/tensor"
)

// Param is a single named trainable parameter. The Value tensor is
// owned by the function that reports it and is updated in place by an
// external optimizer between calls.
type Param struct {
	Name  string
	Value tensor.Tensor
}

// Fcn is a function of a batch of conditioning inputs. Forward maps an
// input of shape (n, d_x) to an output of shape (n, d_y), one row per
// input row. Functions used as conditional scales must produce
// strictly positive output.
type Fcn interface {
	Forward(x tensor.Tensor) (tensor.Tensor, error)

	// Params returns the trainable parameters of the function. Functions
	// with no trainable parameters return an empty slice.
	Params() []*Param
}
