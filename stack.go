package condist

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Ones returns a tensor of the given dtype and shape filled with ones.
func Ones(dt tensor.Dtype, shape ...int) (tensor.Tensor, error) {
	size := tensor.Shape(shape).TotalSize()
	if size == 0 {
		return nil, fmt.Errorf("ones: cannot create a tensor of shape %v",
			tensor.Shape(shape))
	}

	switch dt {
	case tensor.Float64:
		return tensor.NewDense(
			dt,
			shape,
			tensor.WithBacking(ones64(size)),
		), nil

	case tensor.Float32:
		return tensor.NewDense(
			dt,
			shape,
			tensor.WithBacking(ones32(size)),
		), nil

	default:
		return nil, fmt.Errorf("ones: dtype %v not supported", dt)
	}
}

func ones64(size int) []float64 {
	slice := make([]float64, size)
	for i := range slice {
		slice[i] = 1.0
	}

	return slice
}

func ones32(size int) []float32 {
	slice := make([]float32, size)
	for i := range slice {
		slice[i] = 1.0
	}

	return slice
}

// AsMatrix returns t as a matrix. A vector of shape (n) is returned as
// a fresh single-column matrix of shape (n, 1); a matrix is returned
// unchanged.
func AsMatrix(t tensor.Tensor) (tensor.Tensor, error) {
	d, err := dense("asMatrix", t)
	if err != nil {
		return nil, err
	}

	switch d.Dims() {
	case 1:
		out := d.Clone().(*tensor.Dense)
		if err := out.Reshape(d.Shape()[0], 1); err != nil {
			return nil, fmt.Errorf("asMatrix: could not reshape: %v", err)
		}
		return out, nil

	case 2:
		return d, nil

	default:
		return nil, fmt.Errorf("asMatrix: expected a vector or matrix but "+
			"got shape %v", d.Shape())
	}
}

// AsVector returns t as a vector. A single-column matrix of shape
// (n, 1) is returned as a fresh vector of shape (n); a vector is
// returned unchanged. Matrices with more than one column are an error.
func AsVector(t tensor.Tensor) (tensor.Tensor, error) {
	d, err := dense("asVector", t)
	if err != nil {
		return nil, err
	}

	switch d.Dims() {
	case 1:
		return d, nil

	case 2:
		if d.Shape()[1] != 1 {
			return nil, fmt.Errorf("asVector: expected a single-column "+
				"matrix but got shape %v", d.Shape())
		}
		out := d.Clone().(*tensor.Dense)
		if err := out.Reshape(d.Shape()[0]); err != nil {
			return nil, fmt.Errorf("asVector: could not reshape: %v", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("asVector: expected a vector or matrix but "+
			"got shape %v", d.Shape())
	}
}

// Hstack joins matrices along the column axis. All inputs must share a
// dtype and row count; vectors are treated as single-column matrices.
// The output is a fresh allocation.
func Hstack(ts ...tensor.Tensor) (tensor.Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("hstack: no tensors to join")
	}

	mats := make([]*tensor.Dense, len(ts))
	rows := -1
	cols := 0
	var dt tensor.Dtype
	for i, t := range ts {
		m, err := AsMatrix(t)
		if err != nil {
			return nil, fmt.Errorf("hstack: %v", err)
		}
		mats[i] = m.(*tensor.Dense)

		if rows == -1 {
			rows = mats[i].Shape()[0]
			dt = mats[i].Dtype()
		} else if mats[i].Shape()[0] != rows {
			return nil, fmt.Errorf("hstack: expected %v rows but tensor %v "+
				"has %v", rows, i, mats[i].Shape()[0])
		} else if mats[i].Dtype() != dt {
			return nil, fmt.Errorf("hstack: expected dtype %v but tensor "+
				"%v has %v", dt, i, mats[i].Dtype())
		}
		cols += mats[i].Shape()[1]
	}

	switch dt {
	case tensor.Float64:
		backing := make([]float64, rows*cols)
		at := 0
		for _, m := range mats {
			data := m.Data().([]float64)
			w := m.Shape()[1]
			for i := 0; i < rows; i++ {
				copy(backing[i*cols+at:i*cols+at+w], data[i*w:(i+1)*w])
			}
			at += w
		}
		return tensor.NewDense(
			dt,
			[]int{rows, cols},
			tensor.WithBacking(backing),
		), nil

	case tensor.Float32:
		backing := make([]float32, rows*cols)
		at := 0
		for _, m := range mats {
			data := m.Data().([]float32)
			w := m.Shape()[1]
			for i := 0; i < rows; i++ {
				copy(backing[i*cols+at:i*cols+at+w], data[i*w:(i+1)*w])
			}
			at += w
		}
		return tensor.NewDense(
			dt,
			[]int{rows, cols},
			tensor.WithBacking(backing),
		), nil

	default:
		return nil, fmt.Errorf("hstack: dtype %v not supported", dt)
	}
}

// SplitCols splits a matrix into its columns, returning one fresh
// single-column matrix of shape (n, 1) per column.
func SplitCols(t tensor.Tensor) ([]tensor.Tensor, error) {
	d, err := dense("splitCols", t)
	if err != nil {
		return nil, err
	}

	if d.Dims() != 2 {
		return nil, fmt.Errorf("splitCols: expected a matrix but got shape "+
			"%v", d.Shape())
	}

	rows := d.Shape()[0]
	cols := d.Shape()[1]
	out := make([]tensor.Tensor, cols)

	switch d.Dtype() {
	case tensor.Float64:
		data := d.Data().([]float64)
		for j := 0; j < cols; j++ {
			backing := make([]float64, rows)
			for i := 0; i < rows; i++ {
				backing[i] = data[i*cols+j]
			}
			out[j] = tensor.NewDense(
				d.Dtype(),
				[]int{rows, 1},
				tensor.WithBacking(backing),
			)
		}

	case tensor.Float32:
		data := d.Data().([]float32)
		for j := 0; j < cols; j++ {
			backing := make([]float32, rows)
			for i := 0; i < rows; i++ {
				backing[i] = data[i*cols+j]
			}
			out[j] = tensor.NewDense(
				d.Dtype(),
				[]int{rows, 1},
				tensor.WithBacking(backing),
			)
		}

	default:
		return nil, fmt.Errorf("splitCols: dtype %v not supported", d.Dtype())
	}

	return out, nil
}

// ScaleRows multiplies row i of the matrix m by v[i], where v is a
// vector with one element per row of m. The output is a fresh
// allocation.
func ScaleRows(m, v tensor.Tensor) (tensor.Tensor, error) {
	mD, err := dense("scaleRows", m)
	if err != nil {
		return nil, err
	}
	vD, err := dense("scaleRows", v)
	if err != nil {
		return nil, err
	}

	if mD.Dims() != 2 {
		return nil, fmt.Errorf("scaleRows: expected a matrix but got shape "+
			"%v", mD.Shape())
	} else if vD.Dims() != 1 {
		return nil, fmt.Errorf("scaleRows: expected a vector but got shape "+
			"%v", vD.Shape())
	} else if mD.Shape()[0] != vD.Shape()[0] {
		return nil, fmt.Errorf("scaleRows: expected %v scales but got %v",
			mD.Shape()[0], vD.Shape()[0])
	} else if mD.Dtype() != vD.Dtype() {
		return nil, fmt.Errorf("scaleRows: expected tensors to have the "+
			"same dtype but got %v and %v", mD.Dtype(), vD.Dtype())
	}

	rows := mD.Shape()[0]
	cols := mD.Shape()[1]
	out := mD.Clone().(*tensor.Dense)

	switch out.Dtype() {
	case tensor.Float64:
		data := out.Data().([]float64)
		scales := vD.Data().([]float64)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data[i*cols+j] *= scales[i]
			}
		}

	case tensor.Float32:
		data := out.Data().([]float32)
		scales := vD.Data().([]float32)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data[i*cols+j] *= scales[i]
			}
		}

	default:
		return nil, fmt.Errorf("scaleRows: dtype %v not supported",
			out.Dtype())
	}

	return out, nil
}
