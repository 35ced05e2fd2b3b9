package condist

import (
	"fmt"

	"github.com/samuelfneumann/top"
	"gorgonia.org/tensor"
)

// Rows selects the rows of t listed in idx, in order. The input t may
// be a matrix of shape (n, d) or a vector of shape (n). The output has
// the same number of dimensions as t with len(idx) rows and is a fresh
// allocation. Indices may repeat.
func Rows(t tensor.Tensor, idx []int) (tensor.Tensor, error) {
	d, err := dense("rows", t)
	if err != nil {
		return nil, err
	}

	if len(idx) == 0 {
		return nil, fmt.Errorf("rows: no rows selected")
	}

	n := d.Shape()[0]
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("rows: index %v out of range for tensor "+
				"with %v rows", i, n)
		}
	}

	var indices *tensor.Dense
	switch d.Dims() {
	case 1:
		backing := make([]int, len(idx))
		copy(backing, idx)
		indices = tensor.NewDense(
			tensor.Int,
			[]int{len(idx)},
			tensor.WithBacking(backing),
		)

	case 2:
		cols := d.Shape()[1]
		backing := make([]int, len(idx)*cols)
		for i, row := range idx {
			for j := 0; j < cols; j++ {
				backing[i*cols+j] = row
			}
		}
		indices = tensor.NewDense(
			tensor.Int,
			[]int{len(idx), cols},
			tensor.WithBacking(backing),
		)

	default:
		return nil, fmt.Errorf("rows: expected a vector or matrix but got "+
			"shape %v", d.Shape())
	}

	out, err := top.Gather(d, 0, indices)
	if err != nil {
		return nil, fmt.Errorf("rows: could not gather rows: %v", err)
	}

	return out, nil
}

// ScatterRows copies row j of src into row idx[j] of dst. The
// tensors must be matrices of the same dtype and column count, and
// src must have len(idx) rows. dst is modified in place.
func ScatterRows(dst tensor.Tensor, idx []int, src tensor.Tensor) error {
	dstD, err := dense("scatterRows", dst)
	if err != nil {
		return err
	}
	srcD, err := dense("scatterRows", src)
	if err != nil {
		return err
	}

	if dstD.Dims() != 2 || srcD.Dims() != 2 {
		return fmt.Errorf("scatterRows: expected matrices but got shapes "+
			"%v and %v", dstD.Shape(), srcD.Shape())
	} else if dstD.Shape()[1] != srcD.Shape()[1] {
		return fmt.Errorf("scatterRows: expected %v columns but got %v",
			dstD.Shape()[1], srcD.Shape()[1])
	} else if srcD.Shape()[0] != len(idx) {
		return fmt.Errorf("scatterRows: expected %v source rows but got %v",
			len(idx), srcD.Shape()[0])
	} else if dstD.Dtype() != srcD.Dtype() {
		return fmt.Errorf("scatterRows: expected tensors to have the same "+
			"dtype but got %v and %v", dstD.Dtype(), srcD.Dtype())
	}

	n := dstD.Shape()[0]
	cols := dstD.Shape()[1]
	for _, i := range idx {
		if i < 0 || i >= n {
			return fmt.Errorf("scatterRows: index %v out of range for "+
				"tensor with %v rows", i, n)
		}
	}

	switch dstD.Dtype() {
	case tensor.Float64:
		dstData := dstD.Data().([]float64)
		srcData := srcD.Data().([]float64)
		for j, row := range idx {
			copy(dstData[row*cols:(row+1)*cols], srcData[j*cols:(j+1)*cols])
		}

	case tensor.Float32:
		dstData := dstD.Data().([]float32)
		srcData := srcD.Data().([]float32)
		for j, row := range idx {
			copy(dstData[row*cols:(row+1)*cols], srcData[j*cols:(j+1)*cols])
		}

	default:
		return fmt.Errorf("scatterRows: dtype %v not supported", dstD.Dtype())
	}

	return nil
}

// ScatterAddVec adds src[j] to dst[idx[j]]. Both tensors must be
// vectors of the same dtype, and src must have len(idx) elements. dst
// is modified in place.
func ScatterAddVec(dst tensor.Tensor, idx []int, src tensor.Tensor) error {
	dstD, err := dense("scatterAddVec", dst)
	if err != nil {
		return err
	}
	srcD, err := dense("scatterAddVec", src)
	if err != nil {
		return err
	}

	if dstD.Dims() != 1 || srcD.Dims() != 1 {
		return fmt.Errorf("scatterAddVec: expected vectors but got shapes "+
			"%v and %v", dstD.Shape(), srcD.Shape())
	} else if srcD.Shape()[0] != len(idx) {
		return fmt.Errorf("scatterAddVec: expected %v source elements but "+
			"got %v", len(idx), srcD.Shape()[0])
	} else if dstD.Dtype() != srcD.Dtype() {
		return fmt.Errorf("scatterAddVec: expected tensors to have the "+
			"same dtype but got %v and %v", dstD.Dtype(), srcD.Dtype())
	}

	n := dstD.Shape()[0]
	for _, i := range idx {
		if i < 0 || i >= n {
			return fmt.Errorf("scatterAddVec: index %v out of range for "+
				"tensor with %v elements", i, n)
		}
	}

	switch dstD.Dtype() {
	case tensor.Float64:
		dstData := dstD.Data().([]float64)
		srcData := srcD.Data().([]float64)
		for j, i := range idx {
			dstData[i] += srcData[j]
		}

	case tensor.Float32:
		dstData := dstD.Data().([]float32)
		srcData := srcD.Data().([]float32)
		for j, i := range idx {
			dstData[i] += srcData[j]
		}

	default:
		return fmt.Errorf("scatterAddVec: dtype %v not supported",
			dstD.Dtype())
	}

	return nil
}

// NonzeroRows returns, for each row of t, whether every entry in that
// row is nonzero. A vector is treated as a single-column matrix, so
// each element maps to one row.
func NonzeroRows(t tensor.Tensor) ([]bool, error) {
	d, err := dense("nonzeroRows", t)
	if err != nil {
		return nil, err
	}

	var n, cols int
	switch d.Dims() {
	case 1:
		n, cols = d.Shape()[0], 1
	case 2:
		n, cols = d.Shape()[0], d.Shape()[1]
	default:
		return nil, fmt.Errorf("nonzeroRows: expected a vector or matrix "+
			"but got shape %v", d.Shape())
	}

	vals, err := Float64s(d)
	if err != nil {
		return nil, fmt.Errorf("nonzeroRows: %v", err)
	}

	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = true
		for j := 0; j < cols; j++ {
			if vals[i*cols+j] == 0 {
				out[i] = false
				break
			}
		}
	}

	return out, nil
}

// MaskIndices returns the indices at which mask is true, in order.
func MaskIndices(mask []bool) []int {
	var idx []int
	for i, active := range mask {
		if active {
			idx = append(idx, i)
		}
	}

	return idx
}

// MaskTensor returns mask as a 0/1 vector of the given dtype.
func MaskTensor(mask []bool, dt tensor.Dtype) (tensor.Tensor, error) {
	if len(mask) == 0 {
		return nil, fmt.Errorf("maskTensor: cannot convert an empty mask")
	}

	switch dt {
	case tensor.Float64:
		backing := make([]float64, len(mask))
		for i, active := range mask {
			if active {
				backing[i] = 1.0
			}
		}
		return tensor.NewDense(
			dt,
			[]int{len(mask)},
			tensor.WithBacking(backing),
		), nil

	case tensor.Float32:
		backing := make([]float32, len(mask))
		for i, active := range mask {
			if active {
				backing[i] = 1.0
			}
		}
		return tensor.NewDense(
			dt,
			[]int{len(mask)},
			tensor.WithBacking(backing),
		), nil

	default:
		return nil, fmt.Errorf("maskTensor: dtype %v not supported", dt)
	}
}
