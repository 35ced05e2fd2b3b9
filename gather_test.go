package condist

import (
	"testing"

	"gorgonia.org/tensor"
)

func TestRowsMatrix(t *testing.T) {
	in := tensor.NewDense(
		tensor.Float64,
		[]int{4, 2},
		tensor.WithBacking([]float64{
			0, 1,
			2, 3,
			4, 5,
			6, 7,
		}),
	)

	out, err := Rows(in, []int{2, 0, 2})
	if err != nil {
		t.Fatal(err)
	}

	if !out.Shape().Eq([]int{3, 2}) {
		t.Fatalf("expected shape (3, 2) but got %v", out.Shape())
	}

	expected := []float64{4, 5, 0, 1, 4, 5}
	outData := out.Data().([]float64)
	for i := range expected {
		if outData[i] != expected[i] {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				outData[i])
		}
	}
}

func TestRowsVector(t *testing.T) {
	in := tensor.NewDense(
		tensor.Float64,
		[]int{5},
		tensor.WithBacking([]float64{10, 11, 12, 13, 14}),
	)

	out, err := Rows(in, []int{4, 1})
	if err != nil {
		t.Fatal(err)
	}

	if !out.Shape().Eq([]int{2}) {
		t.Fatalf("expected shape (2) but got %v", out.Shape())
	}

	expected := []float64{14, 11}
	outData := out.Data().([]float64)
	for i := range expected {
		if outData[i] != expected[i] {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				outData[i])
		}
	}
}

func TestRowsOutOfRange(t *testing.T) {
	in := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking([]float64{1, 2, 3}),
	)

	if _, err := Rows(in, []int{0, 3}); err == nil {
		t.Error("expected an error for an out-of-range index")
	}
	if _, err := Rows(in, []int{-1}); err == nil {
		t.Error("expected an error for a negative index")
	}
	if _, err := Rows(in, nil); err == nil {
		t.Error("expected an error for an empty index list")
	}
}

func TestScatterRows(t *testing.T) {
	dst := tensor.NewDense(
		tensor.Float64,
		[]int{4, 2},
		tensor.WithBacking(make([]float64, 8)),
	)
	src := tensor.NewDense(
		tensor.Float64,
		[]int{2, 2},
		tensor.WithBacking([]float64{1, 2, 3, 4}),
	)

	if err := ScatterRows(dst, []int{3, 1}, src); err != nil {
		t.Fatal(err)
	}

	expected := []float64{
		0, 0,
		3, 4,
		0, 0,
		1, 2,
	}
	dstData := dst.Data().([]float64)
	for i := range expected {
		if dstData[i] != expected[i] {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				dstData[i])
		}
	}
}

func TestScatterRowsMismatch(t *testing.T) {
	dst := tensor.NewDense(
		tensor.Float64,
		[]int{4, 2},
		tensor.WithBacking(make([]float64, 8)),
	)
	src := tensor.NewDense(
		tensor.Float64,
		[]int{2, 3},
		tensor.WithBacking(make([]float64, 6)),
	)

	if err := ScatterRows(dst, []int{0, 1}, src); err == nil {
		t.Error("expected an error for mismatched column counts")
	}

	srcF32 := tensor.NewDense(
		tensor.Float32,
		[]int{2, 2},
		tensor.WithBacking(make([]float32, 4)),
	)
	if err := ScatterRows(dst, []int{0, 1}, srcF32); err == nil {
		t.Error("expected an error for mismatched dtypes")
	}
}

func TestScatterAddVec(t *testing.T) {
	dst := tensor.NewDense(
		tensor.Float64,
		[]int{4},
		tensor.WithBacking([]float64{10, 20, 30, 40}),
	)
	src := tensor.NewDense(
		tensor.Float64,
		[]int{2},
		tensor.WithBacking([]float64{1, 2}),
	)

	if err := ScatterAddVec(dst, []int{2, 0}, src); err != nil {
		t.Fatal(err)
	}

	expected := []float64{12, 20, 31, 40}
	dstData := dst.Data().([]float64)
	for i := range expected {
		if dstData[i] != expected[i] {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				dstData[i])
		}
	}
}

func TestNonzeroRows(t *testing.T) {
	in := tensor.NewDense(
		tensor.Float64,
		[]int{4, 2},
		tensor.WithBacking([]float64{
			1, 2,
			0, 3,
			0, 0,
			-1, 0.5,
		}),
	)

	mask, err := NonzeroRows(in)
	if err != nil {
		t.Fatal(err)
	}

	expected := []bool{true, false, false, true}
	for i := range expected {
		if mask[i] != expected[i] {
			t.Errorf("expected %v at row %v but got %v", expected[i], i,
				mask[i])
		}
	}
}

func TestNonzeroRowsVector(t *testing.T) {
	in := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking([]float64{0, 1, -2}),
	)

	mask, err := NonzeroRows(in)
	if err != nil {
		t.Fatal(err)
	}

	expected := []bool{false, true, true}
	for i := range expected {
		if mask[i] != expected[i] {
			t.Errorf("expected %v at row %v but got %v", expected[i], i,
				mask[i])
		}
	}
}

func TestMaskIndices(t *testing.T) {
	idx := MaskIndices([]bool{true, false, false, true, true})

	expected := []int{0, 3, 4}
	if len(idx) != len(expected) {
		t.Fatalf("expected %v indices but got %v", len(expected), len(idx))
	}
	for i := range expected {
		if idx[i] != expected[i] {
			t.Errorf("expected index %v at position %v but got %v",
				expected[i], i, idx[i])
		}
	}

	if MaskIndices([]bool{false, false}) != nil {
		t.Error("expected no indices for an all-false mask")
	}
}

func TestMaskTensor(t *testing.T) {
	out, err := MaskTensor([]bool{true, false, true}, tensor.Float64)
	if err != nil {
		t.Fatal(err)
	}

	expected := []float64{1, 0, 1}
	outData := out.Data().([]float64)
	for i := range expected {
		if outData[i] != expected[i] {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				outData[i])
		}
	}

	outF32, err := MaskTensor([]bool{false, true}, tensor.Float32)
	if err != nil {
		t.Fatal(err)
	}
	if outF32.Dtype() != tensor.Float32 {
		t.Errorf("expected dtype %v but got %v", tensor.Float32,
			outF32.Dtype())
	}
}
