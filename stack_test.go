package condist

import (
	"testing"

	"gorgonia.org/tensor"
)

func TestOnes(t *testing.T) {
	out, err := Ones(tensor.Float64, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	if !out.Shape().Eq([]int{2, 3}) {
		t.Fatalf("expected shape (2, 3) but got %v", out.Shape())
	}
	for i, v := range out.Data().([]float64) {
		if v != 1.0 {
			t.Errorf("expected 1 at index %v but got %v", i, v)
		}
	}

	outF32, err := Ones(tensor.Float32, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range outF32.Data().([]float32) {
		if v != 1.0 {
			t.Errorf("expected 1 at index %v but got %v", i, v)
		}
	}
}

func TestAsMatrix(t *testing.T) {
	vec := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking([]float64{1, 2, 3}),
	)

	out, err := AsMatrix(vec)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Shape().Eq([]int{3, 1}) {
		t.Fatalf("expected shape (3, 1) but got %v", out.Shape())
	}

	// Vector promotion copies
	out.Data().([]float64)[0] = 99
	if vec.Data().([]float64)[0] != 1 {
		t.Error("expected the input vector to be unmodified")
	}

	mat := tensor.NewDense(
		tensor.Float64,
		[]int{2, 2},
		tensor.WithBacking([]float64{1, 2, 3, 4}),
	)
	out, err = AsMatrix(mat)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Shape().Eq([]int{2, 2}) {
		t.Fatalf("expected shape (2, 2) but got %v", out.Shape())
	}
}

func TestAsVector(t *testing.T) {
	mat := tensor.NewDense(
		tensor.Float64,
		[]int{3, 1},
		tensor.WithBacking([]float64{1, 2, 3}),
	)

	out, err := AsVector(mat)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Shape().Eq([]int{3}) {
		t.Fatalf("expected shape (3) but got %v", out.Shape())
	}

	wide := tensor.NewDense(
		tensor.Float64,
		[]int{2, 2},
		tensor.WithBacking([]float64{1, 2, 3, 4}),
	)
	if _, err := AsVector(wide); err == nil {
		t.Error("expected an error for a matrix with more than one column")
	}
}

func TestHstack(t *testing.T) {
	a := tensor.NewDense(
		tensor.Float64,
		[]int{2, 2},
		tensor.WithBacking([]float64{1, 2, 3, 4}),
	)
	v := tensor.NewDense(
		tensor.Float64,
		[]int{2},
		tensor.WithBacking([]float64{5, 6}),
	)

	out, err := Hstack(a, v)
	if err != nil {
		t.Fatal(err)
	}

	if !out.Shape().Eq([]int{2, 3}) {
		t.Fatalf("expected shape (2, 3) but got %v", out.Shape())
	}

	expected := []float64{
		1, 2, 5,
		3, 4, 6,
	}
	outData := out.Data().([]float64)
	for i := range expected {
		if outData[i] != expected[i] {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				outData[i])
		}
	}
}

func TestHstackMismatch(t *testing.T) {
	a := tensor.NewDense(
		tensor.Float64,
		[]int{2, 1},
		tensor.WithBacking([]float64{1, 2}),
	)
	b := tensor.NewDense(
		tensor.Float64,
		[]int{3, 1},
		tensor.WithBacking([]float64{1, 2, 3}),
	)

	if _, err := Hstack(a, b); err == nil {
		t.Error("expected an error for mismatched row counts")
	}
	if _, err := Hstack(); err == nil {
		t.Error("expected an error for no inputs")
	}
}

func TestSplitCols(t *testing.T) {
	in := tensor.NewDense(
		tensor.Float64,
		[]int{2, 3},
		tensor.WithBacking([]float64{
			1, 2, 3,
			4, 5, 6,
		}),
	)

	cols, err := SplitCols(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns but got %v", len(cols))
	}

	expected := [][]float64{{1, 4}, {2, 5}, {3, 6}}
	for j := range expected {
		if !cols[j].Shape().Eq([]int{2, 1}) {
			t.Fatalf("expected shape (2, 1) but column %v has %v", j,
				cols[j].Shape())
		}
		data := cols[j].Data().([]float64)
		for i := range expected[j] {
			if data[i] != expected[j][i] {
				t.Errorf("expected %v at (%v, %v) but got %v",
					expected[j][i], i, j, data[i])
			}
		}
	}
}

func TestSplitColsHstackRoundTrip(t *testing.T) {
	in := tensor.NewDense(
		tensor.Float64,
		[]int{3, 2},
		tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6}),
	)

	cols, err := SplitCols(in)
	if err != nil {
		t.Fatal(err)
	}

	out, err := Hstack(cols...)
	if err != nil {
		t.Fatal(err)
	}

	inData := in.Data().([]float64)
	outData := out.Data().([]float64)
	for i := range inData {
		if outData[i] != inData[i] {
			t.Errorf("expected %v at index %v but got %v", inData[i], i,
				outData[i])
		}
	}
}

func TestScaleRows(t *testing.T) {
	m := tensor.NewDense(
		tensor.Float64,
		[]int{3, 2},
		tensor.WithBacking([]float64{
			1, 2,
			3, 4,
			5, 6,
		}),
	)
	v := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking([]float64{2, 0, -1}),
	)

	out, err := ScaleRows(m, v)
	if err != nil {
		t.Fatal(err)
	}

	expected := []float64{
		2, 4,
		0, 0,
		-5, -6,
	}
	outData := out.Data().([]float64)
	for i := range expected {
		if outData[i] != expected[i] {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				outData[i])
		}
	}

	// Input unchanged
	if m.Data().([]float64)[0] != 1 {
		t.Error("expected the input matrix to be unmodified")
	}
}

func TestScaleRowsMismatch(t *testing.T) {
	m := tensor.NewDense(
		tensor.Float64,
		[]int{3, 2},
		tensor.WithBacking(make([]float64, 6)),
	)
	v := tensor.NewDense(
		tensor.Float64,
		[]int{2},
		tensor.WithBacking(make([]float64, 2)),
	)

	if _, err := ScaleRows(m, v); err == nil {
		t.Error("expected an error for mismatched row counts")
	}
}
