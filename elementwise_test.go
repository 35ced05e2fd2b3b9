package condist

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// TestExp tests the element-wise exponential on float64 and float32
// tensors against the standard library implementations.
func TestExp(t *testing.T) {
	const tests int = 15
	const rows int = 4
	const cols int = 3

	rng := rand.New(rand.NewSource(1))

	for i := 0; i < tests; i++ {
		backing := make([]float64, rows*cols)
		for j := range backing {
			backing[j] = rng.Float64()*6.0 - 3.0
		}

		in := tensor.NewDense(
			tensor.Float64,
			[]int{rows, cols},
			tensor.WithBacking(backing),
		)

		out, err := Exp(in)
		if err != nil {
			t.Fatal(err)
		}

		outData := out.Data().([]float64)
		for j := range backing {
			if outData[j] != math.Exp(backing[j]) {
				t.Errorf("expected %v at index %v but got %v",
					math.Exp(backing[j]), j, outData[j])
			}
		}

		// Input unchanged
		if in.Data().([]float64)[0] != backing[0] {
			t.Error("expected input to be unmodified")
		}
	}
}

func TestExpF32(t *testing.T) {
	backing := []float32{-2.5, -1.0, 0.0, 0.5, 3.0}
	in := tensor.NewDense(
		tensor.Float32,
		[]int{len(backing)},
		tensor.WithBacking(backing),
	)

	out, err := Exp(in)
	if err != nil {
		t.Fatal(err)
	}

	outData := out.Data().([]float32)
	for j := range backing {
		if outData[j] != math32.Exp(backing[j]) {
			t.Errorf("expected %v at index %v but got %v",
				math32.Exp(backing[j]), j, outData[j])
		}
	}
}

func TestLog(t *testing.T) {
	const tests int = 15
	const n int = 10

	rng := rand.New(rand.NewSource(2))

	for i := 0; i < tests; i++ {
		backing := make([]float64, n)
		for j := range backing {
			backing[j] = rng.Float64()*10.0 + 0.001
		}

		in := tensor.NewDense(
			tensor.Float64,
			[]int{n},
			tensor.WithBacking(backing),
		)

		out, err := Log(in)
		if err != nil {
			t.Fatal(err)
		}

		outData := out.Data().([]float64)
		for j := range backing {
			if outData[j] != math.Log(backing[j]) {
				t.Errorf("expected %v at index %v but got %v",
					math.Log(backing[j]), j, outData[j])
			}
		}
	}
}

func TestLog1p(t *testing.T) {
	backing := []float64{-0.999, -0.5, 0.0, 0.0000001, 1.5}
	in := tensor.NewDense(
		tensor.Float64,
		[]int{len(backing)},
		tensor.WithBacking(backing),
	)

	out, err := Log1p(in)
	if err != nil {
		t.Fatal(err)
	}

	outData := out.Data().([]float64)
	for j := range backing {
		if outData[j] != math.Log1p(backing[j]) {
			t.Errorf("expected %v at index %v but got %v",
				math.Log1p(backing[j]), j, outData[j])
		}
	}
}

func TestUnaryUnsupportedDtype(t *testing.T) {
	in := tensor.NewDense(
		tensor.Int,
		[]int{3},
		tensor.WithBacking([]int{1, 2, 3}),
	)

	if _, err := Exp(in); err == nil {
		t.Error("expected an error for an int tensor")
	}
}
