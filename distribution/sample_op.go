package distribution

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// normalRand draws one standard-normal variate per element of shape,
// returning a fresh tensor of the given dtype. The draws serve as the
// base noise of location-scale reparameterized sampling.
func normalRand(dt tensor.Dtype, src rand.Source, shape ...int) (
	tensor.Tensor, error) {
	size := tensor.Shape(shape).TotalSize()
	if size == 0 {
		return nil, fmt.Errorf("normalRand: cannot sample with shape %v",
			tensor.Shape(shape))
	}

	dist := distuv.Normal{
		Mu:    0.0,
		Sigma: 1.0,
		Src:   src,
	}

	switch dt {
	case tensor.Float64:
		backing := make([]float64, size)
		for i := range backing {
			backing[i] = dist.Rand()
		}
		return tensor.NewDense(
			dt,
			shape,
			tensor.WithBacking(backing),
		), nil

	case tensor.Float32:
		backing := make([]float32, size)
		for i := range backing {
			backing[i] = float32(dist.Rand())
		}
		return tensor.NewDense(
			dt,
			shape,
			tensor.WithBacking(backing),
		), nil

	default:
		return nil, fmt.Errorf("normalRand: dtype %v not supported", dt)
	}
}

// bernoulliRand draws one independent Bernoulli trial per entry of the
// probability vector p, returning a fresh 0/1 tensor of the same
// dtype and shape as p.
func bernoulliRand(p tensor.Tensor, src rand.Source) (tensor.Tensor, error) {
	d, ok := p.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("bernoulliRand: expected a dense tensor "+
			"but got %T", p)
	} else if d.Size() == 0 {
		return nil, fmt.Errorf("bernoulliRand: cannot sample from an " +
			"empty probability tensor")
	} else if d.Dims() != 1 {
		return nil, fmt.Errorf("bernoulliRand: expected a probability "+
			"vector but got shape %v", d.Shape())
	}

	dist := distuv.Bernoulli{Src: src}

	switch d.Dtype() {
	case tensor.Float64:
		probs := d.Data().([]float64)
		backing := make([]float64, len(probs))
		for i, prob := range probs {
			if prob < 0 || prob > 1 {
				return nil, fmt.Errorf("bernoulliRand: probability %v at "+
					"index %v outside [0, 1]", prob, i)
			}
			dist.P = prob
			backing[i] = dist.Rand()
		}
		return tensor.NewDense(
			d.Dtype(),
			[]int{len(probs)},
			tensor.WithBacking(backing),
		), nil

	case tensor.Float32:
		probs := d.Data().([]float32)
		backing := make([]float32, len(probs))
		for i, prob := range probs {
			if prob < 0 || prob > 1 {
				return nil, fmt.Errorf("bernoulliRand: probability %v at "+
					"index %v outside [0, 1]", prob, i)
			}
			dist.P = float64(prob)
			backing[i] = float32(dist.Rand())
		}
		return tensor.NewDense(
			d.Dtype(),
			[]int{len(probs)},
			tensor.WithBacking(backing),
		), nil

	default:
		return nil, fmt.Errorf("bernoulliRand: dtype %v not supported",
			d.Dtype())
	}
}
