package fcn

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Net is a function backed by a Gorgonia expression graph, letting a
// full differentiable network serve as a conditional mean, scale, or
// gate function. The graph is built once over an input node of fixed
// shape (rows, inCols); each Forward call binds the input, runs the
// tape machine, and returns a fresh copy of the output value.
//
// The build callback receives the input node and returns the output
// node together with the learnable nodes of the graph. Learnables must
// have bound values when build returns; they are reported as Params so
// an external optimizer can update them in place between calls.
type Net struct {
	graph  *G.ExprGraph
	x      *G.Node
	out    *G.Node
	outVal G.Value
	vm     G.VM
	params []*Param
	rows   int
	inCols int
}

// NewNet returns a new Net over float64 input of shape (rows, inCols).
func NewNet(rows, inCols int, build func(x *G.Node) (*G.Node, G.Nodes,
	error)) (*Net, error) {
	if rows < 1 || inCols < 1 {
		return nil, fmt.Errorf("newNet: expected a positive input shape "+
			"but got (%v, %v)", rows, inCols)
	} else if build == nil {
		return nil, fmt.Errorf("newNet: build cannot be nil")
	}

	g := G.NewGraph()
	x := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(rows, inCols),
		G.WithName("x"),
	)

	out, learnables, err := build(x)
	if err != nil {
		return nil, fmt.Errorf("newNet: could not build graph: %v", err)
	} else if out == nil {
		return nil, fmt.Errorf("newNet: build returned a nil output node")
	}

	params := make([]*Param, len(learnables))
	for i, node := range learnables {
		val, ok := node.Value().(tensor.Tensor)
		if !ok {
			return nil, fmt.Errorf("newNet: learnable %v has no bound "+
				"tensor value", node.Name())
		}
		params[i] = &Param{Name: node.Name(), Value: val}
	}

	net := &Net{
		graph:  g,
		x:      x,
		out:    out,
		params: params,
		rows:   rows,
		inCols: inCols,
	}

	G.Read(net.out, &net.outVal)

	// Bind a placeholder input so the machine always has a complete
	// set of values to run against.
	if err := G.Let(x, tensor.NewDense(tensor.Float64,
		[]int{rows, inCols})); err != nil {
		return nil, fmt.Errorf("newNet: could not bind input: %v", err)
	}

	net.vm = G.NewTapeMachine(g)

	return net, nil
}

// Forward runs the graph on x, which must be a float64 matrix of the
// exact shape the Net was constructed with.
func (n *Net) Forward(x tensor.Tensor) (tensor.Tensor, error) {
	d, ok := x.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("forward: expected a dense tensor but got %T",
			x)
	} else if d.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("forward: dtype %v not supported", d.Dtype())
	} else if !d.Shape().Eq(tensor.Shape{n.rows, n.inCols}) {
		return nil, fmt.Errorf("forward: expected input of shape (%v, %v) "+
			"but got %v", n.rows, n.inCols, d.Shape())
	}

	if err := G.Let(n.x, d); err != nil {
		return nil, fmt.Errorf("forward: could not bind input: %v", err)
	}

	if err := n.vm.RunAll(); err != nil {
		n.vm.Reset()
		return nil, fmt.Errorf("forward: could not run graph: %v", err)
	}
	n.vm.Reset()

	out, ok := n.outVal.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("forward: expected a dense output but got %T",
			n.outVal)
	}

	return out.Clone().(*tensor.Dense), nil
}

func (n *Net) Params() []*Param {
	return n.params
}
