// Package graph implements reverse-mode automatic differentiation using
// the decorator pattern.
//
// Graph wraps any tensor.Backend and records differentiable operations
// on a Tape during the eager forward pass. Walking the tape in reverse
// applies the chain rule and yields a gradient per input tensor.
//
// Usage:
//
//	g := graph.New(cpu.New())
//	g.Tape().StartRecording()
//	x := tensor.FromSlice([]float32{2}, tensor.Shape{1}, g)
//	y := x.Mul(x)
//	grads := graph.Backward(y, g)
//	_ = grads[x.Raw()] // dy/dx = 2x = 4
//
// Each Graph owns its own tape, so independent computations never share
// state. Graphs are not safe for concurrent use.
package graph

import (
	"github.com/gradflow-ml/gradflow/internal/graph/ops"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Graph wraps a Backend and records operations for gradient computation.
// It implements tensor.Backend, so tensors built on a Graph transparently
// participate in autodiff.
type Graph[B tensor.Backend] struct {
	inner B
	tape  *Tape
}

// New creates a Graph wrapping the given backend.
func New[B tensor.Backend](backend B) *Graph[B] {
	return &Graph[B]{inner: backend, tape: NewTape()}
}

// Tape returns the gradient tape for manual control: starting and
// stopping recording, clearing between training steps, inspection.
func (g *Graph[B]) Tape() *Tape { return g.tape }

// Inner returns the wrapped backend.
func (g *Graph[B]) Inner() B { return g.inner }

// Name returns the backend name.
func (g *Graph[B]) Name() string {
	return "Graph(" + g.inner.Name() + ")"
}

// Add performs element-wise addition and records the operation.
func (g *Graph[B]) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := g.inner.Add(a, b)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewAddOp(a, b, result))
	}
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (g *Graph[B]) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := g.inner.Sub(a, b)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewSubOp(a, b, result))
	}
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (g *Graph[B]) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := g.inner.Mul(a, b)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewMulOp(a, b, result))
	}
	return result
}

// Div performs element-wise division and records the operation.
func (g *Graph[B]) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := g.inner.Div(a, b)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewDivOp(a, b, result))
	}
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (g *Graph[B]) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := g.inner.MatMul(a, b)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewMatMulOp(a, b, result))
	}
	return result
}

// Reshape reshapes a tensor and records the operation so gradients flow
// back to the original shape.
func (g *Graph[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := g.inner.Reshape(t, newShape)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewReshapeOp(t, result))
	}
	return result
}

// Transpose permutes dimensions and records the operation. The backend
// copies data into the new layout, so without recording, gradients would
// land on the copy and never reach the original parameter.
func (g *Graph[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	result := g.inner.Transpose(t, axes...)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewTransposeOp(t, result, axes))
	}
	return result
}

// ReLU applies the rectified linear unit and records the operation.
func (g *Graph[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := g.inner.ReLU(x)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewReLUOp(x, result))
	}
	return result
}

// Softmax applies row-wise softmax and records the operation.
func (g *Graph[B]) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	result := g.inner.Softmax(x)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewSoftmaxOp(x, result))
	}
	return result
}

// CrossEntropy computes the clipped cross-entropy loss between logits
// and one-hot targets as a single fused node. The fused backward pass
// produces the closed-form gradient (softmax(logits) - targets)/batch.
func (g *Graph[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	loss, probs := ops.CrossEntropyForward(logits, targets)
	if g.tape.IsRecording() {
		g.tape.Record(ops.NewCrossEntropyOp(logits, targets, probs, loss))
	}
	return loss
}

// The remaining Backend methods delegate without recording. They are
// forward-only utilities: either used outside training (Argmax for
// accuracy, Exp/Log/Clip for inspection) or reached only from backward
// passes of recorded nodes.

// MulScalar multiplies every element by a scalar.
func (g *Graph[B]) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return g.inner.MulScalar(x, scalar)
}

// AddScalar adds a scalar to every element.
func (g *Graph[B]) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return g.inner.AddScalar(x, scalar)
}

// Exp computes element-wise e^x.
func (g *Graph[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor { return g.inner.Exp(x) }

// Log computes element-wise natural logarithm.
func (g *Graph[B]) Log(x *tensor.RawTensor) *tensor.RawTensor { return g.inner.Log(x) }

// Clip limits elements to the range [min, max].
func (g *Graph[B]) Clip(x *tensor.RawTensor, min, max float64) *tensor.RawTensor {
	return g.inner.Clip(x, min, max)
}

// Sum computes the total sum of all elements.
func (g *Graph[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor { return g.inner.Sum(x) }

// SumDim sums along a dimension.
func (g *Graph[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return g.inner.SumDim(x, dim, keepDim)
}

// MeanDim averages along a dimension.
func (g *Graph[B]) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return g.inner.MeanDim(x, dim, keepDim)
}

// Argmax returns the index of the maximum along a dimension.
func (g *Graph[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return g.inner.Argmax(x, dim)
}
