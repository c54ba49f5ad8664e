package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Reshape returns a tensor with the same elements under a new shape.
// The element count must match.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.Clone().WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes the dimensions of a tensor, copying the data into
// the new layout. With no axes all dimensions are reversed, which for 2D
// is the standard matrix transpose.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes %v for shape %v", axes, shape))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape, t.DType())
	if err != nil {
		panic(fmt.Sprintf("transpose: failed to create result tensor: %v", err))
	}

	inStrides := t.Strides()
	outStrides := outShape.ComputeStrides()
	n := t.NumElements()

	// Map each output element back to its source offset.
	srcOf := func(flat int) int {
		src := 0
		rem := flat
		for d := 0; d < ndim; d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			src += coord * inStrides[axes[d]]
		}
		return src
	}

	switch t.DType() {
	case tensor.Float32:
		xv, rv := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			rv[i] = xv[srcOf(i)]
		}
	case tensor.Float64:
		xv, rv := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			rv[i] = xv[srcOf(i)]
		}
	case tensor.Int32:
		xv, rv := t.AsInt32(), result.AsInt32()
		for i := 0; i < n; i++ {
			rv[i] = xv[srcOf(i)]
		}
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}
