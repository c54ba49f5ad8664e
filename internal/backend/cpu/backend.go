// Package cpu implements the CPU backend.
//
// Element-wise operations follow NumPy broadcasting rules; matrix
// multiplication is delegated to gonum's BLAS implementation.
package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// CPUBackend implements tensor operations on the CPU.
type CPUBackend struct{}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition with broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binary applies an element-wise binary operation with broadcasting.
func (cpu *CPUBackend) binary(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType())
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		if !needsBroadcast {
			av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
			for i := range rv {
				rv[i] = f32(av[i], bv[i])
			}
		} else {
			broadcastFloat32(result, a, b, outShape, f32)
		}
	case tensor.Float64:
		if !needsBroadcast {
			av, bv, rv := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
			for i := range rv {
				rv[i] = f64(av[i], bv[i])
			}
		} else {
			broadcastFloat64(result, a, b, outShape, f64)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// broadcastIndex maps a flat output index to the flat index of an operand
// whose shape may have been broadcast to outShape.
func broadcastIndex(flat int, outShape, inShape tensor.Shape, inStrides []int) int {
	idx := 0
	offset := len(outShape) - len(inShape)
	rem := flat
	for d := len(outShape) - 1; d >= 0; d-- {
		coord := rem % outShape[d]
		rem /= outShape[d]

		in := d - offset
		if in < 0 {
			continue
		}
		if inShape[in] == 1 {
			continue // broadcast dimension, coordinate pinned to 0
		}
		idx += coord * inStrides[in]
	}
	return idx
}

func broadcastFloat32(result, a, b *tensor.RawTensor, outShape tensor.Shape, f func(x, y float32) float32) {
	av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
	aShape, bShape := a.Shape(), b.Shape()
	aStrides, bStrides := a.Strides(), b.Strides()
	for i := range rv {
		rv[i] = f(
			av[broadcastIndex(i, outShape, aShape, aStrides)],
			bv[broadcastIndex(i, outShape, bShape, bStrides)],
		)
	}
}

func broadcastFloat64(result, a, b *tensor.RawTensor, outShape tensor.Shape, f func(x, y float64) float64) {
	av, bv, rv := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
	aShape, bShape := a.Shape(), b.Shape()
	aStrides, bStrides := a.Strides(), b.Strides()
	for i := range rv {
		rv[i] = f(
			av[broadcastIndex(i, outShape, aShape, aStrides)],
			bv[broadcastIndex(i, outShape, bShape, bStrides)],
		)
	}
}
