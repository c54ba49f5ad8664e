package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// MatMul performs matrix multiplication for 2D tensors:
// (M, K) @ (K, N) -> (M, N).
//
// float32 and float64 dispatch to gonum's Gemm; tensors are row-major
// contiguous, so the stride is simply the column count.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType())
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		ga := blas32.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat32()}
		gb := blas32.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat32()}
		gc := blas32.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat32()}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, ga, gb, 0, gc)
	case tensor.Float64:
		ga := blas64.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat64()}
		gb := blas64.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat64()}
		gc := blas64.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat64()}
		blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, ga, gb, 0, gc)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}
