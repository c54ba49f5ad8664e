package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Sum reduces all elements to a single-element tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{1}, x.DType())
	if err != nil {
		panic(fmt.Sprintf("sum: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// SumDim sums along a dimension. With keepDim the reduced dimension
// stays as size 1, otherwise it is dropped.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sumdim", x, dim, keepDim, false)
}

// MeanDim averages along a dimension.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("meandim", x, dim, keepDim, true)
}

func (cpu *CPUBackend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim = len(shape) + dim
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("%s: invalid dimension %d for shape %v", name, dim, shape))
	}

	keptShape := shape.Clone()
	keptShape[dim] = 1

	result, err := tensor.NewRaw(keptShape, x.DType())
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	// outer × dimSize × inner traversal of a row-major buffer.
	outer, inner := 1, 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	dimSize := shape[dim]

	switch x.DType() {
	case tensor.Float32:
		xv, rv := x.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var sum float32
				for d := 0; d < dimSize; d++ {
					sum += xv[(o*dimSize+d)*inner+in]
				}
				if mean {
					sum /= float32(dimSize)
				}
				rv[o*inner+in] = sum
			}
		}
	case tensor.Float64:
		xv, rv := x.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var sum float64
				for d := 0; d < dimSize; d++ {
					sum += xv[(o*dimSize+d)*inner+in]
				}
				if mean {
					sum /= float64(dimSize)
				}
				rv[o*inner+in] = sum
			}
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	if keepDim {
		return result
	}

	dropped := make(tensor.Shape, 0, len(shape)-1)
	for d, size := range shape {
		if d != dim {
			dropped = append(dropped, size)
		}
	}
	if len(dropped) == 0 {
		dropped = tensor.Shape{1}
	}
	squeezed, err := result.WithShape(dropped)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	return squeezed
}

// Argmax returns the index of the maximum value along a dimension as an
// int32 tensor. Only 2D input with dim=1 (row-wise) is supported, which
// is what classification prediction needs.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 || dim != 1 {
		panic(fmt.Sprintf("argmax: only 2D tensors with dim=1 supported, got shape %v dim %d", shape, dim))
	}

	rows, cols := shape[0], shape[1]
	result, err := tensor.NewRaw(tensor.Shape{rows}, tensor.Int32)
	if err != nil {
		panic(fmt.Sprintf("argmax: failed to create result tensor: %v", err))
	}
	rv := result.AsInt32()

	switch x.DType() {
	case tensor.Float32:
		xv := x.AsFloat32()
		for r := 0; r < rows; r++ {
			best, bestIdx := xv[r*cols], 0
			for j := 1; j < cols; j++ {
				if xv[r*cols+j] > best {
					best, bestIdx = xv[r*cols+j], j
				}
			}
			rv[r] = int32(bestIdx)
		}
	case tensor.Float64:
		xv := x.AsFloat64()
		for r := 0; r < rows; r++ {
			best, bestIdx := xv[r*cols], 0
			for j := 1; j < cols; j++ {
				if xv[r*cols+j] > best {
					best, bestIdx = xv[r*cols+j], j
				}
			}
			rv[r] = int32(bestIdx)
		}
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}

	return result
}
