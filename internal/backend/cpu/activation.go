package cpu

import (
	"fmt"
	"math"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// ReLU applies the rectified linear unit element-wise: max(0, x).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x,
		func(v float32) float32 {
			if v > 0 {
				return v
			}
			return 0
		},
		func(v float64) float64 {
			if v > 0 {
				return v
			}
			return 0
		})
}

// Softmax normalizes each row of a 2D tensor into a probability
// distribution:
//
//	softmax(x)_i = exp(x_i - max(x)) / Σ_j exp(x_j - max(x))
//
// The max shift keeps the exponentials from overflowing.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax: only 2D tensors supported, got shape %v", shape))
	}

	rows, cols := shape[0], shape[1]
	result, err := tensor.NewRaw(shape, x.DType())
	if err != nil {
		panic(fmt.Sprintf("softmax: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		softmaxFloat32(x.AsFloat32(), result.AsFloat32(), rows, cols)
	case tensor.Float64:
		softmaxFloat64(x.AsFloat64(), result.AsFloat64(), rows, cols)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}

	return result
}

func softmaxFloat32(input, output []float32, rows, cols int) {
	for r := 0; r < rows; r++ {
		offset := r * cols

		maxVal := input[offset]
		for j := 1; j < cols; j++ {
			if input[offset+j] > maxVal {
				maxVal = input[offset+j]
			}
		}

		sumExp := float32(0)
		for j := 0; j < cols; j++ {
			idx := offset + j
			output[idx] = float32(math.Exp(float64(input[idx] - maxVal)))
			sumExp += output[idx]
		}

		for j := 0; j < cols; j++ {
			output[offset+j] /= sumExp
		}
	}
}

func softmaxFloat64(input, output []float64, rows, cols int) {
	for r := 0; r < rows; r++ {
		offset := r * cols

		maxVal := input[offset]
		for j := 1; j < cols; j++ {
			if input[offset+j] > maxVal {
				maxVal = input[offset+j]
			}
		}

		sumExp := 0.0
		for j := 0; j < cols; j++ {
			idx := offset + j
			output[idx] = math.Exp(input[idx] - maxVal)
			sumExp += output[idx]
		}

		for j := 0; j < cols; j++ {
			output[offset+j] /= sumExp
		}
	}
}
