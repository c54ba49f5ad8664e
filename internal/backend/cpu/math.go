package cpu

import (
	"fmt"
	"math"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Exp computes the element-wise exponential.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x,
		func(v float32) float32 { return float32(math.Exp(float64(v))) },
		math.Exp)
}

// Log computes the element-wise natural logarithm.
// Input values must be positive; callers that may see zeros should Clip first.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("log", x,
		func(v float32) float32 { return float32(math.Log(float64(v))) },
		math.Log)
}

// Clip limits every element to the range [min, max].
func (cpu *CPUBackend) Clip(x *tensor.RawTensor, min, max float64) *tensor.RawTensor {
	if min > max {
		panic(fmt.Sprintf("clip: min %v > max %v", min, max))
	}
	return cpu.unary("clip", x,
		func(v float32) float32 {
			return float32(math.Min(math.Max(float64(v), min), max))
		},
		func(v float64) float64 {
			return math.Min(math.Max(v, min), max)
		})
}

// unary applies an element-wise unary operation.
func (cpu *CPUBackend) unary(
	name string,
	x *tensor.RawTensor,
	f32 func(v float32) float32,
	f64 func(v float64) float64,
) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType())
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		xv, rv := x.AsFloat32(), result.AsFloat32()
		for i, v := range xv {
			rv[i] = f32(v)
		}
	case tensor.Float64:
		xv, rv := x.AsFloat64(), result.AsFloat64()
		for i, v := range xv {
			rv[i] = f64(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}
