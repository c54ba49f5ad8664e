package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("mulscalar", scalar)
	return cpu.unary("mulscalar", x,
		func(v float32) float32 { return v * float32(s) },
		func(v float64) float64 { return v * s })
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("addscalar", scalar)
	return cpu.unary("addscalar", x,
		func(v float32) float32 { return v + float32(s) },
		func(v float64) float64 { return v + s })
}

// toFloat64 converts a scalar argument to float64.
func toFloat64(name string, scalar any) float64 {
	switch v := scalar.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}
