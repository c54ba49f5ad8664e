package ops

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// Needed when broadcasting was used in the forward pass: dimensions that
// were stretched must have their gradients summed back.
//
// Example:
//
//	Forward:  bias[1,10] + logits[100,10] -> [100,10]
//	Backward: grad[100,10] -> grad_bias[1,10] (column sums over the batch)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	// Sum away extra leading dimensions first.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Then sum along dimensions where the target is 1.
	for d := 0; d < len(targetShape); d++ {
		if targetShape[d] == 1 && result.Shape()[d] > 1 {
			result = backend.SumDim(result, d, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// onesLike creates a gradient seed of ones with the shape and dtype of t.
func onesLike(t *tensor.RawTensor) *tensor.RawTensor {
	seed, err := tensor.NewRaw(t.Shape(), t.DType())
	if err != nil {
		panic(fmt.Sprintf("ops: failed to create gradient seed: %v", err))
	}
	switch t.DType() {
	case tensor.Float32:
		data := seed.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := seed.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic(fmt.Sprintf("ops: unsupported gradient dtype %s", t.DType()))
	}
	return seed
}

// OnesLike is the exported gradient seed helper used by graph.Backward.
func OnesLike(t *tensor.RawTensor) *tensor.RawTensor {
	return onesLike(t)
}

// negate returns -x.
func negate(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	return backend.MulScalar(x, -1.0)
}
