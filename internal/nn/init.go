package nn

import (
	"math"
	"math/rand"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// DefaultWeightStd is the standard deviation used for dense layer
// weight initialization: N(0, 0.03). Small enough to keep the initial
// softmax near uniform, large enough to break symmetry.
const DefaultWeightStd = 0.03

// RandomNormal creates a tensor with values drawn from N(0, std).
func RandomNormal[B tensor.Backend](shape tensor.Shape, std float64, backend B) *tensor.Tensor[float32, B] {
	return tensor.RandnStd[float32](shape, std, backend)
}

// Xavier creates a tensor initialized with the Glorot uniform
// distribution U(-sqrt(6/(fanIn+fanOut)), +sqrt(6/(fanIn+fanOut))).
// Keeps activation variance roughly constant across layers.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand for weight initialization (not security-critical)
		data[i] = float32((rand.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// Zeros creates a zero-filled tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
