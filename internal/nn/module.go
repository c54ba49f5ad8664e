// Package nn implements neural network building blocks:
//   - Module interface: base interface for all layers
//   - Parameter: trainable tensors with gradient slots
//   - Dense: fully connected layer
//   - ReLU, Softmax: activation modules
//   - ClippedCrossEntropy: loss for one-hot classification targets
//   - Sequential: container for stacking layers
//
// Design follows PyTorch's nn.Module, adapted for Go generics.
package nn

import (
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into larger architectures:
//
//	model := nn.NewSequential[B](
//	    nn.NewDense(784, 300, backend),
//	    nn.NewReLU[B](),
//	    nn.NewDense(300, 10, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the module output. Input shape requirements are
	// module-specific; Dense expects [batch, in_features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters, including those of
	// nested modules. Parameterless modules return nil.
	Parameters() []*Parameter[B]
}

// Sequential chains modules, feeding each output into the next module.
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a Sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

// Forward runs the input through every module in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := input
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

// Parameters collects the parameters of all contained modules.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// Modules returns the contained modules in order.
func (s *Sequential[B]) Modules() []Module[B] {
	return s.modules
}
