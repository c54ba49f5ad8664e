package nn

import (
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Parameter is a trainable tensor, typically a layer weight or bias.
// The gradient slot is filled by the training loop after each backward
// pass and consumed by the optimizer.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a trainable parameter from an initialized tensor.
// The gradient starts nil and is set after the first backward pass.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name, e.g. "hidden.weight".
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Grad returns the gradient tensor, or nil before the first backward
// pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] { return p.grad }

// SetGrad stores the gradient computed for this parameter.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) { p.grad = grad }

// ZeroGrad clears the gradient. Call between training steps so stale
// gradients never leak into the next update.
func (p *Parameter[B]) ZeroGrad() { p.grad = nil }
