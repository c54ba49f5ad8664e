package nn

import (
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// ReLU applies the element-wise function f(x) = max(0, x).
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

// Parameters returns nil; ReLU has no trainable parameters.
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Softmax normalizes each row of a 2D input into a probability
// distribution. Use it only for inference; training goes through
// ClippedCrossEntropy, which applies its own softmax.
type Softmax[B tensor.Backend] struct{}

// NewSoftmax creates a Softmax activation module.
func NewSoftmax[B tensor.Backend]() *Softmax[B] {
	return &Softmax[B]{}
}

// Forward applies row-wise softmax.
func (s *Softmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Softmax()
}

// Parameters returns nil; Softmax has no trainable parameters.
func (s *Softmax[B]) Parameters() []*Parameter[B] {
	return nil
}
