// Package ops defines the typed node kinds of the computation graph.
//
// Each node records its input and output tensors during the eager forward
// pass and knows how to turn an output gradient into input gradients:
//   - AddOp, SubOp, MulOp, DivOp: element-wise arithmetic
//   - MatMulOp: d(A@B)/dA = grad@Bᵀ, d(A@B)/dB = Aᵀ@grad
//   - ReshapeOp, TransposeOp: shape bookkeeping for gradient routing
//   - ReLUOp: gradient masked to inputs > 0
//   - SoftmaxOp: analytic row-wise backward
//   - CrossEntropyOp: fused softmax + clipped cross-entropy, closed-form
//     gradient (P - Y)/batch
package ops

import "github.com/gradflow-ml/gradflow/internal/tensor"

// Operation represents a differentiable node in the computation graph.
// Nodes are recorded in execution order; walking them in reverse applies
// the chain rule.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per input tensor; nil entries mean no gradient
	// flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
