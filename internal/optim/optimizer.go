// Package optim implements optimization algorithms for training.
//
// Provided optimizers:
//   - SGD: plain stochastic gradient descent
//   - Adam: adaptive moment estimation
//
// Both consume the gradient map produced by graph.Backward:
//
//	g.Tape().StartRecording()
//	loss := criterion.Forward(model.Forward(input), targets)
//	grads := graph.Backward(loss, g)
//	optimizer.Step(grads)
//	g.Tape().Clear()
package optim

import (
	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in-place. The map
	// comes from graph.Backward; parameters without an entry are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradient slots.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// getGradient retrieves the gradient for a parameter, or nil if the
// parameter did not participate in the recorded computation.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
