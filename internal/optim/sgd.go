package optim

import (
	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// SGD implements plain stochastic gradient descent:
//
//	param = param - lr * gradient
//
// The optimizer is stateless: every step depends only on the current
// gradients, so there is nothing to checkpoint.
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.5})
//	grads := graph.Backward(loss, g)
//	optimizer.Step(grads)
type SGD[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	lr     float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR float32 // Learning rate (default: 0.01)
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{params: params, lr: config.LR}
}

// Step applies param -= lr * grad to every parameter that has a
// gradient in the map. Updates happen in-place on the parameter
// buffers.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Raw().AsFloat32()
		gradData := grad.AsFloat32()
		for i := range paramData {
			paramData[i] -= s.lr * gradData[i]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate. Useful for scheduling.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}
