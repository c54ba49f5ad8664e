// Package model defines the MNIST classifier network.
package model

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// MNIST dimensions: 28x28 grayscale images, ten digit classes.
const (
	InputSize  = 784
	NumClasses = 10
)

// MLP is a three-layer fully connected classifier:
//
//	input [batch, 784] -> Dense -> ReLU -> Dense -> logits [batch, 10]
//
// Forward returns raw logits; the loss applies its own softmax, and
// Probabilities exposes softmax output for inference.
type MLP[B tensor.Backend] struct {
	hidden *nn.Dense[B]
	relu   *nn.ReLU[B]
	output *nn.Dense[B]
}

// NewMLP creates an MLP with the given hidden layer width. Weights and
// biases are drawn from N(0, nn.DefaultWeightStd).
func NewMLP[B tensor.Backend](hiddenUnits int, backend B) *MLP[B] {
	if hiddenUnits <= 0 {
		panic(fmt.Sprintf("model: hidden units must be positive, got %d", hiddenUnits))
	}
	return &MLP[B]{
		hidden: nn.NewDense[B](InputSize, hiddenUnits, backend),
		relu:   nn.NewReLU[B](),
		output: nn.NewDense[B](hiddenUnits, NumClasses, backend),
	}
}

// Forward computes logits for a batch of flattened images.
//
// Accepts [batch, 784] or a single flat sample [784], which is promoted
// to a batch of one.
func (m *MLP[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) == 1 {
		input = input.Reshape(1, InputSize)
	} else if len(shape) != 2 || shape[1] != InputSize {
		panic(fmt.Sprintf("model: input must have shape [batch, %d] or [%d], got %v",
			InputSize, InputSize, shape))
	}

	x := m.hidden.Forward(input)
	x = m.relu.Forward(x)
	return m.output.Forward(x)
}

// Probabilities runs a forward pass and normalizes the logits with
// softmax. Each output row sums to one.
func (m *MLP[B]) Probabilities(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.Forward(input).Softmax()
}

// Loss computes the clipped cross-entropy of logits against one-hot
// targets.
func (m *MLP[B]) Loss(logits, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.NewClippedCrossEntropy(logits.Backend()).Forward(logits, targets)
}

// PredictClass returns the most likely class index for every sample.
func (m *MLP[B]) PredictClass(input *tensor.Tensor[float32, B]) []int32 {
	logits := m.Forward(input)
	pred := logits.Argmax(1)
	out := make([]int32, pred.NumElements())
	copy(out, pred.Data())
	return out
}

// Parameters returns all trainable parameters in layer order.
func (m *MLP[B]) Parameters() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 4)
	params = append(params, m.hidden.Parameters()...)
	params = append(params, m.output.Parameters()...)
	return params
}

// Hidden returns the first dense layer.
func (m *MLP[B]) Hidden() *nn.Dense[B] { return m.hidden }

// Output returns the final dense layer.
func (m *MLP[B]) Output() *nn.Dense[B] { return m.output }

// HiddenUnits returns the hidden layer width.
func (m *MLP[B]) HiddenUnits() int { return m.hidden.OutFeatures() }

// StateDict exports all parameters with layer-qualified names.
func (m *MLP[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor, 4)
	for name, t := range m.hidden.StateDict() {
		stateDict["hidden."+name] = t
	}
	for name, t := range m.output.StateDict() {
		stateDict["output."+name] = t
	}
	return stateDict
}

// LoadStateDict restores all parameters from a state dictionary
// produced by StateDict.
func (m *MLP[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := m.hidden.LoadStateDict(subDict(stateDict, "hidden.")); err != nil {
		return fmt.Errorf("hidden layer: %w", err)
	}
	if err := m.output.LoadStateDict(subDict(stateDict, "output.")); err != nil {
		return fmt.Errorf("output layer: %w", err)
	}
	return nil
}

func subDict(stateDict map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	sub := make(map[string]*tensor.RawTensor)
	for name, t := range stateDict {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			sub[name[len(prefix):]] = t
		}
	}
	return sub
}
