// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"io"

	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Dense represents a fully connected layer computing x @ W + b.
type Dense[B tensor.Backend] = nn.Dense[B]

// DefaultWeightStd is the standard deviation used for Dense weight
// initialization.
const DefaultWeightStd = nn.DefaultWeightStd

// NewDense creates a fully connected layer with weights and biases
// drawn from N(0, DefaultWeightStd).
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewDense(784, 300, backend)
func NewDense[B tensor.Backend](inFeatures, outFeatures int, backend B) *Dense[B] {
	return nn.NewDense(inFeatures, outFeatures, backend)
}

// NewDenseStd creates a fully connected layer with weights drawn from
// N(0, std).
func NewDenseStd[B tensor.Backend](inFeatures, outFeatures int, std float64, backend B) *Dense[B] {
	return nn.NewDenseStd(inFeatures, outFeatures, std, backend)
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Softmax represents the row-wise softmax activation function.
type Softmax[B tensor.Backend] = nn.Softmax[B]

// NewSoftmax creates a new Softmax activation layer.
func NewSoftmax[B tensor.Backend]() *Softmax[B] {
	return nn.NewSoftmax[B]()
}

// Loss Functions

// ClippedCrossEntropy represents the clipped cross-entropy loss for
// classification. It applies softmax to the logits, clamps the
// probabilities away from 0 and 1, and averages the per-example loss.
type ClippedCrossEntropy[B tensor.Backend] = nn.ClippedCrossEntropy[B]

// NewClippedCrossEntropy creates a new clipped cross-entropy loss.
//
// Example:
//
//	criterion := nn.NewClippedCrossEntropy(g)
//	loss := criterion.Forward(logits, oneHotTargets)
func NewClippedCrossEntropy[B tensor.Backend](backend B) *ClippedCrossEntropy[B] {
	return nn.NewClippedCrossEntropy(backend)
}

// Sequential

// Sequential represents a sequential container of modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new sequential model.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewDense(784, 300, backend),
//	    nn.NewReLU[B](),
//	    nn.NewDense(300, 10, backend),
//	)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Initialization functions

// RandomNormal initializes a tensor with values from N(0, std).
func RandomNormal[B tensor.Backend](shape tensor.Shape, std float64, backend B) *tensor.Tensor[float32, B] {
	return nn.RandomNormal(shape, std, backend)
}

// Xavier initializes a tensor using Xavier/Glorot initialization.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Zeros initializes a tensor with zeros (for biases).
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones initializes a tensor with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}

// Utility functions

// OneHot encodes class indices as one-hot rows.
//
// Example:
//
//	labels := nn.OneHot([]int32{3, 1, 4}, 10, backend)  // [3, 10]
func OneHot[B tensor.Backend](indices []int32, numClasses int, backend B) *tensor.Tensor[float32, B] {
	return nn.OneHot(indices, numClasses, backend)
}

// Accuracy computes the classification accuracy of predictions against
// one-hot targets.
//
// Example:
//
//	acc := nn.Accuracy(probs, labels)
//	fmt.Printf("Accuracy: %.2f%%\n", acc*100)
func Accuracy[B tensor.Backend](predictions, targets *tensor.Tensor[float32, B]) float64 {
	return nn.Accuracy(predictions, targets)
}

// Checkpointing

// StateDicter is implemented by modules whose parameters can be
// exported and restored.
type StateDicter = nn.StateDicter

// SaveStateDict writes a state dict to w in the gradflow checkpoint
// format.
func SaveStateDict(w io.Writer, stateDict map[string]*tensor.RawTensor) error {
	return nn.SaveStateDict(w, stateDict)
}

// LoadStateDict reads a state dict from r.
func LoadStateDict(r io.Reader) (map[string]*tensor.RawTensor, error) {
	return nn.LoadStateDict(r)
}

// SaveCheckpoint writes a module's parameters to path.
func SaveCheckpoint(path string, m StateDicter) error {
	return nn.SaveCheckpoint(path, m)
}

// LoadCheckpoint restores a module's parameters from path.
func LoadCheckpoint(path string, m StateDicter) error {
	return nn.LoadCheckpoint(path, m)
}
