package ops

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// CrossEntropyOp fuses softmax and clipped cross-entropy into one node.
//
// Forward takes logits [batch, classes] and one-hot targets of the same
// shape, applies row-wise softmax, clips the probabilities away from 0
// and 1, and averages the per-sample losses over the batch. The fusion
// exists because the combined gradient has the closed form
//
//	grad_logits = (P - Y) / batch
//
// which is exact and numerically stable, while composing the generic
// softmax and log backward passes through clipped probabilities is not.
type CrossEntropyOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	probs  *tensor.RawTensor
}

// NewCrossEntropyOp creates a new CrossEntropyOp. probs holds the
// softmax probabilities computed in the forward pass; output is the
// scalar mean loss.
func NewCrossEntropyOp(logits, targets, probs, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{
		inputs: []*tensor.RawTensor{logits, targets},
		output: output,
		probs:  probs,
	}
}

// Probs returns the softmax probabilities from the forward pass.
func (op *CrossEntropyOp) Probs() *tensor.RawTensor { return op.probs }

// Backward computes the logits gradient (P - Y)/batch scaled by the
// incoming scalar gradient. Targets receive no gradient.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	targets := op.inputs[1]
	batch := op.probs.Shape()[0]

	var scale float64
	switch outputGrad.DType() {
	case tensor.Float32:
		scale = float64(outputGrad.AsFloat32()[0])
	case tensor.Float64:
		scale = outputGrad.AsFloat64()[0]
	default:
		panic(fmt.Sprintf("cross entropy backward: unsupported dtype %s", outputGrad.DType()))
	}

	diff := backend.Sub(op.probs, targets)
	gradLogits := backend.MulScalar(diff, scale/float64(batch))

	return []*tensor.RawTensor{gradLogits, nil}
}

// Inputs returns the input tensors [logits, targets].
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the scalar loss tensor.
func (op *CrossEntropyOp) Output() *tensor.RawTensor { return op.output }
