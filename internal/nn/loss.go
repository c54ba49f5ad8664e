package nn

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/graph/ops"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// ClippedCrossEntropy computes the cross-entropy loss between logits
// and one-hot targets. Probabilities are clipped away from 0 and 1
// before the log so confident wrong predictions yield a large but
// finite loss, and each output unit contributes both its target and
// complement term:
//
//	loss = mean over batch of -Σ_j [y_j·log(p_j) + (1-y_j)·log(1-p_j)]
//
// where p = softmax(logits). When the backend records a computation
// graph, the loss becomes a single fused node with the closed-form
// gradient (p - y)/batch.
type ClippedCrossEntropy[B tensor.Backend] struct {
	backend B
}

// NewClippedCrossEntropy creates the loss function.
func NewClippedCrossEntropy[B tensor.Backend](backend B) *ClippedCrossEntropy[B] {
	return &ClippedCrossEntropy[B]{backend: backend}
}

// Forward computes the scalar mean loss.
//
// logits and targets must both have shape [batch, classes]; targets are
// one-hot rows.
func (c *ClippedCrossEntropy[B]) Forward(
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[float32, B],
) *tensor.Tensor[float32, B] {
	type crossEntropyBackend interface {
		CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor
	}

	if gb, ok := any(c.backend).(crossEntropyBackend); ok {
		return tensor.New[float32, B](gb.CrossEntropy(logits.Raw(), targets.Raw()), c.backend)
	}

	// Plain backend: compute the loss without recording.
	loss, _ := ops.CrossEntropyForward(logits.Raw(), targets.Raw())
	return tensor.New[float32, B](loss, c.backend)
}

// Parameters returns nil; loss functions have no trainable parameters.
func (c *ClippedCrossEntropy[B]) Parameters() []*Parameter[B] {
	return nil
}

// OneHot encodes class indices as one-hot rows of shape
// [len(indices), numClasses]. Panics on an out-of-range index.
func OneHot[B tensor.Backend](indices []int32, numClasses int, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](tensor.Shape{len(indices), numClasses}, backend)
	data := t.Data()
	for i, idx := range indices {
		if idx < 0 || int(idx) >= numClasses {
			panic(fmt.Sprintf("OneHot: index %d out of range [0, %d)", idx, numClasses))
		}
		data[i*numClasses+int(idx)] = 1
	}
	return t
}

// Accuracy computes the fraction of rows where the argmax of the
// predictions matches the argmax of the one-hot targets.
func Accuracy[B tensor.Backend](
	predictions *tensor.Tensor[float32, B],
	targets *tensor.Tensor[float32, B],
) float64 {
	shape := predictions.Shape()
	if len(shape) != 2 || !targets.Shape().Equal(shape) {
		panic(fmt.Sprintf("Accuracy: prediction shape %v does not match target shape %v",
			shape, targets.Shape()))
	}
	rows, cols := shape[0], shape[1]
	if rows == 0 {
		return 0
	}

	pv, tv := predictions.Data(), targets.Data()
	correct := 0
	for r := 0; r < rows; r++ {
		base := r * cols
		if argmaxRow(pv[base:base+cols]) == argmaxRow(tv[base:base+cols]) {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}

func argmaxRow(row []float32) int {
	maxIdx := 0
	for i, v := range row[1:] {
		if v > row[maxIdx] {
			maxIdx = i + 1
		}
	}
	return maxIdx
}
