package graph

import (
	"github.com/gradflow-ml/gradflow/internal/graph/ops"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Tape records operations during the forward pass and replays them in
// reverse to compute gradients.
type Tape struct {
	operations []ops.Operation
	recording  bool
}

// NewTape creates an empty tape that is not recording.
func NewTape() *Tape {
	return &Tape{operations: make([]ops.Operation, 0, 64)}
}

// StartRecording enables operation recording.
func (t *Tape) StartRecording() { t.recording = true }

// StopRecording disables operation recording.
func (t *Tape) StopRecording() { t.recording = false }

// IsRecording reports whether operations are currently being recorded.
func (t *Tape) IsRecording() bool { return t.recording }

// Record appends an operation if the tape is recording.
func (t *Tape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear drops all recorded operations. The recording flag is preserved,
// so a training loop can clear between steps without re-arming the tape.
func (t *Tape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *Tape) NumOps() int { return len(t.operations) }

// Backward walks the tape in reverse, applying the chain rule from the
// given output gradient. Gradients for tensors used more than once are
// accumulated by addition. Returns a map from each reached tensor to
// its gradient.
func (t *Tape) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.operations) == 0 {
		return grads
	}

	// The backward pass itself must not be recorded.
	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	last := t.operations[len(t.operations)-1]
	grads[last.Output()] = outputGrad

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			// Nothing downstream used this output.
			continue
		}

		inputGrads := op.Backward(outGrad, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}

	return grads
}
