package graph

import (
	"github.com/gradflow-ml/gradflow/internal/graph/ops"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Recorder is satisfied by backends that carry a tape. Graph implements
// it; code that only needs to run backward passes can accept a Recorder
// instead of a concrete Graph.
type Recorder interface {
	tensor.Backend
	Tape() *Tape
}

// Backward computes gradients of t with respect to every tensor the
// tape reached, seeding the output gradient with ones. For a scalar
// loss this yields dLoss/dX for each input X.
//
// Panics if no operations were recorded, which almost always means the
// tape was never armed with StartRecording.
func Backward[T tensor.DType, B Recorder](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.Tape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget Tape().StartRecording()?)")
	}
	return tape.Backward(ops.OnesLike(t.Raw()), backend)
}
