package ops

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// SoftmaxOp represents row-wise softmax over a 2D tensor.
type SoftmaxOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSoftmaxOp creates a new SoftmaxOp.
func NewSoftmaxOp(input, output *tensor.RawTensor) *SoftmaxOp {
	return &SoftmaxOp{inputs: []*tensor.RawTensor{input}, output: output}
}

// Backward computes the softmax gradient using the stored output:
//
//	grad_x[i] = s[i] * (grad[i] - Σ_j grad[j]*s[j])
//
// applied independently per row.
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	s := op.output
	shape := s.Shape()
	rows, cols := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, s.DType())
	if err != nil {
		panic(fmt.Sprintf("softmax backward: %v", err))
	}

	switch s.DType() {
	case tensor.Float32:
		sv, gv, rv := s.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for r := 0; r < rows; r++ {
			base := r * cols
			var dot float32
			for c := 0; c < cols; c++ {
				dot += gv[base+c] * sv[base+c]
			}
			for c := 0; c < cols; c++ {
				rv[base+c] = sv[base+c] * (gv[base+c] - dot)
			}
		}
	case tensor.Float64:
		sv, gv, rv := s.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for r := 0; r < rows; r++ {
			base := r * cols
			var dot float64
			for c := 0; c < cols; c++ {
				dot += gv[base+c] * sv[base+c]
			}
			for c := 0; c < cols; c++ {
				rv[base+c] = sv[base+c] * (gv[base+c] - dot)
			}
		}
	default:
		panic(fmt.Sprintf("softmax backward: unsupported dtype %s", s.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the probability tensor.
func (op *SoftmaxOp) Output() *tensor.RawTensor { return op.output }
