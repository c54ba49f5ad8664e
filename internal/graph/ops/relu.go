package ops

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// ReLUOp represents the rectified linear unit: output = max(0, x).
type ReLUOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{inputs: []*tensor.RawTensor{input}, output: output}
}

// Backward masks the output gradient to positions where the input was
// strictly positive. The gradient at exactly zero is zero.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	grad, err := tensor.NewRaw(input.Shape(), input.DType())
	if err != nil {
		panic(fmt.Sprintf("relu backward: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		xv, gv, rv := input.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for i, x := range xv {
			if x > 0 {
				rv[i] = gv[i]
			}
		}
	case tensor.Float64:
		xv, gv, rv := input.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for i, x := range xv {
			if x > 0 {
				rv[i] = gv[i]
			}
		}
	default:
		panic(fmt.Sprintf("relu backward: unsupported dtype %s", input.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *ReLUOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the activated tensor.
func (op *ReLUOp) Output() *tensor.RawTensor { return op.output }
