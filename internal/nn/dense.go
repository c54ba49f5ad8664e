package nn

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Dense implements a fully connected layer: y = x @ W + b.
//
// The weight is stored as [in_features, out_features] so the forward
// pass is a single matmul with no transpose:
//
//	x [batch, in] @ W [in, out] -> [batch, out], then + b [1, out]
//
// Weights and biases are both initialized from N(0, DefaultWeightStd).
type Dense[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [in_features, out_features]
	bias        *Parameter[B] // [1, out_features]
	backend     B
}

// NewDense creates a Dense layer with weights and biases drawn from
// N(0, DefaultWeightStd).
func NewDense[B tensor.Backend](inFeatures, outFeatures int, backend B) *Dense[B] {
	return NewDenseStd(inFeatures, outFeatures, DefaultWeightStd, backend)
}

// NewDenseStd creates a Dense layer with weights and biases drawn from
// N(0, std).
func NewDenseStd[B tensor.Backend](inFeatures, outFeatures int, std float64, backend B) *Dense[B] {
	weight := NewParameter("weight",
		RandomNormal(tensor.Shape{inFeatures, outFeatures}, std, backend))
	bias := NewParameter("bias",
		RandomNormal(tensor.Shape{1, outFeatures}, std, backend))

	return &Dense[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes y = x @ W + b.
//
// Input shape: [batch, in_features]. Output: [batch, out_features].
// Panics if the input is not 2D or the feature count does not match.
func (d *Dense[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Dense.Forward: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != d.inFeatures {
		panic(fmt.Sprintf("Dense.Forward: expected input with %d features, got %d", d.inFeatures, shape[1]))
	}

	// The bias [1, out] broadcasts over the batch dimension.
	return input.MatMul(d.weight.Tensor()).Add(d.bias.Tensor())
}

// Parameters returns [weight, bias].
func (d *Dense[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{d.weight, d.bias}
}

// Weight returns the weight parameter, shape [in_features, out_features].
func (d *Dense[B]) Weight() *Parameter[B] { return d.weight }

// Bias returns the bias parameter, shape [1, out_features].
func (d *Dense[B]) Bias() *Parameter[B] { return d.bias }

// InFeatures returns the number of input features.
func (d *Dense[B]) InFeatures() int { return d.inFeatures }

// OutFeatures returns the number of output features.
func (d *Dense[B]) OutFeatures() int { return d.outFeatures }

// StateDict returns the layer parameters keyed by name.
func (d *Dense[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": d.weight.Tensor().Raw(),
		"bias":   d.bias.Tensor().Raw(),
	}
}

// LoadStateDict copies parameter data from a state dictionary,
// validating shapes and dtypes first.
func (d *Dense[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadParam(stateDict, "weight", d.weight, tensor.Shape{d.inFeatures, d.outFeatures}); err != nil {
		return err
	}
	return loadParam(stateDict, "bias", d.bias, tensor.Shape{1, d.outFeatures})
}

func loadParam[B tensor.Backend](stateDict map[string]*tensor.RawTensor, key string, p *Parameter[B], want tensor.Shape) error {
	raw, ok := stateDict[key]
	if !ok {
		return fmt.Errorf("missing %s in state dict", key)
	}
	if !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", key, want, raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", key, raw.DType())
	}
	copy(p.Tensor().Data(), raw.AsFloat32())
	return nil
}
