package ops

import (
	"fmt"
	"math"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Probabilities are clipped into [ClipMin, ClipMax] before taking logs
// so the loss stays finite for saturated predictions.
const (
	ClipMin = 1e-10
	ClipMax = 1.0 - 1e-7
)

// CrossEntropyForward computes the clipped cross-entropy loss between
// logits and one-hot targets. It applies a row-wise softmax, clips the
// probabilities, and sums the per-unit loss
//
//	-(y*log(p) + (1-y)*log(1-p))
//
// over each row, then averages over the batch. Returns the scalar loss
// and the unclipped softmax probabilities for the backward pass.
func CrossEntropyForward(logits, targets *tensor.RawTensor) (loss, probs *tensor.RawTensor) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy: expected 2D logits, got shape %v", shape))
	}
	if !targets.Shape().Equal(shape) {
		panic(fmt.Sprintf("cross entropy: logits shape %v does not match targets shape %v",
			shape, targets.Shape()))
	}
	rows, cols := shape[0], shape[1]

	probs, err := tensor.NewRaw(shape, logits.DType())
	if err != nil {
		panic(fmt.Sprintf("cross entropy: %v", err))
	}
	loss, err = tensor.NewRaw(tensor.Shape{1}, logits.DType())
	if err != nil {
		panic(fmt.Sprintf("cross entropy: %v", err))
	}

	switch logits.DType() {
	case tensor.Float32:
		lv, tv, pv := logits.AsFloat32(), targets.AsFloat32(), probs.AsFloat32()
		var total float64
		for r := 0; r < rows; r++ {
			base := r * cols
			softmaxRow32(lv[base:base+cols], pv[base:base+cols])
			for c := 0; c < cols; c++ {
				p := clamp(float64(pv[base+c]))
				y := float64(tv[base+c])
				total -= y*math.Log(p) + (1-y)*math.Log(1-p)
			}
		}
		loss.AsFloat32()[0] = float32(total / float64(rows))
	case tensor.Float64:
		lv, tv, pv := logits.AsFloat64(), targets.AsFloat64(), probs.AsFloat64()
		var total float64
		for r := 0; r < rows; r++ {
			base := r * cols
			softmaxRow64(lv[base:base+cols], pv[base:base+cols])
			for c := 0; c < cols; c++ {
				p := clamp(pv[base+c])
				y := tv[base+c]
				total -= y*math.Log(p) + (1-y)*math.Log(1-p)
			}
		}
		loss.AsFloat64()[0] = total / float64(rows)
	default:
		panic(fmt.Sprintf("cross entropy: unsupported dtype %s", logits.DType()))
	}

	return loss, probs
}

func clamp(p float64) float64 {
	if p < ClipMin {
		return ClipMin
	}
	if p > ClipMax {
		return ClipMax
	}
	return p
}

// softmaxRow32 writes softmax(in) to out with max-shifting for
// numerical stability.
func softmaxRow32(in, out []float32) {
	max := in[0]
	for _, v := range in[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range in {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
}

func softmaxRow64(in, out []float64) {
	max := in[0]
	for _, v := range in[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range in {
		e := math.Exp(v - max)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
}
