package cpu

import (
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func TestSum(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := backend.Sum(x)
	if !got.Shape().Equal(tensor.Shape{1}) {
		t.Fatalf("shape = %v, want [1]", got.Shape())
	}
	assertF32(t, got, []float32{21}, "sum")
}

func TestSumDim(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, []float32{
		1, 2, 3,
		4, 5, 6,
	})

	cols := backend.SumDim(x, 0, false)
	if !cols.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("dim 0 shape = %v, want [3]", cols.Shape())
	}
	assertF32(t, cols, []float32{5, 7, 9}, "sum over rows")

	rows := backend.SumDim(x, 1, true)
	if !rows.Shape().Equal(tensor.Shape{2, 1}) {
		t.Fatalf("dim 1 keepDim shape = %v, want [2 1]", rows.Shape())
	}
	assertF32(t, rows, []float32{6, 15}, "sum over cols")
}

func TestSumDimNegative(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := backend.SumDim(x, -1, false)
	assertF32(t, got, []float32{6, 15}, "sum over dim -1")
}

func TestMeanDim(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 4}, []float32{
		1, 2, 3, 4,
		10, 20, 30, 40,
	})

	got := backend.MeanDim(x, 1, false)
	assertF32(t, got, []float32{2.5, 25}, "mean over cols")
}

func TestReduceDimPanicsOnBadDim(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, make([]float32, 6))
	assertPanics(t, "dim out of range", func() { backend.SumDim(x, 2, false) })
}

func TestArgmax(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{3, 4}, []float32{
		0.1, 0.7, 0.1, 0.1,
		0.9, 0.0, 0.05, 0.05,
		0.2, 0.2, 0.2, 0.4,
	})

	got := backend.Argmax(x, 1)
	if got.DType() != tensor.Int32 {
		t.Fatalf("dtype = %s, want int32", got.DType())
	}
	if !got.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("shape = %v, want [3]", got.Shape())
	}

	want := []int32{1, 0, 3}
	for i, v := range got.AsInt32() {
		if v != want[i] {
			t.Errorf("row %d argmax = %d, want %d", i, v, want[i])
		}
	}
}

func TestArgmaxTiesPickFirst(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{1, 3}, []float32{0.5, 0.5, 0.5})

	if got := backend.Argmax(x, 1).AsInt32()[0]; got != 0 {
		t.Errorf("tie argmax = %d, want 0", got)
	}
}

func TestArgmaxPanicsOnUnsupportedDim(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, make([]float32, 6))
	assertPanics(t, "dim 0 argmax", func() { backend.Argmax(x, 0) })
}
