package cpu

import (
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func TestReshape(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := backend.Reshape(x, tensor.Shape{3, 2})
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", got.Shape())
	}
	assertF32(t, got, []float32{1, 2, 3, 4, 5, 6}, "reshape keeps element order")

	// The result is a copy, not a view.
	got.AsFloat32()[0] = 99
	if x.AsFloat32()[0] != 1 {
		t.Error("Reshape should not alias the input buffer")
	}
}

func TestReshapePanicsOnElementCountMismatch(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, make([]float32, 6))
	assertPanics(t, "element count mismatch", func() {
		backend.Reshape(x, tensor.Shape{4, 2})
	})
}

func TestTranspose2D(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, []float32{
		1, 2, 3,
		4, 5, 6,
	})

	got := backend.Transpose(x)
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", got.Shape())
	}
	assertF32(t, got, []float32{
		1, 4,
		2, 5,
		3, 6,
	}, "2D transpose")
}

func TestTransposeExplicitAxes(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	// Identity permutation leaves the tensor unchanged.
	same := backend.Transpose(x, 0, 1)
	assertF32(t, same, []float32{1, 2, 3, 4, 5, 6}, "identity permutation")

	swapped := backend.Transpose(x, 1, 0)
	assertF32(t, swapped, []float32{1, 4, 2, 5, 3, 6}, "explicit swap")
}

func TestTranspose3D(t *testing.T) {
	backend := New()
	// Shape [2, 1, 3]: two "pages" of a single row.
	x := rawF32(t, tensor.Shape{2, 1, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := backend.Transpose(x, 2, 1, 0)
	if !got.Shape().Equal(tensor.Shape{3, 1, 2}) {
		t.Fatalf("shape = %v, want [3 1 2]", got.Shape())
	}
	assertF32(t, got, []float32{1, 4, 2, 5, 3, 6}, "3D transpose")
}

func TestTransposeInt32(t *testing.T) {
	backend := New()
	raw, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Int32)
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}
	copy(raw.AsInt32(), []int32{1, 2, 3, 4})

	got := backend.Transpose(raw).AsInt32()
	want := []int32{1, 3, 2, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTransposePanicsOnBadAxes(t *testing.T) {
	backend := New()
	x := rawF32(t, tensor.Shape{2, 3}, make([]float32, 6))

	assertPanics(t, "repeated axis", func() { backend.Transpose(x, 0, 0) })
	assertPanics(t, "out-of-range axis", func() { backend.Transpose(x, 0, 2) })
	assertPanics(t, "wrong axis count", func() { backend.Transpose(x, 0) })
}
