package tensor

import (
	"testing"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{1}, 1},
		{Shape{5}, 5},
		{Shape{2, 3}, 6},
		{Shape{100, 784}, 78400},
		{Shape{2, 3, 4}, 24},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{}).Validate(); err != nil {
		t.Errorf("scalar shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension accepted")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestShapeEqual(t *testing.T) {
	if !(Shape{2, 3}).Equal(Shape{2, 3}) {
		t.Error("equal shapes reported unequal")
	}
	if (Shape{2, 3}).Equal(Shape{3, 2}) {
		t.Error("different shapes reported equal")
	}
	if (Shape{2, 3}).Equal(Shape{2, 3, 1}) {
		t.Error("shapes of different rank reported equal")
	}
}

func TestShapeClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	c[0] = 99
	if s[0] != 2 {
		t.Error("Clone shares memory with original")
	}
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		shape Shape
		want  []int
	}{
		{Shape{4}, []int{1}},
		{Shape{2, 3}, []int{3, 1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
	}

	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		if len(got) != len(tt.want) {
			t.Fatalf("%v.ComputeStrides() = %v, want %v", tt.shape, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%v.ComputeStrides() = %v, want %v", tt.shape, got, tt.want)
				break
			}
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
	}{
		{"same shape", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false},
		{"bias row", Shape{100, 10}, Shape{1, 10}, Shape{100, 10}, true},
		{"missing leading dim", Shape{2, 3}, Shape{3}, Shape{2, 3}, true},
		{"both stretch", Shape{2, 1}, Shape{1, 3}, Shape{2, 3}, true},
		{"scalar-ish", Shape{1}, Shape{4, 5}, Shape{4, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if err != nil {
				t.Fatalf("BroadcastShapes(%v, %v) error: %v", tt.a, tt.b, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("BroadcastShapes(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if broadcast != tt.broadcast {
				t.Errorf("broadcast flag = %v, want %v", broadcast, tt.broadcast)
			}
		})
	}
}

func TestBroadcastShapesIncompatible(t *testing.T) {
	if _, _, err := BroadcastShapes(Shape{2, 3}, Shape{2, 4}); err == nil {
		t.Error("incompatible shapes accepted")
	}
	if _, _, err := BroadcastShapes(Shape{5}, Shape{3}); err == nil {
		t.Error("incompatible vectors accepted")
	}
}
