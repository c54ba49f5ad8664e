package graph_test

import (
	"math"
	"testing"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func TestGraph_Name(t *testing.T) {
	g := graph.New(cpu.New())
	if g.Name() != "Graph(CPU)" {
		t.Errorf("Name() = %s, want Graph(CPU)", g.Name())
	}
}

func TestTape_Recording(t *testing.T) {
	g := graph.New(cpu.New())
	tape := g.Tape()

	if tape.IsRecording() {
		t.Error("tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("tape should not be recording after StopRecording()")
	}
}

func TestTape_Clear(t *testing.T) {
	g := graph.New(cpu.New())
	tape := g.Tape()
	tape.StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, g)
	b, _ := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2}, g)
	a.Add(b)

	if tape.NumOps() != 1 {
		t.Fatalf("NumOps() = %d, want 1", tape.NumOps())
	}

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Errorf("NumOps() after Clear() = %d, want 0", tape.NumOps())
	}
	if !tape.IsRecording() {
		t.Error("Clear() should preserve the recording flag")
	}
}

func TestGraph_NotRecordingByDefault(t *testing.T) {
	g := graph.New(cpu.New())

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, g)
	a.Add(a)

	if g.Tape().NumOps() != 0 {
		t.Errorf("operations recorded without StartRecording(): %d", g.Tape().NumOps())
	}
}

// TestGraph_ScalarToyGraph builds a = (b + c) * (c + 2) with b = 2 and
// c = 1, checking the forward value a = 9 and both gradients:
// da/db = (c + 2) and da/dc = (b + c) + (c + 2).
func TestGraph_ScalarToyGraph(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	b, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, g)
	c, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1}, g)
	two, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, g)

	a := b.Add(c).Mul(c.Add(two)) // (2+1) * (1+2) = 9

	if a.Item() != 9 {
		t.Fatalf("a = %v, want 9", a.Item())
	}

	grads := graph.Backward(a, g)

	gradB, ok := grads[b.Raw()]
	if !ok {
		t.Fatal("no gradient for b")
	}
	// da/db = c + 2 = 3
	if got := gradB.AsFloat32()[0]; got != 3 {
		t.Errorf("da/db = %v, want 3", got)
	}

	gradC, ok := grads[c.Raw()]
	if !ok {
		t.Fatal("no gradient for c")
	}
	// da/dc = (b + c) + (c + 2) = 3 + 3 = 6
	if got := gradC.AsFloat32()[0]; got != 6 {
		t.Errorf("da/dc = %v, want 6", got)
	}
}

// TestGraph_VectorToyGraph runs the same graph with a vector b and a
// broadcast scalar c. The multiplication distributes element-wise.
func TestGraph_VectorToyGraph(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	bData := make([]float32, 10)
	for i := range bData {
		bData[i] = float32(10 + i)
	}
	b, _ := tensor.FromSlice(bData, tensor.Shape{10}, g)
	c, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1}, g)
	two, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, g)

	a := b.Add(c).Mul(c.Add(two)) // (b+1) * 3

	for i, got := range a.Data() {
		want := (bData[i] + 1) * 3
		if got != want {
			t.Errorf("a[%d] = %v, want %v", i, got, want)
		}
	}

	grads := graph.Backward(a, g)

	gradB := grads[b.Raw()]
	if gradB == nil {
		t.Fatal("no gradient for b")
	}
	for i, got := range gradB.AsFloat32() {
		if got != 3 {
			t.Errorf("da/db[%d] = %v, want 3", i, got)
		}
	}

	// c broadcast into both factors: da/dc = Σ_i [(b_i + c) + (c + 2)].
	gradC := grads[c.Raw()]
	if gradC == nil {
		t.Fatal("no gradient for c")
	}
	var want float32
	for _, bv := range bData {
		want += (bv + 1) + 3
	}
	if got := gradC.AsFloat32()[0]; got != want {
		t.Errorf("da/dc = %v, want %v", got, want)
	}
}

// TestGraph_GradientAccumulation checks that a tensor used twice gets
// the sum of both gradient paths: y = x*x has dy/dx = 2x.
func TestGraph_GradientAccumulation(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{2, 3}, tensor.Shape{2}, g)
	y := x.Mul(x)

	grads := graph.Backward(y, g)

	gradX := grads[x.Raw()]
	if gradX == nil {
		t.Fatal("no gradient for x")
	}
	want := []float32{4, 6}
	for i, got := range gradX.AsFloat32() {
		if got != want[i] {
			t.Errorf("dy/dx[%d] = %v, want %v", i, got, want[i])
		}
	}
}

func TestGraph_SubDivGradients(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	a, _ := tensor.FromSlice([]float32{6}, tensor.Shape{1}, g)
	b, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, g)

	y := a.Div(b).Sub(b) // y = a/b - b = 1

	if y.Item() != 1 {
		t.Fatalf("y = %v, want 1", y.Item())
	}

	grads := graph.Backward(y, g)

	// dy/da = 1/b = 0.5
	if got := grads[a.Raw()].AsFloat32()[0]; got != 0.5 {
		t.Errorf("dy/da = %v, want 0.5", got)
	}
	// dy/db = -a/b² - 1 = -1.5 - 1 = -2.5
	if got := grads[b.Raw()].AsFloat32()[0]; got != -2.5 {
		t.Errorf("dy/db = %v, want -2.5", got)
	}
}

// TestGraph_MatMulGradients checks grad_a = grad @ bᵀ and grad_b = aᵀ @ grad
// with an all-ones output gradient.
func TestGraph_MatMulGradients(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, g)
	b, _ := tensor.FromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2}, g)
	y := a.MatMul(b)

	grads := graph.Backward(y, g)

	// grad_a = ones @ bᵀ: each row is the row sums of b.
	wantA := []float32{11, 15, 11, 15}
	for i, got := range grads[a.Raw()].AsFloat32() {
		if got != wantA[i] {
			t.Errorf("grad_a[%d] = %v, want %v", i, got, wantA[i])
		}
	}

	// grad_b = aᵀ @ ones: each column is the column sums of a.
	wantB := []float32{4, 4, 6, 6}
	for i, got := range grads[b.Raw()].AsFloat32() {
		if got != wantB[i] {
			t.Errorf("grad_b[%d] = %v, want %v", i, got, wantB[i])
		}
	}
}

func TestGraph_BiasBroadcastGradient(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, g)
	bias, _ := tensor.FromSlice([]float32{10, 20}, tensor.Shape{1, 2}, g)

	y := x.Add(bias)

	grads := graph.Backward(y, g)

	gradBias := grads[bias.Raw()]
	if gradBias == nil {
		t.Fatal("no gradient for bias")
	}
	if !gradBias.Shape().Equal(tensor.Shape{1, 2}) {
		t.Fatalf("bias gradient shape = %v, want [1 2]", gradBias.Shape())
	}
	// Each bias element was broadcast over 3 rows.
	for i, got := range gradBias.AsFloat32() {
		if got != 3 {
			t.Errorf("grad_bias[%d] = %v, want 3", i, got)
		}
	}
}

func TestGraph_ReLUGradient(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{-1, 0, 2}, tensor.Shape{3}, g)
	y := x.ReLU()

	wantY := []float32{0, 0, 2}
	for i, got := range y.Data() {
		if got != wantY[i] {
			t.Errorf("relu[%d] = %v, want %v", i, got, wantY[i])
		}
	}

	grads := graph.Backward(y, g)

	// Gradient is zero at x <= 0, including exactly zero.
	want := []float32{0, 0, 1}
	for i, got := range grads[x.Raw()].AsFloat32() {
		if got != want[i] {
			t.Errorf("grad[%d] = %v, want %v", i, got, want[i])
		}
	}
}

func TestGraph_SoftmaxGradientSumsToZero(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 0, 0, 0}, tensor.Shape{2, 3}, g)
	y := x.Softmax()

	for r := 0; r < 2; r++ {
		var sum float64
		for c := 0; c < 3; c++ {
			sum += float64(y.At(r, c))
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("row %d probabilities sum to %v, want 1", r, sum)
		}
	}

	grads := graph.Backward(y, g)

	// With a uniform output gradient the softmax gradient vanishes
	// row-wise, since the probabilities sum to a constant.
	for i, got := range grads[x.Raw()].AsFloat32() {
		if math.Abs(float64(got)) > 1e-6 {
			t.Errorf("grad[%d] = %v, want ~0", i, got)
		}
	}
}

func TestGraph_CrossEntropyGradient(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	logits, _ := tensor.FromSlice([]float32{
		2, 1, 0,
		0, 2, 1,
	}, tensor.Shape{2, 3}, g)
	targets, _ := tensor.FromSlice([]float32{
		1, 0, 0,
		0, 1, 0,
	}, tensor.Shape{2, 3}, g)

	loss := tensor.New[float32](g.CrossEntropy(logits.Raw(), targets.Raw()), g)

	if loss.NumElements() != 1 {
		t.Fatalf("loss shape = %v, want scalar", loss.Shape())
	}
	if v := loss.Item(); v <= 0 || math.IsNaN(float64(v)) {
		t.Fatalf("loss = %v, want positive finite", v)
	}

	grads := graph.Backward(loss, g)

	gradLogits := grads[logits.Raw()]
	if gradLogits == nil {
		t.Fatal("no gradient for logits")
	}
	if grads[targets.Raw()] != nil {
		t.Error("targets should not receive a gradient")
	}

	// grad = (softmax(logits) - targets) / batch
	probs := logits.Softmax()
	batch := float64(2)
	for i, got := range gradLogits.AsFloat32() {
		want := (float64(probs.Data()[i]) - float64(targets.Data()[i])) / batch
		if math.Abs(float64(got)-want) > 1e-6 {
			t.Errorf("grad[%d] = %v, want %v", i, got, want)
		}
	}

	// The logits gradient sums to zero: probabilities and targets both
	// sum to one per row.
	var sum float64
	for _, v := range gradLogits.AsFloat32() {
		sum += float64(v)
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("gradient sum = %v, want ~0", sum)
	}
}

func TestGraph_CrossEntropySaturatedStaysFinite(t *testing.T) {
	g := graph.New(cpu.New())

	// Extreme logits saturate the softmax to 0/1; clipping keeps the
	// log terms finite.
	logits, _ := tensor.FromSlice([]float32{100, -100, -100}, tensor.Shape{1, 3}, g)
	targets, _ := tensor.FromSlice([]float32{0, 1, 0}, tensor.Shape{1, 3}, g)

	loss := tensor.New[float32](g.CrossEntropy(logits.Raw(), targets.Raw()), g)

	v := float64(loss.Item())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Fatalf("loss = %v, want finite", v)
	}
	if v <= 0 {
		t.Errorf("loss = %v, want large positive for a confident miss", v)
	}
}

func TestGraph_ReshapeTransposeGradients(t *testing.T) {
	g := graph.New(cpu.New())
	g.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, g)
	w, _ := tensor.FromSlice([]float32{1, 1, 1, 1, 1, 1}, tensor.Shape{2, 3}, g)

	// y = xᵀ @ reshaped(w): both shape ops must route gradients back.
	y := x.Transpose().MatMul(w.Reshape(2, 3))

	grads := graph.Backward(y, g)

	gradX := grads[x.Raw()]
	if gradX == nil {
		t.Fatal("no gradient for x through transpose")
	}
	if !gradX.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("grad_x shape = %v, want [2 3]", gradX.Shape())
	}

	gradW := grads[w.Raw()]
	if gradW == nil {
		t.Fatal("no gradient for w through reshape")
	}
	if !gradW.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("grad_w shape = %v, want [2 3]", gradW.Shape())
	}
}

func TestBackward_PanicsWithoutRecording(t *testing.T) {
	g := graph.New(cpu.New())
	x, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1}, g)
	y := x.Add(x)

	defer func() {
		if recover() == nil {
			t.Error("expected panic when no operations were recorded")
		}
	}()
	graph.Backward(y, g)
}
