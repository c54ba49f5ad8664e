// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides automatic differentiation via a gradient tape.
//
// This package implements reverse-mode automatic differentiation
// (backpropagation). It wraps any backend to record operations on a
// tape, which is then walked backwards to produce gradients.
//
// Example:
//
//	import (
//	    "github.com/gradflow-ml/gradflow/backend/cpu"
//	    "github.com/gradflow-ml/gradflow/graph"
//	    "github.com/gradflow-ml/gradflow/tensor"
//	)
//
//	func main() {
//	    // Wrap the CPU backend with a recording graph
//	    g := graph.New(cpu.New())
//
//	    g.Tape().StartRecording()
//	    x := tensor.Ones[float32](tensor.Shape{2, 3}, g)
//	    y := x.Add(x)  // recorded on the tape
//	    loss := y.Sum()
//	    g.Tape().StopRecording()
//
//	    // Compute gradients
//	    grads := graph.Backward(loss, g)
//	    _ = grads[x.Raw()]  // d loss / d x
//	}
package graph

import (
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Graph is a recording backend. It delegates computation to the inner
// backend and records differentiable operations on its tape.
type Graph[B tensor.Backend] = graph.Graph[B]

// New creates a new recording graph wrapping the given backend.
//
// Example:
//
//	g := graph.New(cpu.New())
func New[B tensor.Backend](backend B) *Graph[B] {
	return graph.New(backend)
}

// Tape records operations for automatic differentiation.
type Tape = graph.Tape

// NewTape creates a new gradient tape.
func NewTape() *Tape {
	return graph.NewTape()
}

// Recorder is the interface of backends that carry a gradient tape.
type Recorder = graph.Recorder

// Backward computes gradients of t with respect to every tensor that
// participated in the recorded computation.
func Backward[T tensor.DType, B Recorder](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return graph.Backward(t, backend)
}
