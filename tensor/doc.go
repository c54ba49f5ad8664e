// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides multi-dimensional arrays with a pluggable
// compute backend.
//
// # Overview
//
// The central type is Tensor[T, B], a typed view over a RawTensor byte
// buffer. The type parameters carry both the element type (float32,
// float64, int32) and the backend, so mixing tensors from different
// backends is a compile error rather than a runtime surprise.
//
// # Basic Usage
//
//	import (
//	    "github.com/gradflow-ml/gradflow/backend/cpu"
//	    "github.com/gradflow-ml/gradflow/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//
//	    fmt.Println(z.Shape())  // [2 3]
//	}
//
// # Broadcasting
//
// Element-wise operations follow NumPy broadcasting rules: dimensions
// are aligned from the right, and a dimension of size 1 stretches to
// match. Adding a [1, 10] bias to a [100, 10] matrix just works.
//
// # Gradients
//
// The tensor package itself does no gradient bookkeeping. Wrap a
// backend with graph.New to record operations for backpropagation; see
// the graph package.
package tensor
