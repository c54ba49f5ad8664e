// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go element-wise operations with NumPy-compatible broadcasting
//   - Matrix multiplication via gonum BLAS (float32 and float64)
//   - Row-wise softmax with max-shift for numerical stability
//   - Reductions: Sum, SumDim, MeanDim, Argmax
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
//	}
//
// # Thread Safety
//
// The backend is stateless and safe for concurrent use. Each operation
// allocates its own result tensor and does not share mutable state.
package cpu
