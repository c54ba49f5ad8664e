// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Dense (fully connected)
//   - Activations: ReLU, Softmax
//   - Loss functions: ClippedCrossEntropy
//   - Utilities: Sequential, Module interface, Parameter, OneHot, Accuracy
//   - Initialization: RandomNormal, Xavier, Zeros, Ones
//   - Checkpointing: SaveCheckpoint, LoadCheckpoint
//
// # Basic Usage
//
//	import (
//	    "github.com/gradflow-ml/gradflow/backend/cpu"
//	    "github.com/gradflow-ml/gradflow/graph"
//	    "github.com/gradflow-ml/gradflow/nn"
//	)
//
//	func main() {
//	    g := graph.New(cpu.New())
//
//	    // Build a simple MLP
//	    model := nn.NewSequential(
//	        nn.NewDense(784, 300, g),
//	        nn.NewReLU[*graph.Graph[*cpu.Backend]](),
//	        nn.NewDense(300, 10, g),
//	    )
//
//	    output := model.Forward(input)
//	}
//
// # Loss Functions
//
// ClippedCrossEntropy combines softmax with a clipped cross-entropy,
// so raw logits go in and a scalar loss comes out. Probabilities are
// clamped away from 0 and 1 before the logs, which keeps the loss
// finite even for saturated predictions.
//
//	criterion := nn.NewClippedCrossEntropy(g)
//	loss := criterion.Forward(logits, oneHotTargets)
//
// # Checkpointing
//
// Any module exposing StateDict/LoadStateDict can be written to disk:
//
//	err := nn.SaveCheckpoint("model.gflw", model)
//	err = nn.LoadCheckpoint("model.gflw", model)
package nn
