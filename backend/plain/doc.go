// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package plain provides the CPU ("plain") layer kernels of the training engine.
//
// # Overview
//
// Each kernel computes one layer kind over flat batched []float32 buffers of
// EntryCount × NeuronCount elements:
//   - Test: forward activation
//   - Backprop: first-order error propagation
//   - BackpropHessian: diagonal Hessian propagation (squared local derivative)
//
// Kernels are selected once per layer through a Registry keyed by the layer
// identity, and run data-parallel across the configured thread count.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/plain/backend/plain"
//	    "github.com/born-ml/plain/layer"
//	)
//
//	func main() {
//	    reg := plain.NewRegistry()
//	    k, _ := reg.Select(layer.RectifiedLinear{})
//	    cfg := layer.Flat(4)
//	    out := make([]float32, 4)
//	    k.Test(plain.Call{Input: cfg, Output: cfg, EntryCount: 1},
//	        []float32{-2, 0, 3.5, -0.1}, out) // out = [0 0 3.5 0]
//	}
//
// # In-place Backprop
//
// A kernel whose InPlaceBackprop reports true accepts the same memory for
// input and output errors. Drivers consult the flag before allocating a
// scratch buffer; passing aliased buffers to any other kernel is a contract
// violation.
//
// # Thread Safety
//
// Kernels are stateless and safe for concurrent use on disjoint buffers.
package plain
