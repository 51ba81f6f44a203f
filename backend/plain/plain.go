// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package plain

import (
	internalplain "github.com/born-ml/plain/internal/backend/plain"
)

// Kernel computes the forward, backward and Hessian-diagonal passes of one layer kind.
type Kernel = internalplain.Kernel

// WeightHessianUpdater is implemented by kernels of layers with weights.
type WeightHessianUpdater = internalplain.WeightHessianUpdater

// Call carries the shapes, weights and running configuration of one invocation.
type Call = internalplain.Call

// Registry maps layer identities to kernels.
type Registry = internalplain.Registry

// ContractError describes a kernel invocation that broke the caller contract.
type ContractError = internalplain.ContractError

// Built-in kernels.
type (
	RectifiedLinear     = internalplain.RectifiedLinear
	Sigmoid             = internalplain.Sigmoid
	HyperbolicTangent   = internalplain.HyperbolicTangent
	SoftRectifiedLinear = internalplain.SoftRectifiedLinear
	FullyConnected      = internalplain.FullyConnected
)

// Contract violations.
var (
	ErrShapeMismatch       = internalplain.ErrShapeMismatch
	ErrUnsupportedAliasing = internalplain.ErrUnsupportedAliasing
	ErrSchemaMismatch      = internalplain.ErrSchemaMismatch
	ErrUnknownLayer        = internalplain.ErrUnknownLayer
	ErrDuplicateKernel     = internalplain.ErrDuplicateKernel
)

// Compile-time checks that the built-in kernels implement Kernel.
var (
	_ Kernel               = RectifiedLinear{}
	_ Kernel               = Sigmoid{}
	_ Kernel               = HyperbolicTangent{}
	_ Kernel               = SoftRectifiedLinear{}
	_ Kernel               = FullyConnected{}
	_ WeightHessianUpdater = FullyConnected{}
)

// NewRegistry returns a registry holding every built-in kernel.
func NewRegistry() *Registry {
	return internalplain.NewRegistry()
}

// NewEmptyRegistry returns a registry with no kernels, for custom layer sets.
func NewEmptyRegistry() *Registry {
	return internalplain.NewEmptyRegistry()
}
