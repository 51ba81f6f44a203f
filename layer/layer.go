// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layer provides the public layer descriptions: identities, shapes,
// weight data and the built-in layer schemas.
//
// Example:
//
//	in := layer.Flat(784)
//	fc := layer.FullyConnected{OutputNeurons: 10}
//	out, _ := fc.OutputConfiguration(in) // 10 neurons
//	data := layer.NewData(fc.DataSizes(in))
package layer

import (
	"github.com/born-ml/plain/internal/layer"
)

// Configuration describes the per-entry shape of one tensor role.
type Configuration = layer.Configuration

// Data holds the weight vectors of one layer instance.
type Data = layer.Data

// Schema describes one layer instance: its kind and hyperparameters.
type Schema = layer.Schema

// Built-in layer schemas.
type (
	RectifiedLinear     = layer.RectifiedLinear
	Sigmoid             = layer.Sigmoid
	HyperbolicTangent   = layer.HyperbolicTangent
	SoftRectifiedLinear = layer.SoftRectifiedLinear
	FullyConnected      = layer.FullyConnected
)

// Layer identities.
var (
	RectifiedLinearID     = layer.RectifiedLinearID
	SigmoidID             = layer.SigmoidID
	HyperbolicTangentID   = layer.HyperbolicTangentID
	SoftRectifiedLinearID = layer.SoftRectifiedLinearID
	FullyConnectedID      = layer.FullyConnectedID
)

// Flat returns a configuration of n neurons with no spatial dimensions.
func Flat(n int) Configuration {
	return layer.Flat(n)
}

// NewData allocates zeroed weight vectors of the given sizes.
func NewData(sizes []int) Data {
	return layer.NewData(sizes)
}

// NewHyperbolicTangent returns a tanh layer with the default constants.
func NewHyperbolicTangent() HyperbolicTangent {
	return layer.NewHyperbolicTangent()
}

// Parse builds a schema from its kind name, e.g. "relu" or "fc:10".
func Parse(kind string) (Schema, error) {
	return layer.Parse(kind)
}
