package layer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Stable identities of the built-in layer kinds.
var (
	RectifiedLinearID     = uuid.MustParse("7f6a2e0c-3a53-4c1e-9a3b-5d8c4c0e2b71")
	SigmoidID             = uuid.MustParse("d3c1b4a5-9e1f-4f0a-8b6d-2c7e5a1f9034")
	HyperbolicTangentID   = uuid.MustParse("2b8e6f43-7c5d-4e9a-a1b2-c3d4e5f60718")
	SoftRectifiedLinearID = uuid.MustParse("91e4d7c2-6b3a-4f58-8e0d-1a2b3c4d5e6f")
	FullyConnectedID      = uuid.MustParse("c5a0f8e1-2d4b-4a6c-9e7f-0b1c2d3e4f50")
)

// Schema is the description of one layer instance: its kind and hyperparameters.
type Schema interface {
	// ID returns the identity of the layer kind, shared by all instances.
	ID() uuid.UUID

	// Name returns a short human-readable name of the layer kind.
	Name() string

	// OutputConfiguration derives the output shape from the input shape.
	OutputConfiguration(in Configuration) (Configuration, error)

	// DataSizes returns the expected length of each weight vector for the input shape.
	// Weightless layers return nil.
	DataSizes(in Configuration) []int
}

// elementwise is embedded by layers whose output shape equals their input shape.
type elementwise struct{}

func (elementwise) OutputConfiguration(in Configuration) (Configuration, error) {
	if err := in.Validate(); err != nil {
		return Configuration{}, err
	}
	return in.Clone(), nil
}

func (elementwise) DataSizes(Configuration) []int { return nil }

// RectifiedLinear is the rectifier: y = max(x, 0).
type RectifiedLinear struct{ elementwise }

func (RectifiedLinear) ID() uuid.UUID { return RectifiedLinearID }
func (RectifiedLinear) Name() string  { return "rectified_linear" }

// Sigmoid is the logistic function: y = 1 / (1 + exp(-x)).
type Sigmoid struct{ elementwise }

func (Sigmoid) ID() uuid.UUID { return SigmoidID }
func (Sigmoid) Name() string  { return "sigmoid" }

// Default hyperbolic tangent constants (LeCun's scaled tanh).
const (
	DefaultTanhScale     = 1.7159
	DefaultTanhSteepness = 0.666666
)

// HyperbolicTangent is the scaled tanh: y = Scale * tanh(Steepness * x).
type HyperbolicTangent struct {
	elementwise
	Scale     float32
	Steepness float32
}

// NewHyperbolicTangent returns a tanh layer with the default constants.
func NewHyperbolicTangent() HyperbolicTangent {
	return HyperbolicTangent{Scale: DefaultTanhScale, Steepness: DefaultTanhSteepness}
}

func (HyperbolicTangent) ID() uuid.UUID { return HyperbolicTangentID }
func (HyperbolicTangent) Name() string  { return "hyperbolic_tangent" }

// OutputConfiguration returns the input shape; the scale must be non-zero.
func (l HyperbolicTangent) OutputConfiguration(in Configuration) (Configuration, error) {
	if l.Scale == 0 {
		return Configuration{}, fmt.Errorf("hyperbolic_tangent: scale must be non-zero")
	}
	return l.elementwise.OutputConfiguration(in)
}

// SoftRectifiedLinear is the softplus: y = log(1 + exp(x)).
type SoftRectifiedLinear struct{ elementwise }

func (SoftRectifiedLinear) ID() uuid.UUID { return SoftRectifiedLinearID }
func (SoftRectifiedLinear) Name() string  { return "soft_rectified_linear" }

// FullyConnected maps every input neuron of an entry to OutputNeurons outputs.
//
// Data layout: Data[0] holds weights row-major as [OutputNeurons][inputNeurons],
// Data[1] holds OutputNeurons biases.
type FullyConnected struct {
	OutputNeurons int
}

func (FullyConnected) ID() uuid.UUID { return FullyConnectedID }
func (FullyConnected) Name() string  { return "fully_connected" }

// OutputConfiguration returns a flat configuration of OutputNeurons.
func (l FullyConnected) OutputConfiguration(in Configuration) (Configuration, error) {
	if err := in.Validate(); err != nil {
		return Configuration{}, err
	}
	if l.OutputNeurons <= 0 {
		return Configuration{}, fmt.Errorf("fully_connected: invalid output neuron count %d", l.OutputNeurons)
	}
	return Flat(l.OutputNeurons), nil
}

// DataSizes returns the weight and bias vector lengths.
func (l FullyConnected) DataSizes(in Configuration) []int {
	return []int{l.OutputNeurons * in.NeuronCount(), l.OutputNeurons}
}

// Parse builds a schema from its kind name. Fully connected layers take
// their output size as "fully_connected:N".
func Parse(kind string) (Schema, error) {
	switch kind {
	case "rectified_linear", "relu":
		return RectifiedLinear{}, nil
	case "sigmoid":
		return Sigmoid{}, nil
	case "hyperbolic_tangent", "tanh":
		return NewHyperbolicTangent(), nil
	case "soft_rectified_linear", "softplus":
		return SoftRectifiedLinear{}, nil
	}

	for _, prefix := range []string{"fully_connected:", "fc:"} {
		size, ok := strings.CutPrefix(kind, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(size)
		if err != nil {
			return nil, fmt.Errorf("layer %q: invalid output neuron count %q", kind, size)
		}
		return FullyConnected{OutputNeurons: n}, nil
	}
	return nil, fmt.Errorf("unknown layer %q", kind)
}
