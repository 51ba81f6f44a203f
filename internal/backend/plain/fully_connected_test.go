package plain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/plain/internal/config"
	"github.com/born-ml/plain/internal/layer"
)

// fcCall is a 2 -> 3 fully connected layer over 2 entries.
func fcCall(threads int) Call {
	return Call{
		Schema: layer.FullyConnected{OutputNeurons: 3},
		Data: layer.Data{
			{1, 2, 3, 4, 5, 6},
			{0.5, -1, 0},
		},
		Input:      layer.Flat(2),
		Output:     layer.Flat(3),
		EntryCount: 2,
		Config:     &config.Running{ThreadCount: threads, MinChunkSize: 1},
	}
}

func TestFullyConnected_Test(t *testing.T) {
	k := FullyConnected{}
	c := fcCall(2)

	output := make([]float32, 6)
	k.Test(c, []float32{1, -1, 2, 0.5}, output)

	assert.InDeltaSlice(t, []float32{-0.5, -2, -1, 3.5, 7, 13}, output, 1e-6)
}

func TestFullyConnected_Backprop(t *testing.T) {
	k := FullyConnected{}
	require.False(t, k.InPlaceBackprop())
	c := fcCall(2)

	outputErrors := []float32{1, 0, -1, 0.5, 1, 2}
	inputErrors := make([]float32, 4)
	k.Backprop(c, inputErrors, outputErrors, make([]float32, 6))

	assert.InDeltaSlice(t, []float32{-4, -4, 13.5, 17}, inputErrors, 1e-6)
}

func TestFullyConnected_BackpropHessian(t *testing.T) {
	k := FullyConnected{}
	c := fcCall(2)

	outputErrors := []float32{1, 0, -1, 0.5, 1, 2}
	inputErrors := make([]float32, 4)
	k.BackpropHessian(c, inputErrors, outputErrors, make([]float32, 6))

	assert.InDeltaSlice(t, []float32{-24, -32, 59.5, 90}, inputErrors, 1e-6)
}

func TestFullyConnected_UpdateHessian(t *testing.T) {
	k := FullyConnected{}
	c := fcCall(3)

	hessian := layer.NewData([]int{6, 3})
	outputErrors := []float32{1, 0, -1, 0.5, 1, 2}
	inputNeurons := []float32{1, -1, 2, 0.5}
	k.UpdateHessian(c, outputErrors, inputNeurons, hessian)

	assert.InDeltaSlice(t, []float32{3, 1.125, 4, 0.25, 7, -0.5}, hessian[0], 1e-6)
	assert.InDeltaSlice(t, []float32{1.5, 1, 1}, hessian[1], 1e-6)

	// Accumulates.
	k.UpdateHessian(c, outputErrors, inputNeurons, hessian)
	assert.InDeltaSlice(t, []float32{3, 2, 2}, hessian[1], 1e-6)
}

func TestFullyConnected_ThreadCountInvariant(t *testing.T) {
	k := FullyConnected{}
	rng := rand.New(rand.NewSource(9))
	entries, in, out := 7, 13, 5

	data := layer.Data{randomBuffer(rng, in*out), randomBuffer(rng, out)}
	input := randomBuffer(rng, entries*in)
	outputErrors := randomBuffer(rng, entries*out)

	var want [][]float32
	for _, threads := range []int{1, 2, entries + 3} {
		c := Call{
			Schema:     layer.FullyConnected{OutputNeurons: out},
			Data:       data,
			Input:      layer.Flat(in),
			Output:     layer.Flat(out),
			EntryCount: entries,
			Config:     &config.Running{ThreadCount: threads, MinChunkSize: 1},
		}
		output := make([]float32, entries*out)
		grad := make([]float32, entries*in)
		hess := make([]float32, entries*in)
		k.Test(c, input, output)
		k.Backprop(c, grad, outputErrors, output)
		k.BackpropHessian(c, hess, outputErrors, output)

		got := [][]float32{output, grad, hess}
		if want == nil {
			want = got
			continue
		}
		for i := range got {
			assert.InDeltaSlice(t, want[i], got[i], 1e-5, "threads=%d buffer %d", threads, i)
		}
	}
}

func TestFullyConnected_SpatialInput(t *testing.T) {
	// A 1x2x2 input is flattened per entry.
	k := FullyConnected{}
	c := Call{
		Schema:     layer.FullyConnected{OutputNeurons: 1},
		Data:       layer.Data{{1, 1, 1, 1}, {0}},
		Input:      layer.Configuration{FeatureMaps: 1, Dimensions: []int{2, 2}},
		Output:     layer.Flat(1),
		EntryCount: 2,
	}
	output := make([]float32, 2)
	k.Test(c, []float32{1, 2, 3, 4, -1, -1, -1, -1}, output)
	assert.InDeltaSlice(t, []float32{10, -4}, output, 1e-6)
}
