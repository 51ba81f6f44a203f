package plain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/plain/backend/plain"
	"github.com/born-ml/plain/layer"
)

func TestPublicRectifier(t *testing.T) {
	reg := plain.NewRegistry()
	k, err := reg.Select(layer.RectifiedLinear{})
	require.NoError(t, err)

	cfg := layer.Flat(4)
	c := plain.Call{Input: cfg, Output: cfg, EntryCount: 1}

	out := make([]float32, 4)
	k.Test(c, []float32{-2, 0, 3.5, -0.1}, out)
	assert.Equal(t, []float32{0, 0, 3.5, 0}, out)

	errs := []float32{1, 1, 1, 1}
	k.Backprop(c, errs, errs, out)
	assert.Equal(t, []float32{0, 0, 1, 0}, errs)
}

func TestPublicParse(t *testing.T) {
	s, err := layer.Parse("fc:3")
	require.NoError(t, err)

	k, err := plain.NewRegistry().Select(s)
	require.NoError(t, err)
	assert.False(t, k.InPlaceBackprop())
	assert.Equal(t, []int{6, 3}, s.DataSizes(layer.Flat(2)))
}
