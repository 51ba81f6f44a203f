package plain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/plain/internal/layer"
)

// contractPanic runs f and returns the *ContractError it panics with.
func contractPanic(t *testing.T, f func()) (ce *ContractError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract panic")
		var ok bool
		ce, ok = r.(*ContractError)
		require.True(t, ok, "panic value %T is not *ContractError", r)
	}()
	f()
	return nil
}

func TestContract_ShapeMismatch(t *testing.T) {
	k := RectifiedLinear{}
	c := flatCall(layer.RectifiedLinear{}, 2, 3, 1)
	ok := make([]float32, 6)

	tests := []struct {
		name string
		role string
		run  func()
	}{
		{"short input", "input", func() { k.Test(c, make([]float32, 5), ok) }},
		{"long output", "output", func() { k.Test(c, ok, make([]float32, 7)) }},
		{"input errors", "input_errors", func() { k.Backprop(c, make([]float32, 4), ok, ok) }},
		{"output errors", "output_errors", func() { k.Backprop(c, make([]float32, 6), make([]float32, 3), ok) }},
		{"output neurons", "output_neurons", func() { k.BackpropHessian(c, make([]float32, 6), make([]float32, 6), nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := contractPanic(t, tt.run)
			assert.ErrorIs(t, ce, ErrShapeMismatch)
			assert.Equal(t, tt.role, ce.Role)
			assert.Contains(t, ce.Error(), "rectified_linear")
		})
	}
}

func TestContract_ElementwiseShapeChange(t *testing.T) {
	c := flatCall(layer.Sigmoid{}, 1, 3, 1)
	c.Output = layer.Flat(4)

	ce := contractPanic(t, func() { Sigmoid{}.Test(c, make([]float32, 3), make([]float32, 4)) })
	assert.ErrorIs(t, ce, ErrShapeMismatch)
}

func TestContract_UnsupportedAliasing(t *testing.T) {
	k := FullyConnected{}
	c := Call{
		Schema:     layer.FullyConnected{OutputNeurons: 2},
		Data:       layer.Data{{1, 0, 0, 1}, {0, 0}},
		Input:      layer.Flat(2),
		Output:     layer.Flat(2),
		EntryCount: 2,
	}
	buf := make([]float32, 4)

	ce := contractPanic(t, func() { k.Backprop(c, buf, buf, make([]float32, 4)) })
	assert.ErrorIs(t, ce, ErrUnsupportedAliasing)

	ce = contractPanic(t, func() { k.BackpropHessian(c, buf[:4], buf[0:4], make([]float32, 4)) })
	assert.ErrorIs(t, ce, ErrUnsupportedAliasing)

	ce = contractPanic(t, func() { k.Test(c, buf, buf) })
	assert.ErrorIs(t, ce, ErrUnsupportedAliasing)
}

func TestContract_PartialOverlap(t *testing.T) {
	kernels := []Kernel{RectifiedLinear{}, Sigmoid{}, HyperbolicTangent{}, SoftRectifiedLinear{}}
	schemas := []layer.Schema{layer.RectifiedLinear{}, layer.Sigmoid{}, layer.NewHyperbolicTangent(), layer.SoftRectifiedLinear{}}

	for i, k := range kernels {
		for _, threads := range []int{1, 2, 4} {
			c := flatCall(schemas[i], 1, 4, threads)
			buf := []float32{1, 2, 3, 4, 5}
			ones := []float32{1, 1, 1, 1}

			ce := contractPanic(t, func() { k.Backprop(c, buf[1:5], buf[0:4], ones) })
			assert.ErrorIs(t, ce, ErrUnsupportedAliasing, "%s threads=%d", k.Name(), threads)
			assert.Equal(t, []float32{1, 2, 3, 4, 5}, buf, "%s must not write before rejecting", k.Name())

			ce = contractPanic(t, func() { k.BackpropHessian(c, buf[0:4], buf[1:5], ones) })
			assert.ErrorIs(t, ce, ErrUnsupportedAliasing)

			ce = contractPanic(t, func() { k.Test(c, buf[0:4], buf[1:5]) })
			assert.ErrorIs(t, ce, ErrUnsupportedAliasing)
			assert.Equal(t, "output aliases input", ce.Role)
		}
	}
}

func TestContract_ErrorsAliasOutputNeurons(t *testing.T) {
	c := flatCall(layer.Sigmoid{}, 1, 4, 1)
	buf := []float32{0.5, 0.5, 0.5, 0.5}

	ce := contractPanic(t, func() { Sigmoid{}.Backprop(c, buf, []float32{1, 1, 1, 1}, buf) })
	assert.ErrorIs(t, ce, ErrUnsupportedAliasing)
	assert.Equal(t, "input_errors aliases output_neurons", ce.Role)
}

func TestContract_IdenticalBuffersAllowedInPlace(t *testing.T) {
	c := flatCall(layer.RectifiedLinear{}, 1, 4, 2)
	buf := []float32{-1, 2, -3, 4}

	assert.NotPanics(t, func() { RectifiedLinear{}.Test(c, buf, buf) })
	assert.Equal(t, []float32{0, 2, 0, 4}, buf)

	errs := []float32{1, 1, 1, 1}
	assert.NotPanics(t, func() { RectifiedLinear{}.Backprop(c, errs, errs, buf) })
	assert.Equal(t, []float32{0, 1, 0, 1}, errs)
}

func TestContract_WeightShape(t *testing.T) {
	c := fcCall(1)
	c.Data = layer.Data{{1, 2, 3}, {0, 0, 0}}

	ce := contractPanic(t, func() { FullyConnected{}.Test(c, make([]float32, 4), make([]float32, 6)) })
	assert.ErrorIs(t, ce, ErrShapeMismatch)
	assert.Equal(t, "weights", ce.Role)

	c.Data = nil
	ce = contractPanic(t, func() { FullyConnected{}.Test(c, make([]float32, 4), make([]float32, 6)) })
	assert.Equal(t, "data", ce.Role)
}

func TestContract_SchemaMismatch(t *testing.T) {
	c := flatCall(layer.Sigmoid{}, 1, 2, 1)

	ce := contractPanic(t, func() { HyperbolicTangent{}.Test(c, make([]float32, 2), make([]float32, 2)) })
	assert.ErrorIs(t, ce, ErrSchemaMismatch)
}

func TestOverlaps(t *testing.T) {
	buf := make([]float32, 10)

	assert.True(t, overlaps(buf, buf))
	assert.True(t, overlaps(buf[0:5], buf[4:8]))
	assert.False(t, overlaps(buf[0:5], buf[5:10]))
	assert.False(t, overlaps(buf, make([]float32, 10)))
	assert.False(t, overlaps(nil, buf))

	assert.True(t, same(buf, buf))
	assert.True(t, same(buf[2:6], buf[2:6]))
	assert.False(t, same(buf[0:4], buf[1:5]))
	assert.False(t, same(buf[0:4], buf[0:5]))
}

func TestContractError_Messages(t *testing.T) {
	err := &ContractError{Op: "sigmoid.test", Role: "input", Want: 4, Got: 3, Err: ErrShapeMismatch}
	assert.Equal(t, "sigmoid.test: input has 3 elements, want 4: "+ErrShapeMismatch.Error(), err.Error())
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	err = &ContractError{Op: "fully_connected.backprop", Err: ErrUnsupportedAliasing}
	assert.Equal(t, "fully_connected.backprop: "+ErrUnsupportedAliasing.Error(), err.Error())
}
