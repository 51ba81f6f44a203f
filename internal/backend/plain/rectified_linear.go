package plain

import (
	"github.com/google/uuid"

	"github.com/born-ml/plain/internal/layer"
	"github.com/born-ml/plain/internal/parallel"
)

// RectifiedLinear computes y = max(x, 0).
//
// Backward gates the downstream error with the output: zero where y == 0,
// passthrough elsewhere. The gate is 0 or 1, so the Hessian pass is identical.
type RectifiedLinear struct{}

func (RectifiedLinear) ID() uuid.UUID         { return layer.RectifiedLinearID }
func (RectifiedLinear) Name() string          { return "rectified_linear" }
func (RectifiedLinear) InPlaceBackprop() bool { return true }

// Test applies max(x, 0). NaN inputs stay NaN.
func (k RectifiedLinear) Test(c Call, input, output []float32) {
	n := c.checkTest("rectified_linear.test", true, true, input, output)
	parallel.ForRange(n, func(s, e int) {
		for i := s; i < e; i++ {
			output[i] = max(input[i], 0)
		}
	}, c.parallel())
}

// Backprop zeroes the error where the output is zero, whatever the downstream
// error holds (NaN and Inf included), and copies it bit for bit elsewhere.
func (k RectifiedLinear) Backprop(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	n := c.checkBackprop("rectified_linear.backprop", k, true, inputErrors, outputErrors, outputNeurons)
	gate(c, n, inputErrors, outputErrors, outputNeurons)
}

// BackpropHessian is the same mask as Backprop.
func (k RectifiedLinear) BackpropHessian(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	n := c.checkBackprop("rectified_linear.backprop_hessian", k, true, inputErrors, outputErrors, outputNeurons)
	gate(c, n, inputErrors, outputErrors, outputNeurons)
}

func gate(c Call, n int, inputErrors, outputErrors, outputNeurons []float32) {
	parallel.ForRange(n, func(s, e int) {
		for i := s; i < e; i++ {
			if outputNeurons[i] == 0 {
				inputErrors[i] = 0
			} else {
				inputErrors[i] = outputErrors[i]
			}
		}
	}, c.parallel())
}
