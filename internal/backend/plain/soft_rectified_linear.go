package plain

import (
	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"github.com/born-ml/plain/internal/layer"
)

// SoftRectifiedLinear computes the softplus y = log(1 + exp(x)).
// Its derivative is sigmoid(x), which in terms of the output is 1 - exp(-y).
type SoftRectifiedLinear struct{}

func (SoftRectifiedLinear) ID() uuid.UUID         { return layer.SoftRectifiedLinearID }
func (SoftRectifiedLinear) Name() string          { return "soft_rectified_linear" }
func (SoftRectifiedLinear) InPlaceBackprop() bool { return true }

// Test writes the softplus of every input element.
func (SoftRectifiedLinear) Test(c Call, input, output []float32) {
	c.checkTest("soft_rectified_linear.test", true, true, input, output)
	mapElements(c, input, output, softplus)
}

// Backprop scales each output error by 1 - exp(-y).
func (k SoftRectifiedLinear) Backprop(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	c.checkBackprop("soft_rectified_linear.backprop", k, true, inputErrors, outputErrors, outputNeurons)
	scaleErrors(c, inputErrors, outputErrors, outputNeurons, softplusDerivative, false)
}

// BackpropHessian scales each output error by (1 - exp(-y))².
func (k SoftRectifiedLinear) BackpropHessian(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	c.checkBackprop("soft_rectified_linear.backprop_hessian", k, true, inputErrors, outputErrors, outputNeurons)
	scaleErrors(c, inputErrors, outputErrors, outputNeurons, softplusDerivative, true)
}

// softplus uses x + log(1 + exp(-x)) for positive x to avoid overflow.
func softplus(x float32) float32 {
	if x > 0 {
		return x + math32.Log(1+math32.Exp(-x))
	}
	return math32.Log(1 + math32.Exp(x))
}

func softplusDerivative(y float32) float32 {
	return 1 - math32.Exp(-y)
}
