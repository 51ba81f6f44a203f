package plain

import (
	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"github.com/born-ml/plain/internal/layer"
)

// Sigmoid computes y = 1 / (1 + exp(-x)) with derivative y(1-y).
type Sigmoid struct{}

func (Sigmoid) ID() uuid.UUID         { return layer.SigmoidID }
func (Sigmoid) Name() string          { return "sigmoid" }
func (Sigmoid) InPlaceBackprop() bool { return true }

// Test writes the logistic of every input element.
func (Sigmoid) Test(c Call, input, output []float32) {
	c.checkTest("sigmoid.test", true, true, input, output)
	mapElements(c, input, output, func(x float32) float32 {
		return 1 / (1 + math32.Exp(-x))
	})
}

// Backprop scales each output error by y(1-y).
func (k Sigmoid) Backprop(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	c.checkBackprop("sigmoid.backprop", k, true, inputErrors, outputErrors, outputNeurons)
	scaleErrors(c, inputErrors, outputErrors, outputNeurons, sigmoidDerivative, false)
}

// BackpropHessian scales each output error by (y(1-y))².
func (k Sigmoid) BackpropHessian(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	c.checkBackprop("sigmoid.backprop_hessian", k, true, inputErrors, outputErrors, outputNeurons)
	scaleErrors(c, inputErrors, outputErrors, outputNeurons, sigmoidDerivative, true)
}

func sigmoidDerivative(y float32) float32 {
	return y * (1 - y)
}
