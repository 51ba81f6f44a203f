package plain

import (
	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"github.com/born-ml/plain/internal/layer"
)

// HyperbolicTangent computes y = A·tanh(B·x). Its derivative in terms of the
// output is (B/A)(A² - y²).
//
// A and B come from the layer.HyperbolicTangent schema of the call.
type HyperbolicTangent struct{}

func (HyperbolicTangent) ID() uuid.UUID         { return layer.HyperbolicTangentID }
func (HyperbolicTangent) Name() string          { return "hyperbolic_tangent" }
func (HyperbolicTangent) InPlaceBackprop() bool { return true }

// Test writes A·tanh(B·x) for every input element.
func (HyperbolicTangent) Test(c Call, input, output []float32) {
	c.checkTest("hyperbolic_tangent.test", true, true, input, output)
	a, b := tanhConstants("hyperbolic_tangent.test", c.Schema)
	mapElements(c, input, output, func(x float32) float32 {
		return a * math32.Tanh(b*x)
	})
}

// Backprop scales each output error by (B/A)(A² - y²).
func (k HyperbolicTangent) Backprop(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	c.checkBackprop("hyperbolic_tangent.backprop", k, true, inputErrors, outputErrors, outputNeurons)
	scaleErrors(c, inputErrors, outputErrors, outputNeurons, tanhDerivative(tanhConstants("hyperbolic_tangent.backprop", c.Schema)), false)
}

// BackpropHessian scales each output error by ((B/A)(A² - y²))².
func (k HyperbolicTangent) BackpropHessian(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	c.checkBackprop("hyperbolic_tangent.backprop_hessian", k, true, inputErrors, outputErrors, outputNeurons)
	scaleErrors(c, inputErrors, outputErrors, outputNeurons, tanhDerivative(tanhConstants("hyperbolic_tangent.backprop_hessian", c.Schema)), true)
}

func tanhConstants(op string, s layer.Schema) (scale, steepness float32) {
	switch l := s.(type) {
	case layer.HyperbolicTangent:
		return l.Scale, l.Steepness
	case *layer.HyperbolicTangent:
		return l.Scale, l.Steepness
	default:
		panic(&ContractError{Op: op, Role: "schema", Err: ErrSchemaMismatch})
	}
}

func tanhDerivative(a, b float32) derivative {
	k := b / a
	return func(y float32) float32 {
		return k * (a - y) * (a + y)
	}
}
