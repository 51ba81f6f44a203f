package plain

import "github.com/born-ml/plain/internal/parallel"

// derivative returns the local derivative of an activation from its output value.
type derivative func(y float32) float32

// mapElements runs output[i] = f(input[i]) over the whole buffer.
func mapElements(c Call, input, output []float32, f func(x float32) float32) {
	parallel.ForRange(len(output), func(s, e int) {
		for i := s; i < e; i++ {
			output[i] = f(input[i])
		}
	}, c.parallel())
}

// scaleErrors runs inputErrors[i] = outputErrors[i] * d(y[i]), squaring d for the
// Hessian pass. Each index is read before it is written, so inputErrors may alias
// outputErrors.
func scaleErrors(c Call, inputErrors, outputErrors, outputNeurons []float32, d derivative, squared bool) {
	parallel.ForRange(len(inputErrors), func(s, e int) {
		if squared {
			for i := s; i < e; i++ {
				g := d(outputNeurons[i])
				inputErrors[i] = outputErrors[i] * g * g
			}
			return
		}
		for i := s; i < e; i++ {
			inputErrors[i] = outputErrors[i] * d(outputNeurons[i])
		}
	}, c.parallel())
}
