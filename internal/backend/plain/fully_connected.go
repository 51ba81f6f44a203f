package plain

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/plain/internal/layer"
	"github.com/born-ml/plain/internal/parallel"
)

// FullyConnected computes y = W·x + b for every entry of the batch.
//
// Weights are Data[0], row-major [outputNeurons][inputNeurons]; biases are Data[1].
// Input and output errors have different shapes, so backprop needs a distinct
// buffer: the kernel is not in-place capable.
type FullyConnected struct{}

func (FullyConnected) ID() uuid.UUID         { return layer.FullyConnectedID }
func (FullyConnected) Name() string          { return "fully_connected" }
func (FullyConnected) InPlaceBackprop() bool { return false }

// Test computes output = input·Wᵀ + b, one BLAS call per chunk of entries.
func (k FullyConnected) Test(c Call, input, output []float32) {
	const op = "fully_connected.test"
	c.checkTest(op, false, false, input, output)
	weights, biases := k.data(op, c)
	inN, outN := c.Input.NeuronCount(), c.Output.NeuronCount()
	w := blas32.General{Rows: outN, Cols: inN, Stride: inN, Data: weights}

	parallel.ForRange(c.EntryCount, func(s, e int) {
		for entry := s; entry < e; entry++ {
			copy(output[entry*outN:(entry+1)*outN], biases)
		}
		x := blas32.General{Rows: e - s, Cols: inN, Stride: inN, Data: input[s*inN : e*inN]}
		y := blas32.General{Rows: e - s, Cols: outN, Stride: outN, Data: output[s*outN : e*outN]}
		blas32.Gemm(blas.NoTrans, blas.Trans, 1, x, w, 1, y)
	}, c.entryParallel())
}

// Backprop computes inputErrors = outputErrors·W.
func (k FullyConnected) Backprop(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	const op = "fully_connected.backprop"
	c.checkBackprop(op, k, false, inputErrors, outputErrors, outputNeurons)
	weights, _ := k.data(op, c)
	inN, outN := c.Input.NeuronCount(), c.Output.NeuronCount()
	w := blas32.General{Rows: outN, Cols: inN, Stride: inN, Data: weights}

	parallel.ForRange(c.EntryCount, func(s, e int) {
		eo := blas32.General{Rows: e - s, Cols: outN, Stride: outN, Data: outputErrors[s*outN : e*outN]}
		ei := blas32.General{Rows: e - s, Cols: inN, Stride: inN, Data: inputErrors[s*inN : e*inN]}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, eo, w, 0, ei)
	}, c.entryParallel())
}

// BackpropHessian computes inputErrors = outputErrors·(W∘W).
func (k FullyConnected) BackpropHessian(c Call, inputErrors, outputErrors, outputNeurons []float32) {
	const op = "fully_connected.backprop_hessian"
	c.checkBackprop(op, k, false, inputErrors, outputErrors, outputNeurons)
	weights, _ := k.data(op, c)
	inN, outN := c.Input.NeuronCount(), c.Output.NeuronCount()

	parallel.ForRange(len(inputErrors), func(s, e int) {
		for idx := s; idx < e; idx++ {
			entry, i := idx/inN, idx%inN
			eo := outputErrors[entry*outN : (entry+1)*outN]
			var sum float32
			for o, g := range eo {
				w := weights[o*inN+i]
				sum += g * w * w
			}
			inputErrors[idx] = sum
		}
	}, c.parallel())
}

// UpdateHessian accumulates, over the batch, e[o]·x[i]² into the weight Hessian
// and e[o] into the bias Hessian. Each worker owns whole output neurons.
func (k FullyConnected) UpdateHessian(c Call, outputErrors, inputNeurons []float32, hessian layer.Data) {
	const op = "fully_connected.update_hessian"
	checkLen(op, "output_errors", outputErrors, c.outputElems())
	checkLen(op, "input_neurons", inputNeurons, c.inputElems())
	inN, outN := c.Input.NeuronCount(), c.Output.NeuronCount()
	if len(hessian) != 2 {
		panic(&ContractError{Op: op, Role: "hessian", Want: 2, Got: len(hessian), Err: ErrShapeMismatch})
	}
	checkLen(op, "hessian weights", hessian[0], outN*inN)
	checkLen(op, "hessian biases", hessian[1], outN)

	hw, hb := hessian[0], hessian[1]
	parallel.ForRange(outN, func(s, e int) {
		for o := s; o < e; o++ {
			row := hw[o*inN : (o+1)*inN]
			for entry := 0; entry < c.EntryCount; entry++ {
				g := outputErrors[entry*outN+o]
				hb[o] += g
				x := inputNeurons[entry*inN : (entry+1)*inN]
				for i, v := range x {
					row[i] += g * v * v
				}
			}
		}
	}, c.parallel().WithMinChunk(1))
}

func (FullyConnected) data(op string, c Call) (weights, biases []float32) {
	if len(c.Data) != 2 {
		panic(&ContractError{Op: op, Role: "data", Want: 2, Got: len(c.Data), Err: ErrShapeMismatch})
	}
	inN, outN := c.Input.NeuronCount(), c.Output.NeuronCount()
	checkLen(op, "weights", c.Data[0], outN*inN)
	checkLen(op, "biases", c.Data[1], outN)
	return c.Data[0], c.Data[1]
}

// entryParallel splits work by entry rather than by element.
func (c Call) entryParallel() parallel.Config {
	return c.parallel().WithMinChunk(1)
}
