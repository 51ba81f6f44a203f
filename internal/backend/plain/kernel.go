// Package plain implements the CPU ("plain") layer kernels: forward, backward and
// Hessian-diagonal backward transforms over flat batched buffers.
//
// Every buffer handed to a kernel is a flat []float32 of
// EntryCount × NeuronCount elements for its role. Kernels keep no state between
// calls, never log and never allocate in element-wise paths.
package plain

import (
	"unsafe"

	"github.com/google/uuid"

	"github.com/born-ml/plain/internal/config"
	"github.com/born-ml/plain/internal/layer"
	"github.com/born-ml/plain/internal/parallel"
)

// Kernel computes one layer kind.
type Kernel interface {
	// ID returns the layer kind this kernel computes.
	ID() uuid.UUID

	// Name returns the layer kind name.
	Name() string

	// InPlaceBackprop reports whether Backprop and BackpropHessian accept
	// inputErrors and outputErrors being the same memory. Constant per kernel type.
	InPlaceBackprop() bool

	// Test runs the forward pass, writing one value per element of output.
	Test(c Call, input, output []float32)

	// Backprop writes into inputErrors the error propagated through the layer's
	// local derivative from outputErrors, using the forward output values.
	Backprop(c Call, inputErrors, outputErrors, outputNeurons []float32)

	// BackpropHessian is Backprop for the Hessian diagonal: it propagates the
	// squared local derivative.
	BackpropHessian(c Call, inputErrors, outputErrors, outputNeurons []float32)
}

// WeightHessianUpdater is implemented by kernels of layers with weights.
type WeightHessianUpdater interface {
	// UpdateHessian accumulates the diagonal Hessian of the weights into hessian,
	// which has the same layout as the layer data.
	UpdateHessian(c Call, outputErrors, inputNeurons []float32, hessian layer.Data)
}

// Call carries everything a kernel needs besides its buffers.
type Call struct {
	Schema     layer.Schema
	Data       layer.Data
	Input      layer.Configuration
	Output     layer.Configuration
	EntryCount int
	Config     *config.Running
}

func (c Call) parallel() parallel.Config {
	if c.Config == nil {
		return parallel.DefaultConfig()
	}
	return c.Config.Parallel()
}

func (c Call) inputElems() int  { return c.EntryCount * c.Input.NeuronCount() }
func (c Call) outputElems() int { return c.EntryCount * c.Output.NeuronCount() }

func checkLen(op, role string, buf []float32, want int) {
	if len(buf) != want {
		panic(&ContractError{Op: op, Role: role, Want: want, Got: len(buf), Err: ErrShapeMismatch})
	}
}

// overlaps reports whether a and b share any memory.
func overlaps(a, b []float32) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	const size = unsafe.Sizeof(float32(0))
	aStart := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	bStart := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return aStart < bStart+uintptr(len(b))*size && bStart < aStart+uintptr(len(a))*size
}

// same reports whether a and b are exactly the same memory.
func same(a, b []float32) bool {
	return len(a) == len(b) && unsafe.SliceData(a) == unsafe.SliceData(b)
}

// checkAlias panics unless a and b are disjoint, or identical when identical is allowed.
// Partially overlapping buffers are never accepted.
func checkAlias(op, role string, a, b []float32, allowIdentical bool) {
	if !overlaps(a, b) || allowIdentical && same(a, b) {
		return
	}
	panic(&ContractError{Op: op, Role: role, Err: ErrUnsupportedAliasing})
}

// checkTest validates forward buffers and returns the output element count.
func (c Call) checkTest(op string, elementwise, allowAlias bool, input, output []float32) int {
	if elementwise && c.Input.NeuronCount() != c.Output.NeuronCount() {
		panic(&ContractError{Op: op, Role: "output", Want: c.Input.NeuronCount(), Got: c.Output.NeuronCount(), Err: ErrShapeMismatch})
	}
	checkLen(op, "input", input, c.inputElems())
	checkLen(op, "output", output, c.outputElems())
	checkAlias(op, "output aliases input", input, output, allowAlias)
	return len(output)
}

// checkBackprop validates backward buffers for kernel k and returns the
// input error element count.
func (c Call) checkBackprop(op string, k Kernel, elementwise bool, inputErrors, outputErrors, outputNeurons []float32) int {
	if elementwise && c.Input.NeuronCount() != c.Output.NeuronCount() {
		panic(&ContractError{Op: op, Role: "output", Want: c.Input.NeuronCount(), Got: c.Output.NeuronCount(), Err: ErrShapeMismatch})
	}
	checkLen(op, "input_errors", inputErrors, c.inputElems())
	checkLen(op, "output_errors", outputErrors, c.outputElems())
	checkLen(op, "output_neurons", outputNeurons, c.outputElems())
	checkAlias(op, "input_errors aliases output_errors", inputErrors, outputErrors, k.InPlaceBackprop())
	checkAlias(op, "input_errors aliases output_neurons", inputErrors, outputNeurons, false)
	return len(inputErrors)
}
