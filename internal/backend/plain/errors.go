package plain

import (
	"errors"
	"fmt"
)

// Contract violations. They are deterministic and never worth retrying.
var (
	ErrShapeMismatch       = errors.New("buffer length does not match layer configuration")
	ErrUnsupportedAliasing = errors.New("aliased buffers passed to a kernel without in-place support")
	ErrSchemaMismatch      = errors.New("schema does not belong to kernel")
	ErrUnknownLayer        = errors.New("no kernel registered for layer")
	ErrDuplicateKernel     = errors.New("kernel already registered for layer")
)

// ContractError describes a kernel invocation that broke the caller contract.
// Kernels panic with *ContractError; drivers recover it and abort the pass.
type ContractError struct {
	Op   string // Kernel operation, e.g. "sigmoid.backprop".
	Role string // Buffer role, e.g. "input_errors".
	Want int    // Expected element count (shape mismatch only).
	Got  int    // Actual element count (shape mismatch only).
	Err  error  // One of the sentinel errors above.
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	switch {
	case errors.Is(e.Err, ErrShapeMismatch):
		return fmt.Sprintf("%s: %s has %d elements, want %d: %v", e.Op, e.Role, e.Got, e.Want, e.Err)
	case e.Role != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Role, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the sentinel error.
func (e *ContractError) Unwrap() error {
	return e.Err
}
