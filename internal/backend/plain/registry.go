package plain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/born-ml/plain/internal/layer"
)

// Registry maps layer identities to kernels.
//
// A registry is filled once and then only read; it is safe for concurrent lookups
// after the last Register call.
type Registry struct {
	kernels map[uuid.UUID]Kernel
}

// NewRegistry returns a registry holding every built-in kernel.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for _, k := range []Kernel{
		RectifiedLinear{},
		Sigmoid{},
		HyperbolicTangent{},
		SoftRectifiedLinear{},
		FullyConnected{},
	} {
		if err := r.Register(k); err != nil {
			panic(fmt.Sprintf("plain: %v", err))
		}
	}
	return r
}

// NewEmptyRegistry returns a registry with no kernels.
func NewEmptyRegistry() *Registry {
	return &Registry{kernels: make(map[uuid.UUID]Kernel)}
}

// Register adds k under its ID.
func (r *Registry) Register(k Kernel) error {
	if prev, ok := r.kernels[k.ID()]; ok {
		return fmt.Errorf("%s (%s, held by %s): %w", k.Name(), k.ID(), prev.Name(), ErrDuplicateKernel)
	}
	r.kernels[k.ID()] = k
	return nil
}

// Lookup returns the kernel registered for id.
func (r *Registry) Lookup(id uuid.UUID) (Kernel, error) {
	k, ok := r.kernels[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownLayer)
	}
	return k, nil
}

// Select returns the kernel for the schema's layer kind.
func (r *Registry) Select(s layer.Schema) (Kernel, error) {
	k, err := r.Lookup(s.ID())
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", s.Name(), err)
	}
	return k, nil
}

// Kernels returns every registered kernel sorted by name.
func (r *Registry) Kernels() []Kernel {
	out := make([]Kernel, 0, len(r.kernels))
	for _, k := range r.kernels {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
