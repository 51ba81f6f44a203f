// Package sequence composes plain kernels into a forward, backward and
// Hessian-diagonal backward pipeline over a linear chain of layers.
package sequence

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/born-ml/plain/internal/backend/plain"
	"github.com/born-ml/plain/internal/config"
	"github.com/born-ml/plain/internal/layer"
)

// Mode selects the backward rule.
type Mode int

// Backward modes.
const (
	Gradient Mode = iota
	Hessian
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Gradient:
		return "gradient"
	case Hessian:
		return "hessian"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Stage is one layer of the chain: its schema and weights.
type Stage struct {
	Schema layer.Schema
	Data   layer.Data
}

type step struct {
	index  int
	schema layer.Schema
	kernel plain.Kernel
	data   layer.Data
	input  layer.Configuration
	output layer.Configuration
}

func (st step) call(entryCount int, cfg *config.Running) plain.Call {
	return plain.Call{
		Schema:     st.schema,
		Data:       st.data,
		Input:      st.input,
		Output:     st.output,
		EntryCount: entryCount,
		Config:     cfg,
	}
}

// Sequence is a validated chain of layers bound to their kernels.
// It is read-only after New; every pass allocates its own buffers.
type Sequence struct {
	steps []step
	input layer.Configuration
	cfg   *config.Running
	log   *logrus.Logger
}

// New resolves a kernel for every stage and checks shapes and weight sizes.
// Any inconsistency aborts construction.
func New(input layer.Configuration, stages []Stage, reg *plain.Registry, cfg *config.Running, log *logrus.Logger) (*Sequence, error) {
	if len(stages) == 0 {
		return nil, errors.New("sequence: no layers")
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("sequence: input: %w", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Sequence{input: input.Clone(), cfg: cfg, log: log}
	cur := s.input
	for i, st := range stages {
		if st.Schema == nil {
			return nil, fmt.Errorf("layer %d: missing schema", i)
		}
		kernel, err := reg.Select(st.Schema)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		out, err := st.Schema.OutputConfiguration(cur)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, st.Schema.Name(), err)
		}
		want := st.Schema.DataSizes(cur)
		if got := st.Data.Sizes(); !slices.Equal(want, got) {
			return nil, fmt.Errorf("layer %d (%s): data sizes %v, want %v: %w",
				i, st.Schema.Name(), got, want, plain.ErrShapeMismatch)
		}

		s.steps = append(s.steps, step{
			index:  i,
			schema: st.Schema,
			kernel: kernel,
			data:   st.Data,
			input:  cur,
			output: out,
		})
		log.WithFields(logrus.Fields{
			"index":    i,
			"layer":    st.Schema.Name(),
			"input":    cur.String(),
			"output":   out.String(),
			"in_place": kernel.InPlaceBackprop(),
		}).Debug("layer bound")
		cur = out
	}
	return s, nil
}

// Input returns the configuration of the first layer's input.
func (s *Sequence) Input() layer.Configuration { return s.input }

// Output returns the configuration of the last layer's output.
func (s *Sequence) Output() layer.Configuration { return s.steps[len(s.steps)-1].output }

// LayerInfo describes one bound layer.
type LayerInfo struct {
	Index   int
	Name    string
	Input   layer.Configuration
	Output  layer.Configuration
	InPlace bool
}

// Layers describes the bound layers in order.
func (s *Sequence) Layers() []LayerInfo {
	out := make([]LayerInfo, len(s.steps))
	for i, st := range s.steps {
		out[i] = LayerInfo{
			Index:   st.index,
			Name:    st.schema.Name(),
			Input:   st.input,
			Output:  st.output,
			InPlace: st.kernel.InPlaceBackprop(),
		}
	}
	return out
}

// Pass holds the activations of one forward pass, needed by Backward.
type Pass struct {
	EntryCount int
	// Input is a copy of the forward input, so the caller may reuse its buffer.
	Input      []float32
	Outputs    [][]float32
}

// Output returns the last layer's output.
func (p *Pass) Output() []float32 { return p.Outputs[len(p.Outputs)-1] }

// inputNeurons returns the forward input of layer i.
func (p *Pass) inputNeurons(i int) []float32 {
	if i == 0 {
		return p.Input
	}
	return p.Outputs[i-1]
}

// Forward runs every layer in order. Each layer's output is complete before
// the next layer reads it. input is copied into the pass and never written.
func (s *Sequence) Forward(input []float32, entryCount int) (*Pass, error) {
	if entryCount <= 0 {
		return nil, fmt.Errorf("forward: invalid entry count %d", entryCount)
	}
	if want := entryCount * s.input.NeuronCount(); len(input) != want {
		return nil, fmt.Errorf("forward: input has %d elements, want %d: %w", len(input), want, plain.ErrShapeMismatch)
	}

	p := &Pass{EntryCount: entryCount, Input: slices.Clone(input), Outputs: make([][]float32, len(s.steps))}
	for i, st := range s.steps {
		output := make([]float32, entryCount*st.output.NeuronCount())
		in := p.inputNeurons(i)
		if err := s.invoke(st, "test", func() {
			st.kernel.Test(st.call(entryCount, s.cfg), in, output)
		}); err != nil {
			return nil, err
		}
		p.Outputs[i] = output
		s.log.WithFields(logrus.Fields{"index": i, "layer": st.schema.Name()}).Debug("forward")
	}
	return p, nil
}

// Result is the outcome of a backward pass.
type Result struct {
	// InputErrors is the error with respect to the sequence input.
	InputErrors []float32
	// WeightHessians holds, in Hessian mode, the accumulated weight Hessian of
	// every layer whose kernel supports it; other entries are nil.
	WeightHessians []layer.Data
	// Buffers is the number of error buffers allocated by the pass.
	Buffers int
}

// Backward walks the layers in reverse, propagating outputErrors with the
// gradient or the Hessian-diagonal rule. outputErrors is only read.
//
// In-place capable kernels receive the same buffer as input and output errors;
// every other kernel gets a distinct buffer.
func (s *Sequence) Backward(p *Pass, outputErrors []float32, mode Mode) (*Result, error) {
	if p == nil || len(p.Outputs) != len(s.steps) {
		return nil, errors.New("backward: pass does not belong to this sequence")
	}
	if mode != Gradient && mode != Hessian {
		return nil, fmt.Errorf("backward: unknown mode %v", mode)
	}
	if want := len(p.Output()); len(outputErrors) != want {
		return nil, fmt.Errorf("backward: output errors have %d elements, want %d: %w", len(outputErrors), want, plain.ErrShapeMismatch)
	}

	pool := newBufferPool()
	res := &Result{}
	if mode == Hessian {
		res.WeightHessians = make([]layer.Data, len(s.steps))
	}

	cur := pool.get(len(outputErrors))
	copy(cur, outputErrors)

	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		c := st.call(p.EntryCount, s.cfg)
		outputErrs := cur

		if mode == Hessian {
			if u, ok := st.kernel.(plain.WeightHessianUpdater); ok {
				h := layer.NewData(st.schema.DataSizes(st.input))
				if err := s.invoke(st, "update_hessian", func() {
					u.UpdateHessian(c, outputErrs, p.inputNeurons(i), h)
				}); err != nil {
					return nil, err
				}
				res.WeightHessians[i] = h
			}
		}

		inputErrs := outputErrs
		if !st.kernel.InPlaceBackprop() {
			inputErrs = pool.get(p.EntryCount * st.input.NeuronCount())
		}

		op, run := "backprop", st.kernel.Backprop
		if mode == Hessian {
			op, run = "backprop_hessian", st.kernel.BackpropHessian
		}
		if err := s.invoke(st, op, func() {
			run(c, inputErrs, outputErrs, p.Outputs[i])
		}); err != nil {
			return nil, err
		}

		if !st.kernel.InPlaceBackprop() {
			pool.put(outputErrs)
		}
		cur = inputErrs
		s.log.WithFields(logrus.Fields{"index": i, "layer": st.schema.Name(), "mode": mode}).Debug("backward")
	}

	res.InputErrors = cur
	res.Buffers = pool.allocated
	return res, nil
}

// invoke runs a kernel operation and turns a contract violation into an error
// naming the layer.
func (s *Sequence) invoke(st step, op string, f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*plain.ContractError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("layer %d (%s) %s: %w", st.index, st.schema.Name(), op, ce)
			s.log.WithError(err).Error("kernel contract violation")
		}
	}()
	f()
	return nil
}
