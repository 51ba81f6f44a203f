package commands

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/plain/internal/backend/plain"
	"github.com/born-ml/plain/internal/layer"
	"github.com/born-ml/plain/internal/logging"
	"github.com/born-ml/plain/internal/sequence"
)

type runOptions struct {
	layers  string
	inputs  int
	entries int
	seed    int64
	scale   float64
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run forward, backward and Hessian passes over a random batch",
		Example: `  plainrun run --layers fc:32,relu,fc:10,sigmoid --inputs 64 --entries 128
  plainrun run --layers relu --inputs 4 --entries 1 --threads 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChain(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.layers, "layers", "fc:16,relu,fc:4,sigmoid", "comma separated layers (relu, sigmoid, tanh, softplus, fc:N)")
	flags.IntVar(&opts.inputs, "inputs", 8, "input neurons per entry")
	flags.IntVar(&opts.entries, "entries", 4, "entries in the batch")
	flags.Int64Var(&opts.seed, "seed", 1, "random seed for inputs and weights")
	flags.Float64Var(&opts.scale, "weight-scale", 0.1, "standard deviation of random weights")
	return cmd
}

func parseLayers(list string) ([]layer.Schema, error) {
	var schemas []layer.Schema
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s, err := layer.Parse(part)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("no layers in %q", list)
	}
	return schemas, nil
}

func runChain(out io.Writer, opts runOptions) error {
	if opts.inputs <= 0 {
		return fmt.Errorf("invalid --inputs %d: must be positive", opts.inputs)
	}
	if opts.entries <= 0 {
		return fmt.Errorf("invalid --entries %d: must be positive", opts.entries)
	}
	schemas, err := parseLayers(opts.layers)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(opts.seed))

	input := layer.Flat(opts.inputs)
	stages := make([]sequence.Stage, len(schemas))
	cur := input
	for i, s := range schemas {
		next, err := s.OutputConfiguration(cur)
		if err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, s.Name(), err)
		}
		data := layer.NewData(s.DataSizes(cur))
		for _, v := range data {
			for j := range v {
				v[j] = float32(rng.NormFloat64() * opts.scale)
			}
		}
		stages[i] = sequence.Stage{Schema: s, Data: data}
		cur = next
	}

	seq, err := sequence.New(input, stages, plain.NewRegistry(), running, logging.Get())
	if err != nil {
		return err
	}

	x := randomBuffer(rng, opts.entries*input.NeuronCount())
	pass, err := seq.Forward(x, opts.entries)
	if err != nil {
		return err
	}
	outputErrors := randomBuffer(rng, len(pass.Output()))
	grad, err := seq.Backward(pass, outputErrors, sequence.Gradient)
	if err != nil {
		return err
	}
	hess, err := seq.Backward(pass, outputErrors, sequence.Hessian)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tLAYER\tINPUT\tOUTPUT\tIN-PLACE")
	for _, l := range seq.Layers() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", l.Index, l.Name, l.Input, l.Output, l.InPlace)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	plan := seq.Plan()
	fmt.Fprintf(out, "threads: %d  entries: %d  error buffers: %d  in-place layers: %d\n",
		running.Threads(), opts.entries, plan.ErrorBuffers, plan.InPlaceLayers)
	fmt.Fprintf(out, "output          %s\n", checksum(pass.Output()))
	fmt.Fprintf(out, "input errors    %s\n", checksum(grad.InputErrors))
	fmt.Fprintf(out, "input hessian   %s\n", checksum(hess.InputErrors))
	for i, h := range hess.WeightHessians {
		if h == nil {
			continue
		}
		fmt.Fprintf(out, "weight hessian  layer %d: %s\n", i, checksum(h[0]))
	}
	return nil
}

func randomBuffer(rng *rand.Rand, n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(rng.NormFloat64())
	}
	return buf
}

// checksum summarizes a buffer as sum and L2 norm.
func checksum(buf []float32) string {
	var sum, sq float64
	for _, v := range buf {
		sum += float64(v)
		sq += float64(v) * float64(v)
	}
	return fmt.Sprintf("n=%d sum=%.6g l2=%.6g", len(buf), sum, math.Sqrt(sq))
}
