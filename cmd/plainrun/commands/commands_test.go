package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestKernels(t *testing.T) {
	out, err := execute(t, "kernels")
	require.NoError(t, err)
	for _, name := range []string{"rectified_linear", "sigmoid", "hyperbolic_tangent", "soft_rectified_linear", "fully_connected"} {
		assert.Contains(t, out, name)
	}
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "--layers", "fc:6,relu,tanh,fc:3,softplus", "--inputs", "5", "--entries", "3", "--threads", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "threads: 2")
	assert.Contains(t, out, "error buffers: 3")
	assert.Contains(t, out, "weight hessian  layer 0")
	assert.Contains(t, out, "weight hessian  layer 3")
}

func TestRun_Deterministic(t *testing.T) {
	first, err := execute(t, "run", "--layers", "relu,sigmoid", "--threads", "1", "--seed", "7")
	require.NoError(t, err)
	second, err := execute(t, "run", "--layers", "relu,sigmoid", "--threads", "4", "--seed", "7")
	require.NoError(t, err)

	// Only the thread line differs.
	assert.Equal(t, tail(first), tail(second))
}

func TestRun_BadLayer(t *testing.T) {
	_, err := execute(t, "run", "--layers", "relu,dropout")
	assert.Error(t, err)

	_, err = execute(t, "run", "--layers", " , ")
	assert.Error(t, err)
}

func TestRun_InvalidSizes(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative inputs", []string{"--layers", "fc:3", "--inputs=-2"}},
		{"zero inputs", []string{"--layers", "relu", "--inputs", "0"}},
		{"negative entries", []string{"--layers", "relu", "--entries=-1"}},
		{"negative layer width", []string{"--layers", "fc:-3,relu"}},
		{"trailing text", []string{"--layers", "fc:10abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = execute(t, append([]string{"run"}, tt.args...)...)
			})
			assert.Error(t, err)
		})
	}
}

func TestParseLayers(t *testing.T) {
	schemas, err := parseLayers("fc:4, relu ,sigmoid")
	require.NoError(t, err)
	require.Len(t, schemas, 3)
	assert.Equal(t, "rectified_linear", schemas[1].Name())
}

func tail(s string) string {
	idx := bytes.Index([]byte(s), []byte("output "))
	if idx < 0 {
		return s
	}
	return s[idx:]
}
