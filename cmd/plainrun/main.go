// Package main provides the plainrun CLI, which drives the plain layer kernels
// over a chain of layers.
package main

import (
	"os"

	"github.com/born-ml/plain/cmd/plainrun/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
