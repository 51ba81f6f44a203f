// Package layer describes layer kinds, their shapes and their opaque weight data.
package layer

import (
	"fmt"
	"strings"
)

// Configuration describes the shape of one tensor role (input or output) of a layer
// for a single entry: a number of feature maps, each spanning Dimensions.
//
// A flat, fully connected vector of N neurons is Configuration{FeatureMaps: N}.
type Configuration struct {
	FeatureMaps int
	Dimensions  []int
}

// Flat returns a configuration of n neurons with no spatial dimensions.
func Flat(n int) Configuration {
	return Configuration{FeatureMaps: n}
}

// NeuronCount returns the number of scalar elements per entry.
func (c Configuration) NeuronCount() int {
	n := c.FeatureMaps
	for _, d := range c.Dimensions {
		n *= d
	}
	return n
}

// Validate checks that every size is positive.
func (c Configuration) Validate() error {
	if c.FeatureMaps <= 0 {
		return fmt.Errorf("invalid feature map count %d (must be > 0)", c.FeatureMaps)
	}
	for i, d := range c.Dimensions {
		if d <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, d)
		}
	}
	return nil
}

// Equal reports whether two configurations describe the same shape.
func (c Configuration) Equal(other Configuration) bool {
	if c.FeatureMaps != other.FeatureMaps || len(c.Dimensions) != len(other.Dimensions) {
		return false
	}
	for i := range c.Dimensions {
		if c.Dimensions[i] != other.Dimensions[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	dims := make([]int, len(c.Dimensions))
	copy(dims, c.Dimensions)
	return Configuration{FeatureMaps: c.FeatureMaps, Dimensions: dims}
}

// String formats the configuration as "maps x d0 x d1 ...".
func (c Configuration) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", c.FeatureMaps)
	for _, d := range c.Dimensions {
		fmt.Fprintf(&b, "x%d", d)
	}
	return b.String()
}
