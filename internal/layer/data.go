package layer

// Data holds the weight vectors of one layer instance.
//
// Its layout is defined by the layer kind; see Schema.DataSizes.
type Data [][]float32

// NewData allocates zeroed weight vectors of the given sizes.
func NewData(sizes []int) Data {
	if len(sizes) == 0 {
		return nil
	}
	d := make(Data, len(sizes))
	for i, n := range sizes {
		d[i] = make([]float32, n)
	}
	return d
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for i, v := range d {
		out[i] = append([]float32(nil), v...)
	}
	return out
}

// Sizes returns the length of every weight vector.
func (d Data) Sizes() []int {
	sizes := make([]int, len(d))
	for i, v := range d {
		sizes[i] = len(v)
	}
	return sizes
}
