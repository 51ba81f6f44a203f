package sequence

// bufferPool hands out error buffers for one backward pass and reuses released
// ones of the same length.
type bufferPool struct {
	free      map[int][][]float32
	allocated int
}

func newBufferPool() *bufferPool {
	return &bufferPool{free: make(map[int][][]float32)}
}

func (p *bufferPool) get(n int) []float32 {
	if list := p.free[n]; len(list) > 0 {
		buf := list[len(list)-1]
		p.free[n] = list[:len(list)-1]
		return buf
	}
	p.allocated++
	return make([]float32, n)
}

func (p *bufferPool) put(buf []float32) {
	p.free[len(buf)] = append(p.free[len(buf)], buf)
}

// Plan summarizes the error buffers one backward pass needs.
type Plan struct {
	// ErrorBuffers is the number of distinct error buffers allocated.
	ErrorBuffers int
	// InPlaceLayers counts layers whose backward pass reuses the incoming buffer.
	InPlaceLayers int
}

// Plan simulates a backward pass with the same reuse rules as Backward.
func (s *Sequence) Plan() Plan {
	free := make(map[int]int)
	plan := Plan{ErrorBuffers: 1}
	cur := s.steps[len(s.steps)-1].output.NeuronCount()

	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.kernel.InPlaceBackprop() {
			plan.InPlaceLayers++
			continue
		}
		n := st.input.NeuronCount()
		if free[n] > 0 {
			free[n]--
		} else {
			plan.ErrorBuffers++
		}
		free[cur]++
		cur = n
	}
	return plan
}
