package s3mfile

// slabPool hands out small slices carved from a few big slabs.
// A parsed module has thousands of tiny per-row event slices;
// carving them from slabs keeps the allocation count low and lets
// a reused Parser recycle the memory.
type slabPool[T any] struct {
	slabs    []slab[T]
	slabSize int
}

type slab[T any] struct {
	data []T
	used int
}

func (s *slab[T]) available() int {
	return len(s.data) - s.used
}

func (s *slab[T]) take(n int) []T {
	// The capacity is limited, so appending to a returned
	// slice can never overwrite the neighbour.
	result := s.data[s.used : s.used+n : s.used+n]
	s.used += n
	return result
}

func initSlabPool[T any](p *slabPool[T], slabSize, maxSlabs int) {
	p.slabs = make([]slab[T], 0, maxSlabs)
	p.slabSize = slabSize
}

func (p *slabPool[T]) Reset() {
	for i := range p.slabs {
		p.slabs[i].used = 0
	}
}

func (p *slabPool[T]) MakeSlice(n int) []T {
	if n == 0 {
		return nil
	}
	if n > p.slabSize {
		return make([]T, n)
	}

	for i := range p.slabs {
		s := &p.slabs[i]
		if s.available() >= n {
			return s.take(n)
		}
	}

	if len(p.slabs) < cap(p.slabs) {
		p.slabs = append(p.slabs, slab[T]{
			data: make([]T, p.slabSize),
		})
		return p.slabs[len(p.slabs)-1].take(n)
	}

	// All slabs are full.
	return make([]T, n)
}

// Clone returns a pool-allocated copy of src.
func (p *slabPool[T]) Clone(src []T) []T {
	dst := p.MakeSlice(len(src))
	copy(dst, src)
	return dst
}
