package meshopt

// Tipsify-style linear-speed vertex cache optimization (Sander et al.).
// Triangles are emitted in fans around a focus vertex; the next focus is
// picked from the 1-ring so its triangles still hit the simulated FIFO
// cache, falling back to the dead-end stack and then to an input-order
// scan.

const vertexCacheSize = 16

type vcacheState struct {
	indices       []uint32
	adjacency     [][]int32 // vertex -> triangle ids
	liveTriangles []int32
	cacheTime     []int32
	emitted       []bool

	deadEnd []uint32
	output  []uint32

	time   int32
	cursor int
}

func (s *vcacheState) emitTriangle(tid int32, candidates *[]uint32) {
	s.emitted[tid] = true
	for i := 0; i < 3; i++ {
		v := s.indices[tid*3+int32(i)]
		s.output = append(s.output, v)
		s.deadEnd = append(s.deadEnd, v)
		*candidates = append(*candidates, v)
		s.liveTriangles[v]--

		if s.time-s.cacheTime[v] > vertexCacheSize {
			s.cacheTime[v] = s.time
			s.time++
		}
	}
}

func (s *vcacheState) nextFocus(candidates []uint32) int64 {
	best := int64(-1)
	bestPriority := int32(-1)
	for _, v := range candidates {
		if s.liveTriangles[v] <= 0 {
			continue
		}
		// prefer vertices whose remaining triangles fit in cache
		priority := int32(0)
		if s.time-s.cacheTime[v]+2*s.liveTriangles[v] <= vertexCacheSize {
			priority = s.time - s.cacheTime[v]
		}
		if priority > bestPriority {
			bestPriority = priority
			best = int64(v)
		}
	}
	if best >= 0 {
		return best
	}

	// dead-end stack, then skip ahead in input order
	for len(s.deadEnd) > 0 {
		v := s.deadEnd[len(s.deadEnd)-1]
		s.deadEnd = s.deadEnd[:len(s.deadEnd)-1]
		if s.liveTriangles[v] > 0 {
			return int64(v)
		}
	}
	for ; s.cursor < len(s.liveTriangles); s.cursor++ {
		if s.liveTriangles[s.cursor] > 0 {
			return int64(s.cursor)
		}
	}
	return -1
}

// OptimizeVertexCache reorders the triangles of the index buffer to
// improve locality of vertex references for a post-transform cache and
// writes the result to destination. destination may alias indices. The
// triangle set is preserved exactly.
func OptimizeVertexCache(destination, indices []uint32, vertexCount int) {
	if len(indices)%3 != 0 || len(destination) < len(indices) {
		return
	}
	triangleCount := len(indices) / 3
	if triangleCount == 0 {
		return
	}

	s := &vcacheState{
		indices:       indices,
		adjacency:     make([][]int32, vertexCount),
		liveTriangles: make([]int32, vertexCount),
		cacheTime:     make([]int32, vertexCount),
		emitted:       make([]bool, triangleCount),
		deadEnd:       make([]uint32, 0, len(indices)),
		output:        make([]uint32, 0, len(indices)),
		time:          vertexCacheSize + 1,
	}

	for t := 0; t < triangleCount; t++ {
		for i := 0; i < 3; i++ {
			v := indices[t*3+i]
			if int(v) >= vertexCount {
				return
			}
			s.adjacency[v] = append(s.adjacency[v], int32(t))
			s.liveTriangles[v]++
		}
	}

	focus := int64(indices[0])
	for focus >= 0 {
		candidates := make([]uint32, 0, 16)
		for _, tid := range s.adjacency[focus] {
			if !s.emitted[tid] {
				s.emitTriangle(tid, &candidates)
			}
		}
		focus = s.nextFocus(candidates)
	}

	copy(destination, s.output)
}
