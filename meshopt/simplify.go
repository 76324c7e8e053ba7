package meshopt

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

type collapse struct {
	from, to uint32
	err      float64
}

type collapseHeap []collapse

func (h collapseHeap) Len() int            { return len(h) }
func (h collapseHeap) Less(i, j int) bool  { return h[i].err < h[j].err }
func (h collapseHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *collapseHeap) Push(x interface{}) { *h = append(*h, x.(collapse)) }
func (h *collapseHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

type simplifier struct {
	positions []mgl64.Vec3
	quadrics  []quadric
	remap     []uint32
	locked    []bool

	// nil when running the position-only variant
	attrs       [][]float64
	attrWeights []float64

	tris      [][3]uint32
	triAlive  []bool
	adjacency [][]int32
	aliveTris int

	candidates collapseHeap

	// squared error cutoff in normalized units; +Inf when unconstrained
	errorLimitSq float64
	maxErr       float64
}

func (s *simplifier) resolve(v uint32) uint32 {
	root := v
	for s.remap[root] != root {
		root = s.remap[root]
	}
	for s.remap[v] != root {
		s.remap[v], v = root, s.remap[v]
	}
	return root
}

func (s *simplifier) collapseCost(from, to uint32) float64 {
	cost := s.quadrics[from].eval(s.positions[to])
	if s.attrs != nil {
		for k, w := range s.attrWeights {
			d := s.attrs[from][k] - s.attrs[to][k]
			cost += w * w * d * d
		}
	}
	return cost
}

func (s *simplifier) pushCandidates(u, v uint32) {
	if u == v {
		return
	}
	if !s.locked[u] {
		heap.Push(&s.candidates, collapse{from: u, to: v, err: s.collapseCost(u, v)})
	}
	if !s.locked[v] {
		heap.Push(&s.candidates, collapse{from: v, to: u, err: s.collapseCost(v, u)})
	}
}

func (s *simplifier) seed() {
	seen := make(map[uint64]struct{}, len(s.tris)*3/2)
	for _, tri := range s.tris {
		for i := 0; i < 3; i++ {
			u, v := tri[i], tri[(i+1)%3]
			if u == v {
				continue
			}
			a, b := u, v
			if a > b {
				a, b = b, a
			}
			key := uint64(a)<<32 | uint64(b)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			s.pushCandidates(u, v)
		}
	}
}

func (s *simplifier) collapseVertex(from, to uint32, cost float64) {
	s.remap[from] = to
	fromQ := s.quadrics[from]
	s.quadrics[to].add(&fromQ)
	if cost > s.maxErr {
		s.maxErr = cost
	}

	for _, tid := range s.adjacency[from] {
		if !s.triAlive[tid] {
			continue
		}
		tri := s.tris[tid]
		a, b, c := s.resolve(tri[0]), s.resolve(tri[1]), s.resolve(tri[2])
		if a == b || b == c || a == c {
			s.triAlive[tid] = false
			s.aliveTris--
			continue
		}
		s.adjacency[to] = append(s.adjacency[to], tid)
	}
	s.adjacency[from] = nil

	// requeue the edges of the merged 1-ring with fresh costs
	for _, tid := range s.adjacency[to] {
		if !s.triAlive[tid] {
			continue
		}
		tri := s.tris[tid]
		for i := 0; i < 3; i++ {
			u, v := s.resolve(tri[i]), s.resolve(tri[(i+1)%3])
			if u != to && v != to {
				continue
			}
			s.pushCandidates(u, v)
		}
	}
}

func (s *simplifier) run(targetIndexCount int) {
	for s.aliveTris*3 > targetIndexCount && s.candidates.Len() > 0 {
		c := heap.Pop(&s.candidates).(collapse)

		from, to := s.resolve(c.from), s.resolve(c.to)
		if from == to || s.locked[from] {
			continue
		}

		cost := s.collapseCost(from, to)
		if cost > s.errorLimitSq {
			continue
		}
		if from != c.from || to != c.to {
			// endpoints moved since this candidate was queued; requeue at
			// the resolved pair so ordering stays cost-driven
			heap.Push(&s.candidates, collapse{from: from, to: to, err: cost})
			continue
		}

		s.collapseVertex(from, to, cost)
	}
}

func (s *simplifier) writeResult(destination []uint32) int {
	count := 0
	for tid, tri := range s.tris {
		if !s.triAlive[tid] {
			continue
		}
		a, b, c := s.resolve(tri[0]), s.resolve(tri[1]), s.resolve(tri[2])
		if a == b || b == c || a == c {
			continue
		}
		destination[count] = a
		destination[count+1] = b
		destination[count+2] = c
		count += 3
	}
	return count
}

// markBorders locks every vertex that belongs to an edge used by exactly
// one triangle.
func (s *simplifier) markBorders() {
	edgeUses := make(map[uint64]int, len(s.tris)*3/2)
	for _, tri := range s.tris {
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			edgeUses[uint64(a)<<32|uint64(b)]++
		}
	}
	for key, uses := range edgeUses {
		if uses == 1 {
			s.locked[key>>32] = true
			s.locked[key&0xffffffff] = true
		}
	}
}

func newSimplifier(indices []uint32, positions []mgl64.Vec3, targetError float32, flags Flags, normScale float64) *simplifier {
	s := &simplifier{
		positions: make([]mgl64.Vec3, len(positions)),
		quadrics:  make([]quadric, len(positions)),
		remap:     make([]uint32, len(positions)),
		locked:    make([]bool, len(positions)),
		tris:      make([][3]uint32, len(indices)/3),
		triAlive:  make([]bool, len(indices)/3),
		adjacency: make([][]int32, len(positions)),
	}

	for i, p := range positions {
		s.positions[i] = p.Mul(normScale)
		s.remap[i] = uint32(i)
	}

	for t := range s.tris {
		tri := [3]uint32{indices[t*3], indices[t*3+1], indices[t*3+2]}
		s.tris[t] = tri
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			continue
		}
		s.triAlive[t] = true
		s.aliveTris++

		q := triangleQuadric(s.positions[tri[0]], s.positions[tri[1]], s.positions[tri[2]])
		for _, v := range tri {
			s.quadrics[v].add(&q)
			s.adjacency[v] = append(s.adjacency[v], int32(t))
		}
	}

	if flags&SimplifyLockBorder != 0 {
		s.markBorders()
	}

	if targetError >= ErrorUnconstrained {
		s.errorLimitSq = math.Inf(1)
	} else {
		limit := float64(targetError)
		if flags&SimplifyErrorAbsolute != 0 {
			limit *= normScale
		}
		s.errorLimitSq = limit * limit
	}

	return s
}

func simplifyImpl(destination, indices []uint32, positions []mgl64.Vec3,
	attrs [][]float64, attrWeights []float64, vertexLock []bool,
	targetIndexCount int, targetError float32, flags Flags) (int, float32) {

	if targetIndexCount >= len(indices) {
		copy(destination, indices)
		return len(indices), 0
	}
	if targetIndexCount < 0 {
		targetIndexCount = 0
	}

	extent := meshExtent(positions)
	normScale := 1 / extent

	s := newSimplifier(indices, positions, targetError, flags, normScale)

	if attrs != nil {
		// attributes share the position normalization so their weighted
		// deviation stays comparable to the positional quadric error
		s.attrs = make([][]float64, len(attrs))
		for i, a := range attrs {
			scaled := make([]float64, len(a))
			for k, v := range a {
				scaled[k] = v * normScale
			}
			s.attrs[i] = scaled
		}
		s.attrWeights = attrWeights
	}

	if vertexLock != nil {
		for i, lock := range vertexLock {
			if lock {
				s.locked[i] = true
			}
		}
	}

	s.seed()
	s.run(targetIndexCount)

	resultError := float32(math.Sqrt(s.maxErr))
	if flags&SimplifyErrorAbsolute != 0 {
		resultError *= float32(extent)
	}

	return s.writeResult(destination), resultError
}

// Simplify reduces the triangle count of the mesh using greedy quadric
// error edge collapses until the index count does not exceed
// targetIndexCount or no collapse fits within targetError. The resulting
// index buffer is written to destination and its length returned together
// with the worst collapse error (relative to the mesh extent unless
// SimplifyErrorAbsolute is set).
func Simplify(destination, indices []uint32, vertexPositions []float32,
	vertexCount int, vertexStrideBytes int,
	targetIndexCount int, targetError float32, flags Flags) (int, float32, error) {

	if len(destination) < len(indices) {
		return 0, 0, errors.Errorf("Destination holds %v indices, need %v", len(destination), len(indices))
	}
	if err := validateIndices(indices, vertexCount); err != nil {
		return 0, 0, err
	}

	positions, err := decodePositions(vertexPositions, vertexCount, vertexStrideBytes)
	if err != nil {
		return 0, 0, err
	}

	count, resultError := simplifyImpl(destination, indices, positions,
		nil, nil, nil, targetIndexCount, targetError, flags)
	return count, resultError, nil
}

// SimplifyWithAttributes is Simplify with per-vertex scalar attributes
// folded into the collapse cost. attributeWeights defines the attribute
// count; vertexAttributes supplies len(attributeWeights) floats per vertex
// at attributeStrideBytes intervals. vertexLock optionally pins single
// vertices and may be nil.
func SimplifyWithAttributes(destination, indices []uint32, vertexPositions []float32,
	vertexCount int, vertexStrideBytes int,
	vertexAttributes []float32, attributeStrideBytes int, attributeWeights []float32,
	vertexLock []bool,
	targetIndexCount int, targetError float32, flags Flags) (int, float32, error) {

	if len(destination) < len(indices) {
		return 0, 0, errors.Errorf("Destination holds %v indices, need %v", len(destination), len(indices))
	}
	if err := validateIndices(indices, vertexCount); err != nil {
		return 0, 0, err
	}
	if vertexAttributes == nil {
		return 0, 0, errors.Errorf("Attribute buffer is nil")
	}
	if len(attributeWeights) == 0 || len(attributeWeights) > maxAttributes {
		return 0, 0, errors.Errorf("Attribute count %v is out of the supported range [1, %v]", len(attributeWeights), maxAttributes)
	}
	if vertexLock != nil && len(vertexLock) != vertexCount {
		return 0, 0, errors.Errorf("Vertex lock array holds %v entries for %v vertices", len(vertexLock), vertexCount)
	}
	if attributeStrideBytes%4 != 0 || attributeStrideBytes/4 < len(attributeWeights) {
		return 0, 0, errors.Errorf("Attribute stride %v does not fit %v float attributes", attributeStrideBytes, len(attributeWeights))
	}

	positions, err := decodePositions(vertexPositions, vertexCount, vertexStrideBytes)
	if err != nil {
		return 0, 0, err
	}

	attrCount := len(attributeWeights)
	attrStride := attributeStrideBytes / 4
	if vertexCount > 0 && len(vertexAttributes) < (vertexCount-1)*attrStride+attrCount {
		return 0, 0, errors.Errorf("Attribute buffer of %v floats does not hold %v vertices", len(vertexAttributes), vertexCount)
	}

	attrs := make([][]float64, vertexCount)
	for i := 0; i < vertexCount; i++ {
		base := i * attrStride
		values := make([]float64, attrCount)
		for k := 0; k < attrCount; k++ {
			values[k] = float64(vertexAttributes[base+k])
		}
		attrs[i] = values
	}

	weights := make([]float64, attrCount)
	for k, w := range attributeWeights {
		weights[k] = float64(w)
	}

	count, resultError := simplifyImpl(destination, indices, positions,
		attrs, weights, vertexLock, targetIndexCount, targetError, flags)
	return count, resultError, nil
}
