package simplify

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/mesh_simplifier/meshopt"
)

// recordingEngine captures the last engine invocation instead of doing
// geometry.
type recordingEngine struct {
	variant     string
	target      int
	targetError float32
	flags       meshopt.Flags
	weights     []float32
	lock        []bool

	indexCount  int
	resultError float32
	err         error
}

func (e *recordingEngine) Simplify(destination, indices []uint32, vertexPositions []float32,
	vertexCount, vertexStrideBytes int,
	targetIndexCount int, targetError float32, flags meshopt.Flags) (int, float32, error) {
	e.variant = "basic"
	e.target = targetIndexCount
	e.targetError = targetError
	e.flags = flags
	return e.indexCount, e.resultError, e.err
}

func (e *recordingEngine) SimplifyWithAttributes(destination, indices []uint32, vertexPositions []float32,
	vertexCount, vertexStrideBytes int,
	vertexAttributes []float32, attributeStrideBytes int, attributeWeights []float32,
	vertexLock []bool,
	targetIndexCount int, targetError float32, flags meshopt.Flags) (int, float32, error) {
	e.variant = "attributes"
	e.target = targetIndexCount
	e.targetError = targetError
	e.flags = flags
	e.weights = attributeWeights
	e.lock = vertexLock
	return e.indexCount, e.resultError, e.err
}

func (e *recordingEngine) OptimizeVertexCache(destination, indices []uint32, vertexCount int) {
	e.variant = "vcache"
}

func (e *recordingEngine) OptimizeOverdraw(destination, indices []uint32, vertexPositions []float32,
	vertexCount, vertexStrideBytes int, threshold float32) {
	e.variant = "overdraw"
}

func validMesh() Mesh {
	return Mesh{
		Indices:        []uint32{0, 1, 2, 0, 2, 3},
		Positions:      []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		VertexCount:    4,
		PositionStride: 12,
	}
}

func TestSimplifyValidation(t *testing.T) {
	tests := []struct {
		name        string
		destination []uint32
		mutate      func(*Mesh)
		out_reason  Reason
		out_message string
	}{
		{"nil destination", nil, nil,
			ReasonInvalidArgument, "Null pointer in required parameter"},
		{"nil indices", make([]uint32, 6), func(m *Mesh) { m.Indices = nil },
			ReasonInvalidArgument, "Null pointer in required parameter"},
		{"nil positions", make([]uint32, 6), func(m *Mesh) { m.Positions = nil },
			ReasonInvalidArgument, "Null pointer in required parameter"},
		{"short destination", make([]uint32, 3), nil,
			ReasonInvalidArgument, "Destination buffer smaller than index buffer"},
		{"empty indices", []uint32{}, func(m *Mesh) { m.Indices = []uint32{} },
			ReasonInvalidMesh, "Empty mesh (zero indices or vertices)"},
		{"zero vertices", make([]uint32, 6), func(m *Mesh) { m.VertexCount = 0 },
			ReasonInvalidMesh, "Empty mesh (zero indices or vertices)"},
		{"non-triangular", make([]uint32, 7), func(m *Mesh) { m.Indices = make([]uint32, 7) },
			ReasonInvalidMesh, "Index count must be multiple of 3"},
	}

	for _, test := range tests {
		engine := &recordingEngine{}
		h := NewHandler(engine)

		mesh := validMesh()
		if test.mutate != nil {
			test.mutate(&mesh)
		}

		result := h.Simplify(test.destination, mesh, Options{})
		if result.Ok {
			t.Errorf("%s: expected failure", test.name)
			continue
		}
		if result.Reason != test.out_reason {
			t.Errorf("%s: reason %v; expected %v", test.name, result.Reason, test.out_reason)
		}
		if result.Message != test.out_message {
			t.Errorf("%s: message %q; expected %q", test.name, result.Message, test.out_message)
		}
		if result.Error != 0 {
			t.Errorf("%s: error %v before reaching the engine; expected 0", test.name, result.Error)
		}
		if engine.variant != "" {
			t.Errorf("%s: engine was invoked (%v) on invalid input", test.name, engine.variant)
		}
	}
}

func TestTargetDerivation(t *testing.T) {
	tests := []struct {
		name       string
		indexCount int
		opts       Options
		out_target int
	}{
		{"explicit count", 36, Options{TargetIndexCount: 12}, 12},
		{"explicit count wins over ratio", 36, Options{TargetIndexCount: 12, TargetRatio: 0.9}, 12},
		{"ratio half of cube", 36, Options{TargetRatio: 0.5}, 18},
		{"ratio rounds down to triangle", 36, Options{TargetRatio: 0.4}, 12}, // 14.4 -> 12
		{"tiny ratio clamps to one triangle", 36, Options{TargetRatio: 0.01}, 3},
		{"no target at all", 36, Options{}, 3},
		{"count of one is taken as-is", 36, Options{TargetIndexCount: 1}, 1},
	}

	for _, test := range tests {
		engine := &recordingEngine{indexCount: test.out_target}
		h := NewHandler(engine)

		mesh := validMesh()
		mesh.Indices = make([]uint32, test.indexCount)
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i % mesh.VertexCount)
		}

		result := h.Simplify(make([]uint32, test.indexCount), mesh, test.opts)
		if !result.Ok {
			t.Errorf("%s: unexpected failure: %v", test.name, result.Message)
			continue
		}
		if engine.target != test.out_target {
			t.Errorf("%s: engine target %v; expected %v", test.name, engine.target, test.out_target)
		}
	}
}

func TestVariantSelection(t *testing.T) {
	uvs := []float32{0, 0, 1, 0, 1, 1, 0, 1}

	tests := []struct {
		name        string
		uvs         []float32
		uvWeight    float32
		out_variant string
	}{
		{"no uvs, no weight", nil, 0, "basic"},
		{"no uvs, weight set", nil, 1.5, "basic"},
		{"uvs present, zero weight", uvs, 0, "basic"},
		{"uvs present, negative weight", uvs, -1, "basic"},
		{"uvs present, positive weight", uvs, 1.5, "attributes"},
	}

	for _, test := range tests {
		engine := &recordingEngine{indexCount: 6}
		h := NewHandler(engine)

		mesh := validMesh()
		mesh.UVs = test.uvs
		mesh.UVStride = 8

		result := h.Simplify(make([]uint32, 6), mesh, Options{UVWeight: test.uvWeight})
		if !result.Ok {
			t.Errorf("%s: unexpected failure: %v", test.name, result.Message)
			continue
		}
		if engine.variant != test.out_variant {
			t.Errorf("%s: variant %v; expected %v", test.name, engine.variant, test.out_variant)
		}
		if test.out_variant == "attributes" {
			if len(engine.weights) != 2 || engine.weights[0] != test.uvWeight || engine.weights[1] != test.uvWeight {
				t.Errorf("%s: weights %v; expected both equal to %v", test.name, engine.weights, test.uvWeight)
			}
			if engine.lock != nil {
				t.Errorf("%s: unexpected per-vertex lock array", test.name)
			}
		}
	}
}

func TestFlagAndErrorMapping(t *testing.T) {
	tests := []struct {
		name            string
		opts            Options
		out_flags       meshopt.Flags
		out_targetError float32
	}{
		{"defaults", Options{}, 0, meshopt.ErrorUnconstrained},
		{"lock border", Options{LockBorder: true}, meshopt.SimplifyLockBorder, meshopt.ErrorUnconstrained},
		{"absolute error", Options{ErrorIsAbsolute: true, TargetError: 0.5}, meshopt.SimplifyErrorAbsolute, 0.5},
		{"both flags", Options{LockBorder: true, ErrorIsAbsolute: true},
			meshopt.SimplifyLockBorder | meshopt.SimplifyErrorAbsolute, meshopt.ErrorUnconstrained},
		{"relative error passes through", Options{TargetError: 0.01}, 0, 0.01},
	}

	for _, test := range tests {
		engine := &recordingEngine{indexCount: 3}
		h := NewHandler(engine)

		result := h.Simplify(make([]uint32, 6), validMesh(), test.opts)
		if !result.Ok {
			t.Errorf("%s: unexpected failure: %v", test.name, result.Message)
			continue
		}
		if engine.flags != test.out_flags {
			t.Errorf("%s: flags %b; expected %b", test.name, engine.flags, test.out_flags)
		}
		if engine.targetError != test.out_targetError {
			t.Errorf("%s: target error %v; expected %v", test.name, engine.targetError, test.out_targetError)
		}
	}
}

func TestEngineFailureSurfaces(t *testing.T) {
	engine := &recordingEngine{err: errors.Errorf("unsupported attribute configuration")}
	h := NewHandler(engine)

	result := h.Simplify(make([]uint32, 6), validMesh(), Options{})
	if result.Ok {
		t.Fatal("expected failure when the engine errors")
	}
	if result.Reason != ReasonEngineFailure {
		t.Errorf("reason %v; expected %v", result.Reason, ReasonEngineFailure)
	}
	if result.Message != "unsupported attribute configuration" {
		t.Errorf("unexpected message %q", result.Message)
	}
}

func TestFailureMessageBounded(t *testing.T) {
	engine := &recordingEngine{err: errors.Errorf(strings.Repeat("x", 2*MaxMessageLength))}
	h := NewHandler(engine)

	result := h.Simplify(make([]uint32, 6), validMesh(), Options{})
	if result.Ok {
		t.Fatal("expected failure")
	}
	if len(result.Message) != MaxMessageLength {
		t.Errorf("message length %v; expected %v", len(result.Message), MaxMessageLength)
	}
}

func TestPassThroughForwarders(t *testing.T) {
	engine := &recordingEngine{}
	h := NewHandler(engine)

	h.OptimizeVertexCache(make([]uint32, 6), []uint32{0, 1, 2, 0, 2, 3}, 4)
	if engine.variant != "vcache" {
		t.Errorf("vertex cache forwarder reached %q", engine.variant)
	}

	h.OptimizeOverdraw(make([]uint32, 6), []uint32{0, 1, 2, 0, 2, 3},
		validMesh().Positions, 4, 12, 1.05)
	if engine.variant != "overdraw" {
		t.Errorf("overdraw forwarder reached %q", engine.variant)
	}
}

// TestSimplifyCubeEndToEnd runs the real engine: a cube of 36 indices at
// ratio 0.5 must come back at 18 indices or fewer.
func TestSimplifyCubeEndToEnd(t *testing.T) {
	var indices []uint32
	var positions []float32
	corner := func(i int) [3]float32 {
		p := [3]float32{-1, -1, -1}
		if i&1 != 0 {
			p[0] = 1
		}
		if i&2 != 0 {
			p[1] = 1
		}
		if i&4 != 0 {
			p[2] = 1
		}
		return p
	}
	faces := [6][4]int{
		{1, 3, 7, 5}, {0, 4, 6, 2}, {2, 6, 7, 3},
		{0, 1, 5, 4}, {4, 5, 7, 6}, {0, 2, 3, 1},
	}
	for _, face := range faces {
		base := uint32(len(positions) / 3)
		for _, ci := range face {
			p := corner(ci)
			positions = append(positions, p[0], p[1], p[2])
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	mesh := Mesh{
		Indices:        indices,
		Positions:      positions,
		VertexCount:    24,
		PositionStride: 12,
	}
	destination := make([]uint32, len(indices))

	h := NewHandler(nil)
	result := h.Simplify(destination, mesh, Options{TargetRatio: 0.5})
	if !result.Ok {
		t.Fatalf("unexpected failure: %v", result.Message)
	}
	if result.IndexCount > 18 || result.IndexCount%3 != 0 {
		t.Errorf("index count %v; expected a multiple of 3 within 18", result.IndexCount)
	}

	// identical inputs on a fresh destination must reproduce the result
	destination2 := make([]uint32, len(indices))
	result2 := h.Simplify(destination2, mesh, Options{TargetRatio: 0.5})
	if result2.IndexCount != result.IndexCount || result2.Error != result.Error {
		t.Errorf("non-deterministic result: (%v, %v) != (%v, %v)",
			result2.IndexCount, result2.Error, result.IndexCount, result.Error)
	}
}
