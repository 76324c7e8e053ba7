// Package simplify contains the simplification request handler: it
// validates caller buffers, derives the working target from the options,
// picks the engine variant and packages the outcome into a Result. The
// geometry itself is delegated to an Engine.
package simplify

import (
	"github.com/mogaika/mesh_simplifier/meshopt"
)

// Engine is the geometry kernel the handler drives. Implementations
// write up to len(indices) entries into destination and report the
// resulting index count and achieved error.
type Engine interface {
	Simplify(destination, indices []uint32, vertexPositions []float32,
		vertexCount, vertexStrideBytes int,
		targetIndexCount int, targetError float32, flags meshopt.Flags) (int, float32, error)

	SimplifyWithAttributes(destination, indices []uint32, vertexPositions []float32,
		vertexCount, vertexStrideBytes int,
		vertexAttributes []float32, attributeStrideBytes int, attributeWeights []float32,
		vertexLock []bool,
		targetIndexCount int, targetError float32, flags meshopt.Flags) (int, float32, error)

	OptimizeVertexCache(destination, indices []uint32, vertexCount int)

	OptimizeOverdraw(destination, indices []uint32, vertexPositions []float32,
		vertexCount, vertexStrideBytes int, threshold float32)
}

// meshoptEngine adapts the meshopt package to the Engine interface.
type meshoptEngine struct{}

func (meshoptEngine) Simplify(destination, indices []uint32, vertexPositions []float32,
	vertexCount, vertexStrideBytes int,
	targetIndexCount int, targetError float32, flags meshopt.Flags) (int, float32, error) {
	return meshopt.Simplify(destination, indices, vertexPositions,
		vertexCount, vertexStrideBytes, targetIndexCount, targetError, flags)
}

func (meshoptEngine) SimplifyWithAttributes(destination, indices []uint32, vertexPositions []float32,
	vertexCount, vertexStrideBytes int,
	vertexAttributes []float32, attributeStrideBytes int, attributeWeights []float32,
	vertexLock []bool,
	targetIndexCount int, targetError float32, flags meshopt.Flags) (int, float32, error) {
	return meshopt.SimplifyWithAttributes(destination, indices, vertexPositions,
		vertexCount, vertexStrideBytes,
		vertexAttributes, attributeStrideBytes, attributeWeights, vertexLock,
		targetIndexCount, targetError, flags)
}

func (meshoptEngine) OptimizeVertexCache(destination, indices []uint32, vertexCount int) {
	meshopt.OptimizeVertexCache(destination, indices, vertexCount)
}

func (meshoptEngine) OptimizeOverdraw(destination, indices []uint32, vertexPositions []float32,
	vertexCount, vertexStrideBytes int, threshold float32) {
	meshopt.OptimizeOverdraw(destination, indices, vertexPositions,
		vertexCount, vertexStrideBytes, threshold)
}

// Handler is stateless and safe for concurrent use on disjoint buffers.
type Handler struct {
	engine Engine
}

// NewHandler returns a handler driving the given engine, or the built-in
// meshopt engine when nil.
func NewHandler(engine Engine) *Handler {
	if engine == nil {
		engine = meshoptEngine{}
	}
	return &Handler{engine: engine}
}

// Simplify validates the request, derives the target index count, invokes
// the matching engine variant and reports the outcome. It never panics
// and never returns an error: every failure is a Result. On failure the
// contents of destination are unspecified.
func (h *Handler) Simplify(destination []uint32, mesh Mesh, opts Options) Result {
	if destination == nil || mesh.Indices == nil || mesh.Positions == nil {
		return failure(ReasonInvalidArgument, "Null pointer in required parameter")
	}
	if len(destination) < len(mesh.Indices) {
		return failure(ReasonInvalidArgument, "Destination buffer smaller than index buffer")
	}
	if len(mesh.Indices) == 0 || mesh.VertexCount == 0 {
		return failure(ReasonInvalidMesh, "Empty mesh (zero indices or vertices)")
	}
	if len(mesh.Indices)%3 != 0 {
		return failure(ReasonInvalidMesh, "Index count must be multiple of 3")
	}

	target := opts.targetIndexCount(len(mesh.Indices))
	targetError := opts.engineTargetError()
	flags := opts.engineFlags()

	var indexCount int
	var resultError float32
	var err error

	if mesh.hasUVs() && opts.UVWeight > 0 {
		// both UV channels become scalar attributes of equal weight; no
		// per-vertex locks, border handling stays with the flags
		weights := []float32{opts.UVWeight, opts.UVWeight}
		indexCount, resultError, err = h.engine.SimplifyWithAttributes(
			destination, mesh.Indices, mesh.Positions,
			mesh.VertexCount, mesh.PositionStride,
			mesh.UVs, mesh.UVStride, weights, nil,
			target, targetError, flags)
	} else {
		indexCount, resultError, err = h.engine.Simplify(
			destination, mesh.Indices, mesh.Positions,
			mesh.VertexCount, mesh.PositionStride,
			target, targetError, flags)
	}

	if err != nil {
		return failure(ReasonEngineFailure, err.Error())
	}
	return success(indexCount, resultError)
}

// OptimizeVertexCache forwards to the engine's vertex cache optimizer.
// Failure is not observable at this layer.
func (h *Handler) OptimizeVertexCache(destination, indices []uint32, vertexCount int) {
	h.engine.OptimizeVertexCache(destination, indices, vertexCount)
}

// OptimizeOverdraw forwards to the engine's overdraw optimizer. Failure
// is not observable at this layer.
func (h *Handler) OptimizeOverdraw(destination, indices []uint32, vertexPositions []float32,
	vertexCount, vertexStrideBytes int, threshold float32) {
	h.engine.OptimizeOverdraw(destination, indices, vertexPositions,
		vertexCount, vertexStrideBytes, threshold)
}
