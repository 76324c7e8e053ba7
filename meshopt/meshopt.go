// Package meshopt implements the geometry kernel of the simplification
// service: quadric error edge-collapse simplification (position-only and
// attribute-aware) and index buffer reordering for vertex cache and
// overdraw. The package never allocates result buffers; callers own every
// mesh-sized allocation that crosses the boundary.
package meshopt

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/mesh_simplifier/utils"
)

type Flags uint32

const (
	// SimplifyLockBorder forbids collapsing vertices that lie on an edge
	// used by exactly one triangle.
	SimplifyLockBorder Flags = 1 << iota
	// SimplifyErrorAbsolute interprets the target error and the reported
	// error in model units instead of relative to the mesh extent.
	SimplifyErrorAbsolute
)

// ErrorUnconstrained disables the error cutoff of Simplify entirely.
const ErrorUnconstrained float32 = math.MaxFloat32

const maxAttributes = 32

func decodePositions(vertexPositions []float32, vertexCount int, vertexStrideBytes int) ([]mgl64.Vec3, error) {
	raw, err := utils.DecodeVec3Array(vertexPositions, vertexCount, vertexStrideBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode vertex positions")
	}

	positions := make([]mgl64.Vec3, vertexCount)
	for i, p := range raw {
		positions[i] = mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
	}
	return positions, nil
}

// meshExtent returns the largest axis-aligned bounding box dimension,
// used to normalize positions so relative errors are scale-independent.
func meshExtent(positions []mgl64.Vec3) float64 {
	if len(positions) == 0 {
		return 1
	}

	min, max := positions[0], positions[0]
	for _, p := range positions[1:] {
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], p[axis])
			max[axis] = math.Max(max[axis], p[axis])
		}
	}

	extent := 0.0
	for axis := 0; axis < 3; axis++ {
		extent = math.Max(extent, max[axis]-min[axis])
	}
	if extent == 0 {
		return 1
	}
	return extent
}

func validateIndices(indices []uint32, vertexCount int) error {
	if len(indices)%3 != 0 {
		return errors.Errorf("Index count %v is not a multiple of 3", len(indices))
	}
	for i, index := range indices {
		if int(index) >= vertexCount {
			return errors.Errorf("Index %v at position %v is out of range for %v vertices", index, i, vertexCount)
		}
	}
	return nil
}
