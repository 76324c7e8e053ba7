package simplify

import (
	"github.com/mogaika/mesh_simplifier/meshopt"
)

// Options is the whole configuration surface of a simplification call.
type Options struct {
	// TargetIndexCount is the absolute desired index count; 0 means
	// "derive from TargetRatio".
	TargetIndexCount int `json:"target_index_count" yaml:"target_index_count"`

	// TargetRatio is the fraction of the original index count to keep,
	// in (0, 1]. Ignored when TargetIndexCount is set.
	TargetRatio float32 `json:"target_ratio" yaml:"target_ratio"`

	// TargetError bounds the tolerated geometric error; 0 means
	// unconstrained.
	TargetError float32 `json:"target_error" yaml:"target_error"`

	// UVWeight is the relative importance of UV deviation against
	// positional deviation. A positive weight enables the
	// attribute-aware engine variant when the mesh carries UVs.
	UVWeight float32 `json:"uv_weight" yaml:"uv_weight"`

	LockBorder      bool `json:"lock_border" yaml:"lock_border"`
	ErrorIsAbsolute bool `json:"error_is_absolute" yaml:"error_is_absolute"`
}

// targetIndexCount derives the working target: an explicit count wins,
// otherwise the ratio is applied and truncated down to a whole triangle
// count. The result never undershoots one triangle — a zero target would
// ask the engine for an empty mesh.
func (o *Options) targetIndexCount(indexCount int) int {
	target := o.TargetIndexCount
	if target == 0 && o.TargetRatio > 0 {
		target = int(float64(indexCount) * float64(o.TargetRatio))
		target = (target / 3) * 3
	}
	if target == 0 {
		target = 3
	}
	return target
}

// engineFlags is the only place that knows the engine's bit layout.
func (o *Options) engineFlags() meshopt.Flags {
	var flags meshopt.Flags
	if o.LockBorder {
		flags |= meshopt.SimplifyLockBorder
	}
	if o.ErrorIsAbsolute {
		flags |= meshopt.SimplifyErrorAbsolute
	}
	return flags
}

// engineTargetError maps the option-level "0 = unconstrained" convention
// onto the engine's sentinel; the engine itself treats 0 as "no error
// allowed" and would freeze the mesh.
func (o *Options) engineTargetError() float32 {
	if o.TargetError <= 0 {
		return meshopt.ErrorUnconstrained
	}
	return o.TargetError
}
