package simplify

// MaxMessageLength bounds the failure message so the result stays a
// plain fixed-size record on the error path.
const MaxMessageLength = 256

type Reason int

const (
	ReasonNone Reason = iota
	// ReasonInvalidArgument: a required buffer is absent.
	ReasonInvalidArgument
	// ReasonInvalidMesh: a structural precondition is violated.
	ReasonInvalidMesh
	// ReasonEngineFailure: the geometry engine rejected valid-looking
	// inputs (for example an unsupported attribute configuration).
	ReasonEngineFailure
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidArgument:
		return "invalid argument"
	case ReasonInvalidMesh:
		return "invalid mesh"
	case ReasonEngineFailure:
		return "engine failure"
	}
	return "unknown"
}

// Result is created fresh per call and fully populated before it is
// returned; the handler retains nothing.
type Result struct {
	// IndexCount and Error are only meaningful when Ok is set.
	IndexCount int     `json:"index_count"`
	Error      float32 `json:"error"`

	Ok      bool   `json:"success"`
	Reason  Reason `json:"-"`
	Message string `json:"message,omitempty"`
}

func success(indexCount int, err float32) Result {
	return Result{
		IndexCount: indexCount,
		Error:      err,
		Ok:         true,
	}
}

func failure(reason Reason, message string) Result {
	if len(message) > MaxMessageLength {
		message = message[:MaxMessageLength]
	}
	return Result{
		Reason:  reason,
		Message: message,
	}
}
