package sim

import "github.com/go-gl/mathgl/mgl32"

// Hull is one of the fixed collision shapes used for tracing.
type Hull uint8

const (
	// HullStanding is the standing player hull.
	HullStanding Hull = iota
	// HullDucked is the ducked player hull.
	HullDucked
	// HullPoint is a point-sized hull, as in tracing a line.
	HullPoint
)

// NoEntity is the TraceResult entity value meaning no surface was hit.
const NoEntity int32 = -1

// TraceResult is the collision oracle's answer to a single trace.
type TraceResult struct {
	AllSolid    bool       `json:"all_solid"`
	StartSolid  bool       `json:"start_solid"`
	Fraction    float32    `json:"fraction"`
	EndPos      mgl32.Vec3 `json:"end_pos"`
	PlaneNormal mgl32.Vec3 `json:"plane_normal"`
	Entity      int32      `json:"entity"`
}

// Tracer is the world's collision oracle. Implementations must be
// deterministic for fixed inputs; the simulation calls Trace many times per
// frame, including from speculative lookahead branches.
type Tracer interface {
	// Trace sweeps hull from start to end and returns the outcome.
	Trace(start, end mgl32.Vec3, hull Hull) TraceResult
}

// DummyTracer is a Tracer that operates as if in an empty world.
type DummyTracer struct{}

func (DummyTracer) Trace(_, end mgl32.Vec3, _ Hull) TraceResult {
	return TraceResult{
		Fraction: 1,
		EndPos:   end,
		Entity:   NoEntity,
	}
}
