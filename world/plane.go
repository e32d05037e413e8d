// Package world provides concrete collision oracles: geometric test worlds
// that implement sim.Tracer without a game engine behind them.
package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tasuite/strafesim/sim"
)

// Hull half-extents. Trace positions are hull origins, so a hull spans
// pos.z - halfHeight .. pos.z + halfHeight; a standing player on a floor at
// z = 0 has pos.z = 36.
const (
	hullHalfWidth          float32 = 16
	standingHullHalfHeight float32 = 36
	duckedHullHalfHeight   float32 = 18
)

func hullHalfHeight(h sim.Hull) float32 {
	switch h {
	case sim.HullStanding:
		return standingHullHalfHeight
	case sim.HullDucked:
		return duckedHullHalfHeight
	default:
		return 0
	}
}

// Plane is an infinite solid floor at z = 0 in an otherwise empty world.
// It is the reference world used by the simulation tests.
type Plane struct{}

// Trace computes the analytic time of impact of the hull's bottom face with
// the floor. The reported stop position backs off by a small fraction of the
// travelled distance, like engine traces do, which makes repeated ground
// snaps converge onto the floor instead of landing exactly on it.
func (Plane) Trace(start, end mgl32.Vec3, hull sim.Hull) sim.TraceResult {
	delta := end.Sub(start)
	bottom := start[2] - hullHalfHeight(hull)

	if bottom < 0 {
		// Started embedded in the floor.
		return sim.TraceResult{
			AllSolid:    true,
			StartSolid:  true,
			Fraction:    0,
			EndPos:      start,
			PlaneNormal: mgl32.Vec3{0, 0, 1},
			Entity:      0,
		}
	}

	if delta[2] >= 0 {
		// Not approaching the floor.
		return missResult(end)
	}

	toi := bottom / -delta[2]
	if toi > 1 {
		return missResult(end)
	}

	return sim.TraceResult{
		Fraction:    toi,
		EndPos:      start.Add(delta.Mul(toi * 0.999)),
		PlaneNormal: mgl32.Vec3{0, 0, 1},
		Entity:      0,
	}
}

func missResult(end mgl32.Vec3) sim.TraceResult {
	return sim.TraceResult{
		Fraction: 1,
		EndPos:   end,
		Entity:   sim.NoEntity,
	}
}
