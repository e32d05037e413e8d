package world

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tasuite/strafesim/sim"
)

// Brushes is a world made of axis-aligned solid boxes above an optional
// floor plane. Traces sweep the player hull against every brush and report
// the earliest hit, which is enough geometry for step, wall and ceiling
// scenarios in tests.
type Brushes struct {
	// Boxes are the solid brushes. The trace entity id is the brush index.
	Boxes []cube.BBox
	// Floor adds the infinite floor at z = 0 when set.
	Floor bool
}

// Trace sweeps hull from start to end through the brush set.
func (b *Brushes) Trace(start, end mgl32.Vec3, hull sim.Hull) sim.TraceResult {
	best := missResult(end)
	if b.Floor {
		best = (Plane{}).Trace(start, end, hull)
	}

	delta := end.Sub(start)
	halfHeight := hullHalfHeight(hull)
	halfWidth := hullHalfWidth
	if hull == sim.HullPoint {
		halfWidth = 0
	}

	for i, box := range b.Boxes {
		// Expand the brush by the hull so the hull sweep reduces to a
		// point sweep of the hull origin.
		expMin := mgl32.Vec3{
			box.Min().X() - halfWidth,
			box.Min().Y() - halfWidth,
			box.Min().Z() - halfHeight,
		}
		expMax := mgl32.Vec3{
			box.Max().X() + halfWidth,
			box.Max().Y() + halfWidth,
			box.Max().Z() + halfHeight,
		}

		tr, hit := sweepPoint(start, delta, expMin, expMax)
		if !hit {
			continue
		}
		tr.Entity = int32(i)

		if tr.StartSolid || tr.Fraction < best.Fraction || best.Entity == sim.NoEntity && tr.Fraction <= best.Fraction {
			best = tr
		}
		if best.StartSolid {
			break
		}
	}

	return best
}

// sweepPoint sweeps a point from start along delta against one box using the
// slab method, returning the entry trace if the segment enters the box.
func sweepPoint(start, delta, boxMin, boxMax mgl32.Vec3) (sim.TraceResult, bool) {
	inside := true
	for i := range 3 {
		if start[i] <= boxMin[i] || start[i] >= boxMax[i] {
			inside = false
			break
		}
	}
	if inside {
		return sim.TraceResult{
			AllSolid:   true,
			StartSolid: true,
			Fraction:   0,
			EndPos:     start,
		}, true
	}

	tEnter := float32(-1)
	tExit := float32(1)
	enterAxis := -1
	enterSign := float32(0)

	for i := range 3 {
		if delta[i] == 0 {
			if start[i] <= boxMin[i] || start[i] >= boxMax[i] {
				return sim.TraceResult{}, false
			}
			continue
		}

		t1 := (boxMin[i] - start[i]) / delta[i]
		t2 := (boxMax[i] - start[i]) / delta[i]
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}

		if t1 > tEnter {
			tEnter = t1
			enterAxis = i
			enterSign = sign
		}
		tExit = math32.Min(tExit, t2)
	}

	if enterAxis == -1 || tEnter < 0 || tEnter > tExit || tEnter > 1 {
		return sim.TraceResult{}, false
	}

	var normal mgl32.Vec3
	normal[enterAxis] = enterSign

	return sim.TraceResult{
		Fraction:    tEnter,
		EndPos:      start.Add(delta.Mul(tEnter * 0.999)),
		PlaneNormal: normal,
	}, true
}
