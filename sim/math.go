package sim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	uRad    = math32.Pi / 32768
	invURad = 32768 / math32.Pi
)

// normalizeRad brings an angle into (-pi, pi].
func normalizeRad(angle float32) float32 {
	angle = math32.Mod(angle, 2*math32.Pi)

	if angle >= math32.Pi {
		return angle - 2*math32.Pi
	} else if angle < -math32.Pi {
		return angle + 2*math32.Pi
	}
	return angle
}

// angleModRad reduces an angle to the engine's 16-bit view-angle grid.
func angleModRad(angle float32) float32 {
	return float32(int32(angle*invURad)&0xFFFF) * uRad
}

// degToRad converts script-level degrees into radians.
func degToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// clampVelocity clamps every velocity component to [-max, max].
func clampVelocity(vel mgl32.Vec3, max float32) mgl32.Vec3 {
	for i := range 3 {
		if vel[i] > max {
			vel[i] = max
		} else if vel[i] < -max {
			vel[i] = -max
		}
	}
	return vel
}

// velXY returns the horizontal part of a velocity.
func velXY(vel mgl32.Vec3) mgl32.Vec2 {
	return mgl32.Vec2{vel[0], vel[1]}
}

// hzDistSqr returns the squared horizontal distance between two positions.
func hzDistSqr(a, b mgl32.Vec3) float32 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}

// normalizeOrZero normalizes a vector, treating the zero vector as already
// normalized instead of dividing by zero.
func normalizeOrZero(v mgl32.Vec2) mgl32.Vec2 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{v[0] / l, v[1] / l}
}
