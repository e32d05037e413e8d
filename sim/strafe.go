package sim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tasuite/strafesim/assert"
	"github.com/tasuite/strafesim/script"
	"github.com/tasuite/strafesim/vct"
)

// maxAccelTheta returns the velocity-relative angle giving the maximum speed
// gain this frame.
func maxAccelTheta(params Parameters, state *State) float32 {
	accel := params.Accelerate
	if state.Place != PlaceGround {
		accel = params.AirAccelerate
	}

	accelSpeed := accel * state.WishSpeed * params.EntFriction * params.FrameTime
	if accelSpeed <= 0 {
		return math32.Pi
	}

	if velXY(state.Player.Vel) == (mgl32.Vec2{}) {
		return 0
	}

	wishSpeedCapped := state.WishSpeed
	if state.Place != PlaceGround {
		wishSpeedCapped = airWishSpeedCap
	}

	tmp := wishSpeedCapped - accelSpeed
	if tmp <= 0 {
		return math32.Pi / 2
	}

	speed := velXY(state.Player.Vel).Len()
	if tmp < speed {
		return math32.Acos(tmp / speed)
	}

	return 0
}

// maxAngleTheta returns the largest velocity-relative angle that still gains
// speed this frame.
func maxAngleTheta(params Parameters, state *State) float32 {
	accel := params.Accelerate
	if state.Place != PlaceGround {
		accel = params.AirAccelerate
	}

	accelSpeed := accel * state.WishSpeed * params.EntFriction * params.FrameTime
	speed := velXY(state.Player.Vel).Len()

	if accelSpeed >= speed {
		return math32.Pi
	}
	return math32.Acos(-accelSpeed / speed)
}

// maxAccelIntoYawTheta points maximal acceleration toward an absolute yaw.
func maxAccelIntoYawTheta(params Parameters, state *State, yaw float32) float32 {
	velYaw := math32.Atan2(state.Player.Vel[1], state.Player.Vel[0])
	theta := maxAccelTheta(params, state)

	// Not the exact maximum, but close enough in practice.
	if theta == 0 || theta == math32.Pi {
		return normalizeRad(yaw - velYaw + theta)
	}
	return math32.Copysign(theta, normalizeRad(yaw-velYaw))
}

// maxAngleIntoYawTheta points the maximal turning angle toward an absolute
// yaw.
func maxAngleIntoYawTheta(params Parameters, state *State, yaw float32) float32 {
	velYaw := math32.Atan2(state.Player.Vel[1], state.Player.Vel[0])
	theta := maxAngleTheta(params, state)
	return math32.Copysign(theta, normalizeRad(yaw-velYaw))
}

// cycleTheta flips the base angle for the alternating left-right wiggle
// styles and advances the cycle counter.
func cycleTheta(state *State, dir script.StrafeDir, count uint32, base float32) float32 {
	// Script validation rejects a zero count, but the pipeline must stay total
	// for any representable bulk; treat it as a one-frame cycle.
	count = min(max(count, 1), ^uint32(0)/2)

	if state.StrafeCycleFrameCount >= count*2 {
		state.StrafeCycleFrameCount = 0
	}

	turnOtherWay := (state.StrafeCycleFrameCount / count) > 0
	state.StrafeCycleFrameCount++

	angle := base
	if dir == script.DirRightLeft {
		angle = -angle
	}
	if turnOtherWay {
		angle = -angle
	}
	return angle
}

// stepStrafe translates the bulk's strafing directive into concrete view
// angles and movement inputs via the vectorial compensation table.
func stepStrafe(c stepCtx, i int, state State, input Input) (State, Input) {
	strafe := strafeSettings(c.bulk)
	if state.Place == PlaceWater || strafe == nil {
		return c.run(i+1, state, input)
	}

	var theta float32
	switch strafe.Type {
	case script.MaxAccel, script.MaxAccelYawOffset:
		switch strafe.Dir {
		case script.DirLeft:
			theta = maxAccelTheta(c.params, &state)
		case script.DirRight:
			theta = -maxAccelTheta(c.params, &state)
		case script.DirYaw:
			theta = maxAccelIntoYawTheta(c.params, &state, degToRad(strafe.Yaw))
		case script.DirLeftRight, script.DirRightLeft:
			theta = cycleTheta(&state, strafe.Dir, strafe.Count, maxAccelTheta(c.params, &state))
		}
	case script.MaxAngle:
		switch strafe.Dir {
		case script.DirLeft:
			theta = maxAngleTheta(c.params, &state)
		case script.DirRight:
			theta = -maxAngleTheta(c.params, &state)
		case script.DirYaw:
			theta = maxAngleIntoYawTheta(c.params, &state, degToRad(strafe.Yaw))
		case script.DirLeftRight, script.DirRightLeft:
			theta = cycleTheta(&state, strafe.Dir, strafe.Count, maxAngleTheta(c.params, &state))
		}
	case script.MaxDeccel:
		theta = math32.Pi
	}

	velYaw := math32.Atan2(state.Player.Vel[1], state.Player.Vel[0])

	// The table only guarantees the closest achievable direction for wish
	// speeds at or below its validity cap; a violation here silently corrupts
	// optimization results, so it is a fatal misconfiguration.
	assert.IsTrue(c.params.MaxSpeed <= vct.MaxSpeedCap,
		"max speed %v is larger than the maximum allowed value %v",
		c.params.MaxSpeed, vct.MaxSpeedCap)

	var cameraYaw float32
	var entry vct.Entry
	if strafe.Type == script.ConstYawspeed {
		right := strafe.Dir == script.DirRight
		yawDelta := degToRad(strafe.Yawspeed * c.params.FrameTime)

		accelAngle := math32.Pi / 2
		if state.Place == PlaceGround {
			accelAngle = math32.Pi / 4
		}

		if right {
			accelAngle = -accelAngle
			cameraYaw = input.Yaw - yawDelta
		} else {
			cameraYaw = input.Yaw + yawDelta
		}

		cameraYaw = angleModRad(cameraYaw)
		entry = vct.Get().FindBest(accelAngle)
	} else {
		cameraYaw = angleModRad(velYaw)
		entry = vct.Get().FindBest((velYaw + theta) - cameraYaw)
	}

	if strafe.Type == script.MaxAccelYawOffset {
		// theta < 0 means strafing right, where the offset decreases the
		// yaw; a positive offset in the bulk always means further toward the
		// strafing side.
		offset := degToRad(state.MaxAccelYawOffsetValue)
		if theta < 0 {
			offset = -offset
		}

		cameraYaw += angleModRad(offset)
	}

	input.Yaw = cameraYaw
	input.Forward = float32(entry.Forward)
	input.Side = float32(entry.Side)

	return c.run(i+1, state, input)
}
