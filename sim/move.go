package sim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// airWishSpeedCap caps the wish speed the air acceleration model sees,
	// which is what makes air-strafing gain speed at all.
	airWishSpeedCap = 30

	// maxClipIterations bounds the slide-along-planes loop of a single move.
	maxClipIterations = 4
	// maxClipPlanes bounds how many touched planes a move tracks at once.
	maxClipPlanes = 5

	// groundNormalZ is the minimum vertical normal component of a walkable
	// surface.
	groundNormalZ = 0.7
)

// clipVelocity deflects a velocity off a plane, zeroing the tiny residual
// components the engine snaps away.
func clipVelocity(velocity, normal mgl32.Vec3, overbounce float32) mgl32.Vec3 {
	backoff := velocity.Dot(normal) * overbounce
	velocity = velocity.Sub(normal.Mul(backoff))

	for i := range 3 {
		if velocity[i] > -0.1 && velocity[i] < 0.1 {
			velocity[i] = 0
		}
	}

	return velocity
}

// flyMove slides the player along every touched plane for up to
// maxClipIterations sub-moves, recording the traces for the lookahead steps.
// When more than two non-orthogonal planes are touched at once, it prefers
// stopping entirely over oscillating.
func flyMove(tracer Tracer, params Parameters, state *State) {
	player := &state.Player

	originalVel := player.Vel
	savedVel := player.Vel
	timeLeft := params.FrameTime
	totalFraction := float32(0)

	var planes [maxClipPlanes]mgl32.Vec3
	planeCount := 0

	state.clearMoveTraces()

	for range maxClipIterations {
		if player.Vel == (mgl32.Vec3{}) {
			break
		}

		end := player.Pos.Add(player.Vel.Mul(timeLeft))
		tr := tracer.Trace(player.Pos, end, player.Hull())
		state.pushMoveTrace(tr)

		totalFraction += tr.Fraction

		if tr.AllSolid {
			player.Vel = mgl32.Vec3{}
			break
		}

		if tr.Fraction > 0 {
			player.Pos = tr.EndPos
			savedVel = player.Vel
			planeCount = 0
		}

		if tr.Fraction == 1 {
			break
		}

		timeLeft -= timeLeft * tr.Fraction

		if planeCount == maxClipPlanes {
			player.Vel = mgl32.Vec3{}
			break
		}

		planes[planeCount] = tr.PlaneNormal
		planeCount++

		if state.Place != PlaceGround || params.EntFriction != 1 {
			for _, plane := range planes[:planeCount] {
				overbounce := float32(1)
				if plane[2] <= groundNormalZ {
					overbounce = 1 + params.Bounce*(1-params.EntFriction)
				}

				savedVel = clipVelocity(savedVel, plane, overbounce)
			}

			player.Vel = savedVel
		} else {
			i := 0
			for ; i < planeCount; i++ {
				player.Vel = clipVelocity(savedVel, planes[i], 1)

				movingAlongAll := true
				for j := 0; j < planeCount; j++ {
					if j != i && player.Vel.Dot(planes[j]) < 0 {
						movingAlongAll = false
						break
					}
				}
				if movingAlongAll {
					break
				}
			}

			if i == planeCount {
				if planeCount != 2 {
					player.Vel = mgl32.Vec3{}
					break
				}

				// Slide along the crease between the two planes.
				dir := planes[0].Cross(planes[1])
				player.Vel = dir.Mul(dir.Dot(player.Vel))
			}

			if player.Vel.Dot(originalVel) <= 0 {
				player.Vel = mgl32.Vec3{}
				break
			}
		}
	}

	if totalFraction == 0 {
		player.Vel = mgl32.Vec3{}
	}
}

// stepMove is the terminal pipeline unit: the actual physical integration of
// the frame.
func stepMove(c stepCtx, _ int, state State, input Input) (State, Input) {
	params := c.params

	state.Player.Vel = clampVelocity(state.Player.Vel, params.MaxVelocity)

	// AddCorrectGravity()
	entGravity := params.EntGravity
	if entGravity == 0 {
		entGravity = 1
	}
	state.Player.Vel[2] -= entGravity * params.Gravity * 0.5 * params.FrameTime
	state.Player.Vel[2] += state.Player.BaseVel[2] * params.FrameTime
	state.Player.BaseVel[2] = 0
	state.Player.Vel = clampVelocity(state.Player.Vel, params.MaxVelocity)

	// Move()
	if state.Place == PlaceGround {
		state.Player.Vel[2] = 0
	}

	// Accelerate()
	sy, cy := math32.Sincos(input.Yaw)
	forward := mgl32.Vec2{cy, sy}
	right := mgl32.Vec2{sy, -cy}
	accelDir := normalizeOrZero(forward.Mul(input.Forward).Add(right.Mul(input.Side)))

	wishSpeedCapped := state.WishSpeed
	if state.Place != PlaceGround {
		wishSpeedCapped = airWishSpeedCap
	}
	tmp := wishSpeedCapped - velXY(state.Player.Vel).Dot(accelDir)
	if tmp > 0 {
		accel := params.Accelerate
		if state.Place != PlaceGround {
			accel = params.AirAccelerate
		}

		accelSpeed := accel * state.WishSpeed * params.EntFriction * params.FrameTime
		if accelSpeed > tmp {
			accelSpeed = tmp
		}
		state.Player.Vel[0] += accelDir[0] * accelSpeed
		state.Player.Vel[1] += accelDir[1] * accelSpeed
	}

	state.Player.Vel = state.Player.Vel.Add(state.Player.BaseVel)

	switch state.Place {
	case PlaceGround:
		// WalkMove()
		if state.Player.Vel.LenSqr() < 1 {
			state.Player.Vel = mgl32.Vec3{}
		} else {
			// Walk with a trial step up, then back down.
			up := state

			tr := c.tracer.Trace(
				up.Player.Pos,
				up.Player.Pos.Add(mgl32.Vec3{0, 0, params.StepSize}),
				up.Player.Hull(),
			)
			if !tr.StartSolid && !tr.AllSolid {
				up.Player.Pos = tr.EndPos
			}
			flyMove(c.tracer, params, &up)

			tr = c.tracer.Trace(
				up.Player.Pos,
				up.Player.Pos.Sub(mgl32.Vec3{0, 0, params.StepSize}),
				up.Player.Hull(),
			)
			if !tr.StartSolid && !tr.AllSolid {
				up.Player.Pos = tr.EndPos
			}

			// Walk without stepping.
			down := state
			flyMove(c.tracer, params, &down)

			// Take whichever went the furthest, unless the step landed on a
			// non-walkable surface.
			upDist := hzDistSqr(state.Player.Pos, up.Player.Pos)
			downDist := hzDistSqr(state.Player.Pos, down.Player.Pos)
			if tr.PlaneNormal[2] < groundNormalZ || downDist > upDist {
				state = down
			} else {
				state = up
				state.Player.Vel[2] = down.Player.Vel[2]
			}
		}
	case PlaceAir:
		// AirMove()
		flyMove(c.tracer, params, &state)
	case PlaceWater:
	}

	state.updatePlace(c.tracer)
	state.Player.Vel = state.Player.Vel.Sub(state.Player.BaseVel)
	state.Player.Vel = clampVelocity(state.Player.Vel, params.MaxVelocity)

	switch state.Place {
	case PlaceAir:
		// FixupGravityVelocity()
		state.Player.Vel[2] -= entGravity * params.Gravity * 0.5 * params.FrameTime
		state.Player.Vel = clampVelocity(state.Player.Vel, params.MaxVelocity)
	case PlaceGround:
		state.Player.Vel[2] = 0
	case PlaceWater:
	}

	state.PrevFrameInput = input

	return state, input
}
