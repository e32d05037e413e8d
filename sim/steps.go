package sim

import (
	"github.com/chewxy/math32"

	"github.com/tasuite/strafesim/script"
)

// stepResetFields establishes this frame's base input from the frame bulk and
// resets the per-frame bookkeeping.
func stepResetFields(c stepCtx, i int, state State, input Input) (State, Input) {
	input.Jump = c.bulk.ActionKeys.Jump
	input.Duck = c.bulk.ActionKeys.Duck
	input.Use = c.bulk.ActionKeys.Use

	input.Yaw = state.PrevFrameInput.Yaw
	input.Pitch = state.PrevFrameInput.Pitch

	if m := c.bulk.AutoActions.Movement; m != nil && m.SetYaw != nil {
		input.Yaw = degToRad(*m.SetYaw)
	}
	if c.bulk.Pitch != nil {
		input.Pitch = degToRad(*c.bulk.Pitch)
	}

	state.WishSpeed = c.params.MaxSpeed
	state.Jumped = false
	state.clearMoveTraces()

	strafe := strafeSettings(c.bulk)

	if strafe == nil || (strafe.Dir != script.DirLeftRight && strafe.Dir != script.DirRightLeft) {
		state.StrafeCycleFrameCount = 0
	}

	if strafe != nil && strafe.Type == script.MaxAccelYawOffset {
		start := strafe.YawOffset.Start
		target := strafe.YawOffset.Target
		accel := strafe.YawOffset.Accel
		right := strafe.Dir == script.DirRight

		// Ramp the offset, clamped between the start and target bounds.
		state.MaxAccelYawOffsetValue = math32.Min(
			math32.Max(state.MaxAccelYawOffsetValue+accel, start), target)

		// Reset the running value whenever the configuration differs from
		// the one it was ramped under, so that splitting a bulk at a frame
		// boundary has no side effects.
		if start != state.PrevMaxAccelYawOffsetStart ||
			target != state.PrevMaxAccelYawOffsetTarget ||
			accel != state.PrevMaxAccelYawOffsetAccel ||
			right != state.PrevMaxAccelYawOffsetRight {
			if math32.Signbit(accel) {
				state.MaxAccelYawOffsetValue = target
			} else {
				state.MaxAccelYawOffsetValue = start
			}

			state.PrevMaxAccelYawOffsetStart = start
			state.PrevMaxAccelYawOffsetTarget = target
			state.PrevMaxAccelYawOffsetAccel = accel
			state.PrevMaxAccelYawOffsetRight = right
		}
	}

	return c.run(i+1, state, input)
}

// strafeSettings returns the bulk's automated strafing settings, or nil.
func strafeSettings(bulk *script.FrameBulk) *script.StrafeSettings {
	if m := bulk.AutoActions.Movement; m != nil {
		return m.Strafe
	}
	return nil
}

// stepDuck advances the ducking state machine.
func stepDuck(c stepCtx, i int, state State, input Input) (State, Input) {
	// ReduceTimers()
	state.Player.DuckTime = max(state.Player.DuckTime-int32(c.params.FrameTime*1000), 0)

	// Duck()
	if state.Player.Ducking ||
		(c.params.DuckAnimationSlowDown && (state.Player.InDuckAnimation || input.Duck)) {
		state.WishSpeed *= 0.333
	}

	if input.Duck || state.Player.Ducking || state.Player.InDuckAnimation {
		if input.Duck {
			if !state.PrevFrameInput.Duck && !state.Player.Ducking {
				state.Player.DuckTime = 1000
				state.Player.InDuckAnimation = true
			}

			if state.Player.InDuckAnimation &&
				(state.Player.DuckTime <= 600 || state.Place != PlaceGround) {
				state.Player.Ducking = true
				state.Player.InDuckAnimation = false
				if state.Place == PlaceGround {
					state.Player.Pos[2] -= 18
					state.updatePlace(c.tracer)
				}
			}
		} else {
			// Unduck only if both the ducked and the standing hull are free
			// at the candidate standing position.
			newPos := state.Player.Pos
			if state.Place == PlaceGround {
				newPos[2] += 18
			}

			tr := c.tracer.Trace(newPos, newPos, state.Player.Hull())
			if !tr.StartSolid {
				tr = c.tracer.Trace(newPos, newPos, HullStanding)
				if !tr.StartSolid {
					state.Player.Ducking = false
					state.Player.InDuckAnimation = false
					state.Player.DuckTime = 0
					state.Player.Pos = newPos
					state.updatePlace(c.tracer)
				}
			}
		}
	}

	return c.run(i+1, state, input)
}

// stepUse applies the on-ground slowdown of the use key.
func stepUse(c stepCtx, i int, state State, input Input) (State, Input) {
	if c.params.UseSlowDown && input.Use && state.Place == PlaceGround {
		state.Player.Vel = state.Player.Vel.Mul(0.3)
	}

	return c.run(i+1, state, input)
}

// stepJump handles the jump key edge, the bunny-hop cap and the jump impulse.
func stepJump(c stepCtx, i int, state State, input Input) (State, Input) {
	if c.params.HasStamina {
		state.Player.StaminaTime = math32.Max(
			state.Player.StaminaTime-math32.Trunc(c.params.FrameTime*1000), 0)
	}

	if input.Jump && !state.PrevFrameInput.Jump && state.Place == PlaceGround {
		state.Jumped = true

		if c.params.BhopCap {
			maxScaledSpeed := c.params.BhopCapMaxSpeedScale * c.params.MaxSpeed
			if maxScaledSpeed > 0 {
				speed := state.Player.Vel.Len()
				if speed > maxScaledSpeed {
					state.Player.Vel = state.Player.Vel.Mul(
						(maxScaledSpeed / speed) * c.params.BhopCapMultiplier)
				}
			}
		}

		state.Player.Vel[2] = math32.Sqrt(2 * 800 * 45)

		if c.params.HasStamina {
			state.Player.Vel[2] *= (100 - (state.Player.StaminaTime/1000)*19) / 100
			state.Player.StaminaTime = 25000.0 / 19
		}

		state.Player.Vel = clampVelocity(state.Player.Vel, c.params.MaxVelocity)
		state.updatePlace(c.tracer)
	}

	return c.run(i+1, state, input)
}

// stepFriction applies ground friction, boosted near edges, plus the stamina
// speed penalty.
func stepFriction(c stepCtx, i int, state State, input Input) (State, Input) {
	if state.Place == PlaceGround {
		speed := state.Player.Vel.Len()
		if speed >= 0.1 {
			friction := c.params.Friction * c.params.EntFriction

			// Probe ahead of the leading edge; no ground there means the
			// player is about to walk off a drop, which boosts friction.
			start := state.Player.Pos.Add(state.Player.Vel.Mul(16 / speed))
			if state.Player.Ducking {
				start[2] = state.Player.Pos[2] - 18
			} else {
				start[2] = state.Player.Pos[2] - 36
			}
			end := start
			end[2] -= 34

			tr := c.tracer.Trace(start, end, state.Player.Hull())
			if tr.Fraction == 1 {
				friction *= c.params.EdgeFriction
			}

			control := math32.Max(speed, c.params.StopSpeed)
			drop := control * friction * c.params.FrameTime
			newSpeed := math32.Max(speed-drop, 0)

			state.Player.Vel = state.Player.Vel.Mul(newSpeed / speed)
		}

		if c.params.HasStamina {
			// This belongs to the engine's walk move, but it has to run
			// before the Strafe step changes the player's speed.
			factor := (100 - (state.Player.StaminaTime/1000)*19) / 100
			state.Player.Vel[0] *= factor
			state.Player.Vel[1] *= factor
		}
	}

	state.Player.Vel = clampVelocity(state.Player.Vel, c.params.MaxVelocity)
	return c.run(i+1, state, input)
}
