package sim

import (
	"github.com/tasuite/strafesim/script"
)

// The steps in this file share one pattern: simulate the rest of the frame
// twice, once doing nothing and once taking an automated action, then commit
// to whichever continuation the directive's policy prefers. The branches run
// on value copies of the state, so they cannot observe each other.

// stepJumpBug speculatively performs the jump-bug exploit: while airborne,
// duck (or jump, if already ducked) exactly so that a jump registers on the
// single frame where the engine sees the player grounded and ducked.
func stepJumpBug(c stepCtx, i int, state State, input Input) (State, Input) {
	nothingState, nothingInput := c.run(i+1, state, input)

	jb := c.bulk.AutoActions.JumpBug
	if jb == nil || jb.Times != script.UnlimitedWithinFrameBulk {
		return nothingState, nothingInput
	}

	if state.Place != PlaceAir {
		return nothingState, nothingInput
	}

	if state.Player.Ducking {
		if input.Duck {
			return nothingState, nothingInput
		}

		input.Jump = true
		actionState, actionInput := c.run(i+1, state, input)
		if actionState.Jumped {
			return actionState, actionInput
		}
		return nothingState, nothingInput
	}

	input.Duck = true

	// The duck frame.
	actionState, actionInput := c.run(i+1, state, input)
	if actionState.Place != PlaceAir {
		return nothingState, nothingInput
	}

	// The unduck + jump frame.
	next, _ := actionState.Simulate(c.tracer, c.params, c.bulk)
	if next.Jumped {
		return actionState, actionInput
	}
	return nothingState, nothingInput
}

// stepLeaveGround automates jumping or duck-tapping off the ground.
func stepLeaveGround(c stepCtx, i int, state State, input Input) (State, Input) {
	nothingState, nothingInput := c.run(i+1, state, input)

	action := c.bulk.AutoActions.LeaveGround
	if action == nil || action.Times != script.UnlimitedWithinFrameBulk {
		return nothingState, nothingInput
	}

	if state.Place != PlaceGround {
		return nothingState, nothingInput
	}

	if action.Speed != script.SpeedAny && velXY(state.Player.Vel).Len() < 30 {
		return nothingState, nothingInput
	}

	var (
		actionState  State
		actionInput  Input
		speedNothing float32
		speedAction  float32
	)

	switch action.Type {
	case script.LeaveGroundJump:
		input.Jump = true
		actionState, actionInput = c.run(i+1, state, input)
		speedNothing = velXY(nothingState.Player.Vel).LenSqr()
		speedAction = velXY(actionState.Player.Vel).LenSqr()

	case script.LeaveGroundDuckTap:
		// TODO: zero-ms ducktaps.

		if state.PrevFrameInput.Duck {
			return nothingState, nothingInput
		}

		if state.Player.Ducking {
			// Already ducking; try to unduck first.
			input.Duck = false
			actionState, actionInput = c.run(i+1, state, input)

			if actionState.Player.Ducking {
				// Unducking didn't work.
				return nothingState, nothingInput
			}
			// Unducking worked, the ducktap happens next frame.
			return actionState, actionInput
		}

		input.Duck = true
		actionState, actionInput = c.run(i+1, state, input)

		// The ducktap itself lands one frame later, so compare the states
		// two frames ahead. The follow-up frame runs without the
		// leave-ground action to keep the lookahead from recursing forward
		// without bound.
		bulkWithoutAction := c.bulk.WithoutLeaveGround()
		nextNothing, _ := nothingState.Simulate(c.tracer, c.params, &bulkWithoutAction)

		var nextAction State
		if c.params.DuckAnimationSlowDown {
			// Games that slow the player during the duck animation would
			// bias the comparison against ducktapping, so predict with the
			// slowdown ignored; the unaffected action branch is still what
			// gets returned.
			noSlowCtx := c
			noSlowCtx.params.DuckAnimationSlowDown = false

			noSlowState, _ := noSlowCtx.run(i+1, state, input)
			nextAction, _ = noSlowState.Simulate(c.tracer, c.params, &bulkWithoutAction)
		} else {
			nextAction, _ = actionState.Simulate(c.tracer, c.params, &bulkWithoutAction)
		}

		speedNothing = velXY(nextNothing.Player.Vel).LenSqr()
		speedAction = velXY(nextAction.Player.Vel).LenSqr()
	}

	switch action.Speed {
	case script.SpeedAny:
		return actionState, actionInput

	case script.SpeedOptimal:
		strafe := strafeSettings(c.bulk)
		if strafe == nil || strafe.Type != script.MaxAccel {
			return nothingState, nothingInput
		}

		if speedAction > speedNothing {
			return actionState, actionInput
		}
		return nothingState, nothingInput

	default:
		// SpeedOptimalWithFullMaxspeed: the choice is left to an exhaustive
		// external optimizer.
		return nothingState, nothingInput
	}
}

// stepDuckBeforeCollision pre-emptively ducks when ducking provably improves
// an upcoming collision: the move gets further, or it hits a usable surface
// where doing nothing hits none.
func stepDuckBeforeCollision(c stepCtx, i int, state State, input Input) (State, Input) {
	nothingState, nothingInput := c.run(i+1, state, input)

	dbc := c.bulk.AutoActions.DuckBeforeCollision
	if dbc == nil || dbc.Times != script.UnlimitedWithinFrameBulk {
		return nothingState, nothingInput
	}

	if input.Duck {
		// Duck is already pressed.
		return nothingState, nothingInput
	}

	if nothingState.Player.Ducking {
		// We will duck anyway.
		return nothingState, nothingInput
	}

	input.Duck = true
	actionState, actionInput := c.run(i+1, state, input)

	if !actionState.Player.Ducking {
		// We couldn't duck instantly.
		return nothingState, nothingInput
	}

	n := min(nothingState.MoveTraceCount, actionState.MoveTraceCount)
	for k := 0; k < n; k++ {
		trNothing := &nothingState.MoveTraces[k]
		trAction := &actionState.MoveTraces[k]

		if trNothing.PlaneNormal[2] >= groundNormalZ {
			// A ground plane; that's duck-before-ground's job.
			return nothingState, nothingInput
		}

		if trNothing.Fraction > trAction.Fraction {
			// We went further without ducking.
			return nothingState, nothingInput
		}

		if trNothing.Fraction < trAction.Fraction {
			// We went further after ducking.
			if trNothing.PlaneNormal[2] == -1 && !dbc.IncludingCeilings {
				// Ceiling hits don't count here.
				return nothingState, nothingInput
			}

			return actionState, actionInput
		}
	}

	return nothingState, nothingInput
}

// stepDuckBeforeGround pre-emptively ducks when the player would land this
// frame, so that the landing happens ducked.
func stepDuckBeforeGround(c stepCtx, i int, state State, input Input) (State, Input) {
	nothingState, nothingInput := c.run(i+1, state, input)

	dbg := c.bulk.AutoActions.DuckBeforeGround
	if dbg == nil || dbg.Times != script.UnlimitedWithinFrameBulk {
		return nothingState, nothingInput
	}

	if input.Duck {
		// Duck is already pressed.
		return nothingState, nothingInput
	}

	if nothingState.Player.Ducking {
		// We will duck anyway.
		return nothingState, nothingInput
	}

	if state.Place == PlaceGround {
		// Already on ground.
		return nothingState, nothingInput
	}

	input.Duck = true
	actionState, actionInput := c.run(i+1, state, input)

	if !actionState.Player.Ducking {
		// We couldn't duck instantly.
		return nothingState, nothingInput
	}

	if nothingState.Place == PlaceGround {
		// Doing nothing lands this frame, so duck.
		return actionState, actionInput
	}

	for k := 0; k < nothingState.MoveTraceCount; k++ {
		if nothingState.MoveTraces[k].PlaneNormal[2] >= groundNormalZ {
			// Doing nothing touches a ground plane along the way, so duck.
			return actionState, actionInput
		}
	}

	return nothingState, nothingInput
}
