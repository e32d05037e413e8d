package sim

import "github.com/tasuite/strafesim/script"

// stepFunc is one unit of the frame pipeline. It receives its own index in
// the chain and simulates from itself to the end of the frame, usually by
// doing its work and delegating to c.run(i+1, ...). Lookahead steps invoke
// the remainder of the chain more than once on value copies of the state.
type stepFunc func(c stepCtx, i int, state State, input Input) (State, Input)

// stepCtx carries the per-frame constants every step reads.
type stepCtx struct {
	tracer Tracer
	params Parameters
	bulk   *script.FrameBulk
}

// chain is the fixed frame pipeline, in execution order. The order is
// semantically significant: e.g. Friction must see pre-strafe inputs, and the
// lookahead steps must wrap everything whose outcome they compare.
//
// The lookahead steps re-enter the chain, so a package-level initializer
// would be an initialization cycle; init fills it in instead.
var chain [11]stepFunc

func init() {
	chain = [...]stepFunc{
		stepResetFields,
		stepJumpBug,
		stepLeaveGround,
		stepDuckBeforeCollision,
		stepDuckBeforeGround,
		stepDuck,
		stepUse,
		stepJump,
		stepFriction,
		stepStrafe,
		stepMove,
	}
}

// run executes the chain from step i to the end of the frame.
func (c stepCtx) run(i int, state State, input Input) (State, Input) {
	return chain[i](c, i, state, input)
}
