package sim

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"

	"github.com/tasuite/strafesim/internal"
	"github.com/tasuite/strafesim/script"
)

// maxMoveTraces is how many collision traces one move can record.
const maxMoveTraces = 4

// State is the full frame-to-frame carry of one simulated timeline. It is
// fully determined by the previous State, the Parameters and the FrameBulk
// being executed; no hidden global state influences the transformation.
//
// State copies by value, which is what makes speculative lookahead safe: the
// branches can never observe each other.
type State struct {
	Player Player `json:"player"`
	Place  Place  `json:"place"`
	// WishSpeed is the target horizontal speed the acceleration model steers
	// toward this frame.
	WishSpeed float32 `json:"wish_speed"`
	// PrevFrameInput is the input of the previous frame, needed to detect
	// key edges.
	PrevFrameInput Input `json:"prev_frame_input"`
	// Jumped reports whether a jump registered this frame.
	Jumped bool `json:"jumped"`

	// MoveTraces are the collision traces recorded by the last move, read by
	// the duck-before-ground and duck-before-collision lookahead.
	MoveTraces     [maxMoveTraces]TraceResult `json:"move_traces"`
	MoveTraceCount int                        `json:"move_trace_count"`

	// StrafeCycleFrameCount counts frames of a left-right or right-left
	// strafe wiggle, cycling from 0 to 2*count-1.
	StrafeCycleFrameCount uint32 `json:"strafe_cycle_frame_count"`

	// MaxAccelYawOffsetValue is the running camera yaw offset of the
	// max-accel-yaw-offset strafe style. The Prev* fields remember the
	// configuration it was ramped under, so that splitting a script at a
	// frame boundary never changes behavior.
	MaxAccelYawOffsetValue      float32 `json:"max_accel_yaw_offset_value"`
	PrevMaxAccelYawOffsetStart  float32 `json:"prev_max_accel_yaw_offset_start"`
	PrevMaxAccelYawOffsetTarget float32 `json:"prev_max_accel_yaw_offset_target"`
	PrevMaxAccelYawOffsetAccel  float32 `json:"prev_max_accel_yaw_offset_accel"`
	PrevMaxAccelYawOffsetRight  bool    `json:"prev_max_accel_yaw_offset_right"`
}

// NewState returns the state at the start of a script: the given player,
// settled onto the ground if there is any within reach.
func NewState(tracer Tracer, params Parameters, player Player) State {
	s := State{
		Player:    player,
		Place:     PlaceAir,
		WishSpeed: params.MaxSpeed,
	}
	s.updatePlace(tracer)
	return s
}

// Simulate runs one frame and returns the next state together with the final
// input that would be sent to the engine.
func (s State) Simulate(tracer Tracer, params Parameters, bulk *script.FrameBulk) (State, Input) {
	c := stepCtx{tracer: tracer, params: params, bulk: bulk}
	return c.run(0, s, Input{})
}

// updatePlace recomputes Place after a position change. When the probe finds
// walkable ground and did not start embedded in solid, the position snaps to
// the probe's stopping point; this is what keeps standing still numerically
// stable.
func (s *State) updatePlace(tracer Tracer) {
	s.Place = PlaceAir

	// Moving up too fast to be on ground even if touching it.
	if s.Player.Vel[2] > 180 {
		return
	}

	tr := tracer.Trace(
		s.Player.Pos,
		s.Player.Pos.Sub(mgl32.Vec3{0, 0, 2}),
		s.Player.Hull(),
	)
	if tr.Entity == NoEntity || tr.PlaneNormal[2] < 0.7 {
		return
	}

	s.Place = PlaceGround
	if !tr.StartSolid && !tr.AllSolid {
		s.Player.Pos = tr.EndPos
	}
}

// clearMoveTraces drops the recorded traces of the previous move.
func (s *State) clearMoveTraces() {
	s.MoveTraceCount = 0
}

// pushMoveTrace records a collision trace of the current move.
func (s *State) pushMoveTrace(tr TraceResult) {
	if s.MoveTraceCount < maxMoveTraces {
		s.MoveTraces[s.MoveTraceCount] = tr
		s.MoveTraceCount++
	}
}

// Traces returns the collision traces recorded by the last move.
func (s *State) Traces() []TraceResult {
	return s.MoveTraces[:s.MoveTraceCount]
}

// Fingerprint returns a hash identifying the state for optimizer search
// deduplication: two states with equal fingerprints evolve identically under
// the same parameters and script. Move traces are excluded since they are
// cleared before anything reads them on the following frame.
func (s *State) Fingerprint() uint64 {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.BufferPool.Put(buf)
	buf.Reset()

	putVec3(buf, s.Player.Pos)
	putVec3(buf, s.Player.Vel)
	putVec3(buf, s.Player.BaseVel)
	putBool(buf, s.Player.Ducking)
	putBool(buf, s.Player.InDuckAnimation)
	putU32(buf, uint32(s.Player.DuckTime))
	putF32(buf, s.Player.StaminaTime)
	putF32(buf, s.Player.Health)
	putF32(buf, s.Player.Armor)

	buf.WriteByte(byte(s.Place))
	putF32(buf, s.WishSpeed)

	putBool(buf, s.PrevFrameInput.Jump)
	putBool(buf, s.PrevFrameInput.Duck)
	putBool(buf, s.PrevFrameInput.Use)
	putF32(buf, s.PrevFrameInput.Pitch)
	putF32(buf, s.PrevFrameInput.Yaw)
	putF32(buf, s.PrevFrameInput.Forward)
	putF32(buf, s.PrevFrameInput.Side)

	putBool(buf, s.Jumped)
	putU32(buf, s.StrafeCycleFrameCount)
	putF32(buf, s.MaxAccelYawOffsetValue)
	putF32(buf, s.PrevMaxAccelYawOffsetStart)
	putF32(buf, s.PrevMaxAccelYawOffsetTarget)
	putF32(buf, s.PrevMaxAccelYawOffsetAccel)
	putBool(buf, s.PrevMaxAccelYawOffsetRight)

	return xxh3.Hash(buf.Bytes())
}

func putF32(buf *bytes.Buffer, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	buf.Write(b[:])
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putVec3(buf *bytes.Buffer, v mgl32.Vec3) {
	putF32(buf, v[0])
	putF32(buf, v[1])
	putF32(buf, v[2])
}

func putBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}
