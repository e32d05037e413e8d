// Package script describes scripted player intent: run-length-encoded frame
// bulks of identical per-frame inputs and automated behaviors, plus the
// script-level container they live in.
package script

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// StrafeType selects the turning-angle policy of automated strafing.
type StrafeType uint8

const (
	// MaxAccel turns by the angle giving the highest speed gain.
	MaxAccel StrafeType = iota
	// MaxAngle turns by the highest angle that still gains speed.
	MaxAngle
	// MaxDeccel turns directly against the velocity.
	MaxDeccel
	// ConstYawspeed rotates the camera at a fixed angular speed.
	ConstYawspeed
	// MaxAccelYawOffset strafes for speed while nudging the camera yaw by a
	// per-frame ramped offset.
	MaxAccelYawOffset
)

// StrafeDir selects which way automated strafing turns.
type StrafeDir uint8

const (
	DirLeft StrafeDir = iota
	DirRight
	DirBest
	DirYaw
	DirPoint
	DirLine
	DirLeftRight
	DirRightLeft
)

// YawOffsetRamp configures the MaxAccelYawOffset camera offset, in degrees.
// The running offset starts at Start, changes by Accel every frame and is
// clamped between Start and Target.
type YawOffsetRamp struct {
	Start  float32 `json:"start"`
	Target float32 `json:"target"`
	Accel  float32 `json:"accel"`
}

// StrafeSettings describes one automated strafing directive.
type StrafeSettings struct {
	Type StrafeType `json:"type"`
	Dir  StrafeDir  `json:"dir"`

	// Yaw is the absolute target yaw in degrees, for DirYaw and DirLine.
	Yaw float32 `json:"yaw,omitempty"`
	// Point is the target position, for DirPoint.
	Point mgl32.Vec2 `json:"point,omitempty"`
	// Count is the per-side frame count for DirLeftRight and DirRightLeft.
	Count uint32 `json:"count,omitempty"`
	// Yawspeed is the camera angular speed in degrees per second, for
	// ConstYawspeed.
	Yawspeed float32 `json:"yawspeed,omitempty"`
	// YawOffset configures MaxAccelYawOffset.
	YawOffset YawOffsetRamp `json:"yaw_offset,omitempty"`
}

// AutoMovement is either an automated strafing directive or an explicit yaw
// override; exactly one of the fields is set.
type AutoMovement struct {
	Strafe *StrafeSettings `json:"strafe,omitempty"`
	// SetYaw is an explicit camera yaw in degrees.
	SetYaw *float32 `json:"set_yaw,omitempty"`
}

// Times is an activation-duration policy for an automated action. Zero means
// unlimited within the frame bulk, which is the only policy the simulation
// core acts upon; positive values are budget hints for outer tooling.
type Times uint32

// UnlimitedWithinFrameBulk keeps the action active on every frame of the bulk.
const UnlimitedWithinFrameBulk Times = 0

// LeaveGroundType selects how an automated leave-ground action gets airborne.
type LeaveGroundType uint8

const (
	LeaveGroundJump LeaveGroundType = iota
	LeaveGroundDuckTap
)

// LeaveGroundSpeed gates an automated leave-ground action on its effect on
// horizontal speed.
type LeaveGroundSpeed uint8

const (
	// SpeedAny takes the action unconditionally.
	SpeedAny LeaveGroundSpeed = iota
	// SpeedOptimal takes the action only if it yields strictly greater
	// horizontal speed on the next frame.
	SpeedOptimal
	// SpeedOptimalWithFullMaxspeed never acts automatically; the decision is
	// left to an exhaustive external optimizer.
	SpeedOptimalWithFullMaxspeed
)

// LeaveGroundAction automates jumping or duck-tapping off the ground.
type LeaveGroundAction struct {
	Speed LeaveGroundSpeed `json:"speed"`
	Times Times            `json:"times"`
	Type  LeaveGroundType  `json:"kind"`
	// ZeroMs requests the 0 ms duck-tap variant.
	ZeroMs bool `json:"zero_ms,omitempty"`
}

// JumpBug automates the jump-bug exploit while airborne.
type JumpBug struct {
	Times Times `json:"times"`
}

// DuckBeforeCollision pre-emptively ducks when ducking provably changes an
// upcoming collision favorably.
type DuckBeforeCollision struct {
	Times             Times `json:"times"`
	IncludingCeilings bool  `json:"including_ceilings,omitempty"`
}

// DuckBeforeGround pre-emptively ducks when the player is about to land.
type DuckBeforeGround struct {
	Times Times `json:"times"`
}

// AutoActions carries every automated directive of a frame bulk. Nil fields
// are inactive.
type AutoActions struct {
	Movement            *AutoMovement        `json:"movement,omitempty"`
	LeaveGround         *LeaveGroundAction   `json:"leave_ground,omitempty"`
	JumpBug             *JumpBug             `json:"jump_bug,omitempty"`
	DuckBeforeCollision *DuckBeforeCollision `json:"duck_before_collision,omitempty"`
	DuckBeforeGround    *DuckBeforeGround    `json:"duck_before_ground,omitempty"`
}

// ActionKeys are the held action keys of a frame bulk.
type ActionKeys struct {
	Jump bool `json:"jump,omitempty"`
	Duck bool `json:"duck,omitempty"`
	Use  bool `json:"use,omitempty"`
}

// MovementKeys are the held movement keys of a frame bulk. The simulation
// core only reads inputs synthesized by automated strafing; movement keys are
// carried for scripts that drive the engine directly.
type MovementKeys struct {
	Forward bool `json:"forward,omitempty"`
	Left    bool `json:"left,omitempty"`
	Right   bool `json:"right,omitempty"`
	Back    bool `json:"back,omitempty"`
	Up      bool `json:"up,omitempty"`
	Down    bool `json:"down,omitempty"`
}

// FrameBulk is a run-length-encoded batch of identical per-frame directives.
type FrameBulk struct {
	AutoActions  AutoActions  `json:"auto_actions"`
	MovementKeys MovementKeys `json:"movement_keys"`
	ActionKeys   ActionKeys   `json:"action_keys"`

	// FrameTime is the verbatim frame-time string as written in the script.
	// The engine parses this string itself, so it is kept unmodified to stay
	// bit-exact; ParseFrameTime yields the numeric value.
	FrameTime string `json:"frame_time"`

	// Pitch is an explicit view pitch override in degrees, if any.
	Pitch *float32 `json:"pitch,omitempty"`

	// FrameCount is the number of frames this bulk repeats for.
	FrameCount uint32 `json:"frame_count"`

	// Console holds console commands to run on the first frame of the bulk.
	Console string `json:"console,omitempty"`
}

// WithFrameTime returns a one-frame bulk with the given frame time and no
// held keys or automated actions.
func WithFrameTime(frameTime string) FrameBulk {
	return FrameBulk{
		FrameTime:  frameTime,
		FrameCount: 1,
	}
}

// ParseFrameTime parses the verbatim frame-time string into seconds.
func (f *FrameBulk) ParseFrameTime() (float32, error) {
	v, err := strconv.ParseFloat(f.FrameTime, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing frame time %q", f.FrameTime)
	}
	return float32(v), nil
}

// Validate reports the first structural problem of the bulk, if any.
func (f *FrameBulk) Validate() error {
	if f.FrameCount == 0 {
		return errors.New("frame count must be at least 1")
	}
	ft, err := f.ParseFrameTime()
	if err != nil {
		return err
	}
	if ft <= 0 {
		return errors.Errorf("frame time %q is not positive", f.FrameTime)
	}

	if m := f.AutoActions.Movement; m != nil {
		if (m.Strafe == nil) == (m.SetYaw == nil) {
			return errors.New("auto movement must set exactly one of strafe and set_yaw")
		}
		if s := m.Strafe; s != nil {
			if s.Type > MaxAccelYawOffset {
				return errors.Errorf("unknown strafe type %d", s.Type)
			}
			if s.Dir > DirRightLeft {
				return errors.Errorf("unknown strafe dir %d", s.Dir)
			}
			if (s.Dir == DirLeftRight || s.Dir == DirRightLeft) && s.Count == 0 {
				return errors.New("left-right strafing needs a cycle count of at least 1")
			}
			if s.Type == ConstYawspeed && s.Yawspeed <= 0 {
				return errors.New("constant yawspeed strafing needs a positive yawspeed")
			}
		}
	}
	if a := f.AutoActions.LeaveGround; a != nil {
		if a.Type > LeaveGroundDuckTap {
			return errors.Errorf("unknown leave-ground action type %d", a.Type)
		}
		if a.Speed > SpeedOptimalWithFullMaxspeed {
			return errors.Errorf("unknown leave-ground speed policy %d", a.Speed)
		}
	}
	return nil
}

// WithoutLeaveGround returns a copy of the bulk with the leave-ground action
// cleared. Lookahead steps use it to simulate the follow-up frame of a
// duck-tap without recursing into the action again.
func (f *FrameBulk) WithoutLeaveGround() FrameBulk {
	c := *f
	c.AutoActions.LeaveGround = nil
	return c
}
