package sim

import "github.com/go-gl/mathgl/mgl32"

// Player is the physical state of one simulated player.
type Player struct {
	// Pos is the position of the hull origin; a standing player on a floor
	// at z = 0 has Pos[2] = 36.
	Pos mgl32.Vec3 `json:"pos"`
	// Vel is the velocity.
	Vel mgl32.Vec3 `json:"vel"`
	// BaseVel is the base velocity, e.g. from standing on a conveyor belt.
	// It is added before the move and removed again after it.
	BaseVel mgl32.Vec3 `json:"base_vel"`
	// Ducking reports whether the player is fully ducked.
	Ducking bool `json:"ducking"`
	// InDuckAnimation reports whether the player is in the process of
	// ducking down.
	InDuckAnimation bool `json:"in_duck_animation"`
	// DuckTime is the ducking animation timer, in milliseconds.
	DuckTime int32 `json:"duck_time"`
	// StaminaTime is the stamina timer for games that have one.
	StaminaTime float32 `json:"stamina_time"`
	// Health and Armor are carried for completeness; they have no effect on
	// movement.
	Health float32 `json:"health"`
	Armor  float32 `json:"armor"`
}

// Hull returns the collision hull matching the player's ducking state.
func (p *Player) Hull() Hull {
	if p.Ducking {
		return HullDucked
	}
	return HullStanding
}

// Parameters are the movement constants of one simulation. They are copied by
// value and never mutated during a frame; every field is required, the core
// applies no defaults.
type Parameters struct {
	FrameTime     float32 `json:"frame_time"`
	MaxVelocity   float32 `json:"max_velocity"`
	MaxSpeed      float32 `json:"max_speed"`
	StopSpeed     float32 `json:"stop_speed"`
	Friction      float32 `json:"friction"`
	EdgeFriction  float32 `json:"edge_friction"`
	EntFriction   float32 `json:"ent_friction"`
	Accelerate    float32 `json:"accelerate"`
	AirAccelerate float32 `json:"air_accelerate"`
	Gravity       float32 `json:"gravity"`
	EntGravity    float32 `json:"ent_gravity"`
	StepSize      float32 `json:"step_size"`
	Bounce        float32 `json:"bounce"`

	BhopCap              bool    `json:"bhop_cap"`
	BhopCapMultiplier    float32 `json:"bhop_cap_multiplier"`
	BhopCapMaxSpeedScale float32 `json:"bhop_cap_max_speed_scale"`

	UseSlowDown           bool `json:"use_slow_down"`
	HasStamina            bool `json:"has_stamina"`
	DuckAnimationSlowDown bool `json:"duck_animation_slow_down"`
}

// Place is where the player is relative to the world. It is never set
// directly by gameplay logic, only recomputed by the settle operation after a
// position change.
type Place uint8

const (
	// PlaceGround means the player is standing on walkable ground.
	PlaceGround Place = iota
	// PlaceAir means the player is airborne.
	PlaceAir
	// PlaceWater means the player is underwater.
	PlaceWater
)
