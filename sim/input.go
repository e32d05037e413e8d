package sim

// Input is the concrete command sent to the engine for one frame. It is an
// output of simulation rather than a pure input: automated behaviors
// synthesize the keys and view angles that were actually pressed.
type Input struct {
	Jump bool `json:"jump"`
	Duck bool `json:"duck"`
	Use  bool `json:"use"`

	// Pitch and Yaw are view angles in radians.
	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
	// Forward and Side are the movement input magnitudes.
	Forward float32 `json:"forward"`
	Side    float32 `json:"side"`
}
