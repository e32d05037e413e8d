package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tasuite/strafesim/batch"
	"github.com/tasuite/strafesim/script"
	"github.com/tasuite/strafesim/sim"
	"github.com/tasuite/strafesim/world"
)

// The following program brute-forces the initial yaw of a short bunnyhop
// script on a flat floor and reports the candidate with the highest final
// horizontal speed.
func main() {
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			panic(err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
	}

	params := sim.Parameters{
		FrameTime:   0.010000001,
		MaxVelocity: 2000,
		MaxSpeed:    320,
		StopSpeed:   100,

		Friction:     4,
		EdgeFriction: 2,
		EntFriction:  1,

		Accelerate:    10,
		AirAccelerate: 10,

		Gravity:    800,
		EntGravity: 1,

		StepSize: 18,
		Bounce:   1,

		UseSlowDown: true,
	}

	initial := sim.Player{
		Pos:    mgl32.Vec3{0, 0, 36},
		Health: 100,
	}

	timelines := make([]batch.Timeline, 0, 360)
	for yaw := 0; yaw < 360; yaw++ {
		timelines = append(timelines, batch.NewTimeline(
			world.Plane{}, params, initial, candidateScript(float32(yaw)),
		))
	}

	runner := batch.Runner{}
	if os.Getenv("SIM_DEBUG") != "" {
		runner.Debugf = func(format string, args ...any) {
			fmt.Printf(format+"\n", args...)
		}
	}

	results, err := runner.Run(context.Background(), timelines)
	if err != nil {
		panic(err)
	}

	bestYaw, bestSpeed := -1, float32(0)
	for i, res := range results {
		speed := math32.Hypot(res.Final.Player.Vel[0], res.Final.Player.Vel[1])
		if speed > bestSpeed {
			bestYaw, bestSpeed = i, speed
		}
	}
	fmt.Printf("best initial yaw: %d deg, final speed %.3f ups over %d frames\n",
		bestYaw, bestSpeed, results[bestYaw].Frames)
}

// candidateScript is a 1000-frame autohop with optimal left-right strafing,
// starting from the given yaw.
func candidateScript(yaw float32) *script.Script {
	s := script.New()
	s.SetProperty("frametime0ms", "0.0000000001")

	s.Push(script.FrameBulk{
		AutoActions: script.AutoActions{
			Movement: &script.AutoMovement{
				Strafe: &script.StrafeSettings{
					Type: script.MaxAccel,
					Dir:  script.DirYaw,
					Yaw:  yaw,
				},
			},
			LeaveGround: &script.LeaveGroundAction{
				Speed: script.SpeedOptimal,
				Type:  script.LeaveGroundJump,
			},
		},
		FrameTime:  "0.010000001",
		FrameCount: 1000,
	})
	return s
}
