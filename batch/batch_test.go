package batch_test

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tasuite/strafesim/batch"
	"github.com/tasuite/strafesim/script"
	"github.com/tasuite/strafesim/sim"
	"github.com/tasuite/strafesim/world"
)

func testParams() sim.Parameters {
	return sim.Parameters{
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
	}
}

func strafeScript(yaw float32, frames uint32) *script.Script {
	s := script.New()
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
				Speed: script.SpeedAny,
				Type:  script.LeaveGroundJump,
			},
		},
		FrameTime:  "0.010000001",
		FrameCount: frames,
	})
	return s
}

func TestRunnerSimulatesAllTimelines(t *testing.T) {
	params := testParams()
	initial := sim.Player{Pos: mgl32.Vec3{0, 0, 36}}

	var timelines []batch.Timeline
	for yaw := 0; yaw < 8; yaw++ {
		timelines = append(timelines, batch.NewTimeline(
			world.Plane{}, params, initial, strafeScript(float32(yaw*45), 50),
		))
	}

	runner := batch.Runner{Workers: 4}
	results, err := runner.Run(context.Background(), timelines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(timelines) {
		t.Fatalf("expected %d results, got %d", len(timelines), len(results))
	}

	for i, res := range results {
		if res.ID != timelines[i].ID {
			t.Fatalf("result %d carries ID %v, expected %v", i, res.ID, timelines[i].ID)
		}
		if res.Frames != 50 {
			t.Fatalf("result %d simulated %d frames, expected 50", i, res.Frames)
		}
		if res.Fingerprint != res.Final.Fingerprint() {
			t.Fatalf("result %d fingerprint does not match its final state", i)
		}
	}
}

func TestRunnerIsDeterministicAcrossWorkerCounts(t *testing.T) {
	params := testParams()
	initial := sim.Player{Pos: mgl32.Vec3{0, 0, 36}}

	run := func(workers int) []uint64 {
		var timelines []batch.Timeline
		for yaw := 0; yaw < 6; yaw++ {
			timelines = append(timelines, batch.NewTimeline(
				world.Plane{}, params, initial, strafeScript(float32(yaw*60), 100),
			))
		}

		runner := batch.Runner{Workers: workers}
		results, err := runner.Run(context.Background(), timelines)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		fingerprints := make([]uint64, len(results))
		for i, res := range results {
			fingerprints[i] = res.Fingerprint
		}
		return fingerprints
	}

	serial := run(1)
	parallel := run(4)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("timeline %d diverged across worker counts: %v vs %v",
				i, serial[i], parallel[i])
		}
	}
}

func TestRunnerAppliesBulkFrameTime(t *testing.T) {
	params := testParams()

	// The script's frame time, not the timeline's, drives the integration.
	s := script.New()
	s.Push(script.FrameBulk{FrameTime: "0.05", FrameCount: 4})

	runner := batch.Runner{Workers: 1}
	results, err := runner.Run(context.Background(), []batch.Timeline{
		batch.NewTimeline(world.Plane{}, params, sim.Player{Pos: mgl32.Vec3{0, 0, 1000}}, s),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Four frames of free fall at 50 ms each.
	want := -params.Gravity * 0.05 * 4
	if got := results[0].Final.Player.Vel[2]; got < want-0.01 || got > want+0.01 {
		t.Fatalf("expected vertical velocity %v after four 50 ms frames, got %v", want, got)
	}
}

func TestRunnerRejectsInvalidScripts(t *testing.T) {
	params := testParams()

	bad := script.New()
	bad.Push(script.FrameBulk{FrameTime: "0.01"}) // FrameCount missing.

	runner := batch.Runner{}
	_, err := runner.Run(context.Background(), []batch.Timeline{
		batch.NewTimeline(world.Plane{}, params, sim.Player{}, bad),
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestRunnerRejectsMissingTracer(t *testing.T) {
	runner := batch.Runner{}
	_, err := runner.Run(context.Background(), []batch.Timeline{
		{Script: strafeScript(0, 10)},
	})
	if err == nil {
		t.Fatal("expected an error for a missing tracer")
	}
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	params := testParams()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var timelines []batch.Timeline
	for i := 0; i < 32; i++ {
		timelines = append(timelines, batch.NewTimeline(
			world.Plane{}, params, sim.Player{Pos: mgl32.Vec3{0, 0, 36}},
			strafeScript(90, 100),
		))
	}

	runner := batch.Runner{Workers: 2}
	results, err := runner.Run(ctx, timelines)
	if err == nil {
		t.Fatal("expected a context error")
	}
	for i, res := range results {
		if res.ID != timelines[i].ID {
			t.Fatalf("result %d lost its timeline ID", i)
		}
	}
}
