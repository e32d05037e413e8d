package script

import (
	"encoding/json"
	"testing"
)

func validBulk() FrameBulk {
	return FrameBulk{
		FrameTime:  "0.010000001",
		FrameCount: 1,
	}
}

func TestFrameBulkValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(*FrameBulk)
		wantErr bool
	}{
		{"valid", func(*FrameBulk) {}, false},
		{"zero frame count", func(f *FrameBulk) { f.FrameCount = 0 }, true},
		{"empty frame time", func(f *FrameBulk) { f.FrameTime = "" }, true},
		{"negative frame time", func(f *FrameBulk) { f.FrameTime = "-0.01" }, true},
		{"movement without directive", func(f *FrameBulk) {
			f.AutoActions.Movement = &AutoMovement{}
		}, true},
		{"movement with both directives", func(f *FrameBulk) {
			yaw := float32(90)
			f.AutoActions.Movement = &AutoMovement{
				Strafe: &StrafeSettings{Type: MaxAccel},
				SetYaw: &yaw,
			}
		}, true},
		{"left-right without count", func(f *FrameBulk) {
			f.AutoActions.Movement = &AutoMovement{
				Strafe: &StrafeSettings{Type: MaxAccel, Dir: DirLeftRight},
			}
		}, true},
		{"left-right with count", func(f *FrameBulk) {
			f.AutoActions.Movement = &AutoMovement{
				Strafe: &StrafeSettings{Type: MaxAccel, Dir: DirLeftRight, Count: 30},
			}
		}, false},
		{"const yawspeed without yawspeed", func(f *FrameBulk) {
			f.AutoActions.Movement = &AutoMovement{
				Strafe: &StrafeSettings{Type: ConstYawspeed, Dir: DirLeft},
			}
		}, true},
		{"strafe to yaw", func(f *FrameBulk) {
			f.AutoActions.Movement = &AutoMovement{
				Strafe: &StrafeSettings{Type: MaxAccel, Dir: DirYaw, Yaw: 45},
			}
		}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bulk := validBulk()
			tc.mutate(&bulk)

			err := bulk.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestScriptValidateEmpty(t *testing.T) {
	if err := New().Validate(); err == nil {
		t.Fatal("expected an error for a script with no frame bulks")
	}
}

func TestParseFrameTime(t *testing.T) {
	bulk := validBulk()
	ft, err := bulk.ParseFrameTime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ft != 0.010000001 {
		t.Fatalf("expected 0.010000001, got %v", ft)
	}

	bulk.FrameTime = "ten milliseconds"
	if _, err := bulk.ParseFrameTime(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestFramesExpansion(t *testing.T) {
	s := New()
	first := validBulk()
	first.FrameCount = 3
	second := validBulk()
	second.FrameCount = 2
	s.Push(first)
	s.Push(second)

	if got := s.TotalFrames(); got != 5 {
		t.Fatalf("expected 5 total frames, got %d", got)
	}

	wantBulk := []int{0, 0, 0, 1, 1}
	frame := 0
	for i, bulk := range s.Frames() {
		if i != frame {
			t.Fatalf("expected frame index %d, got %d", frame, i)
		}
		if want := &s.FrameBulks[wantBulk[frame]]; bulk != want {
			t.Fatalf("frame %d yielded the wrong bulk", frame)
		}
		frame++
	}
	if frame != 5 {
		t.Fatalf("expected 5 yields, got %d", frame)
	}
}

func TestWithoutLeaveGround(t *testing.T) {
	bulk := validBulk()
	bulk.AutoActions.LeaveGround = &LeaveGroundAction{Type: LeaveGroundJump}
	bulk.AutoActions.JumpBug = &JumpBug{}

	stripped := bulk.WithoutLeaveGround()
	if stripped.AutoActions.LeaveGround != nil {
		t.Fatal("expected the leave-ground action to be cleared")
	}
	if stripped.AutoActions.JumpBug == nil {
		t.Fatal("expected other actions to survive")
	}
	if bulk.AutoActions.LeaveGround == nil {
		t.Fatal("expected the original bulk to be untouched")
	}
}

func TestScriptJSONRoundTrip(t *testing.T) {
	s := New()
	s.SetProperty("seed", "413")
	s.SetProperty("demo", "run01")
	s.SetProperty("frametime0ms", "0.0000000001")

	bulk := validBulk()
	bulk.FrameCount = 100
	bulk.AutoActions.Movement = &AutoMovement{
		Strafe: &StrafeSettings{Type: MaxAccel, Dir: DirYaw, Yaw: 90},
	}
	bulk.AutoActions.LeaveGround = &LeaveGroundAction{
		Speed: SpeedOptimal,
		Type:  LeaveGroundDuckTap,
	}
	s.Push(bulk)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Script
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var names []string
	for name, value := range back.Properties() {
		names = append(names, name)
		if want, _ := s.Property(name); want != value {
			t.Fatalf("property %q: expected %q, got %q", name, want, value)
		}
	}
	wantOrder := []string{"seed", "demo", "frametime0ms"}
	if len(names) != len(wantOrder) {
		t.Fatalf("expected %d properties, got %v", len(wantOrder), names)
	}
	for i, name := range wantOrder {
		if names[i] != name {
			t.Fatalf("expected property order %v, got %v", wantOrder, names)
		}
	}

	if len(back.FrameBulks) != 1 {
		t.Fatalf("expected 1 frame bulk, got %d", len(back.FrameBulks))
	}
	got := back.FrameBulks[0]
	if got.FrameCount != 100 || got.FrameTime != "0.010000001" {
		t.Fatalf("frame bulk round trip mismatch: %+v", got)
	}
	if got.AutoActions.Movement == nil || got.AutoActions.Movement.Strafe == nil ||
		got.AutoActions.Movement.Strafe.Yaw != 90 {
		t.Fatalf("strafe settings round trip mismatch: %+v", got.AutoActions)
	}
	if got.AutoActions.LeaveGround == nil || got.AutoActions.LeaveGround.Type != LeaveGroundDuckTap {
		t.Fatalf("leave-ground round trip mismatch: %+v", got.AutoActions)
	}
}
