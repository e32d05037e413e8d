package vct

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestTableSize(t *testing.T) {
	if got := Get().Len(); got != tableSize {
		t.Fatalf("expected %d entries, got %d", tableSize, got)
	}
}

func TestTableSortedAndConsistent(t *testing.T) {
	table := Get()

	prev := float32(math32.Inf(-1))
	for i := 0; i < table.Len(); i += 997 {
		e := table.At(i)

		if e.Angle < prev {
			t.Fatalf("entry %d breaks angle order: %v after %v", i, e.Angle, prev)
		}
		prev = e.Angle

		if want := math32.Atan2(float32(-e.Side), float32(e.Forward)); e.Angle != want {
			t.Fatalf("entry %d has angle %v, expected %v for (%d, %d)",
				i, e.Angle, want, e.Forward, e.Side)
		}

		if e.Forward < -maxMove || e.Forward > maxMove || e.Side < -maxMove || e.Side > maxMove {
			t.Fatalf("entry %d out of input range: (%d, %d)", i, e.Forward, e.Side)
		}
	}
}

func TestFindBestAxisDirections(t *testing.T) {
	table := Get()

	for _, tc := range []struct {
		angle         float32
		forward, side int16
	}{
		{0, maxMove, 0},
		{math32.Pi / 2, 0, -maxMove},
		{-math32.Pi / 2, 0, maxMove},
		{-math32.Pi / 4, maxMove, maxMove},
		{math32.Pi / 4, maxMove, -maxMove},
	} {
		e := table.FindBest(tc.angle)
		if e.Forward != tc.forward || e.Side != tc.side {
			t.Errorf("FindBest(%v) = (%d, %d), expected (%d, %d)",
				tc.angle, e.Forward, e.Side, tc.forward, tc.side)
		}
	}
}

func TestFindBestExactEntries(t *testing.T) {
	table := Get()

	for _, i := range []int{0, 1, 12345, table.Len() / 2, table.Len() - 3} {
		e := table.At(i)
		got := table.FindBest(e.Angle)
		if got.Angle != e.Angle {
			t.Fatalf("FindBest(%v) returned angle %v", e.Angle, got.Angle)
		}
	}

	// The final entries sit at exactly +pi, which normalization wraps onto
	// the -pi end of the table.
	last := table.At(table.Len() - 1)
	if got := table.FindBest(last.Angle); got != table.At(0) {
		t.Fatalf("FindBest(%v) = %+v, expected the low-boundary entry %+v",
			last.Angle, got, table.At(0))
	}
}

func TestFindBestNormalizesAngle(t *testing.T) {
	table := Get()

	// The shifted queries cannot round back to the exact same angle in
	// float32, so compare the looked-up directions with a tolerance.
	for _, angle := range []float32{0.37, -1.2, 2.9} {
		want := table.FindBest(angle)
		for _, shifted := range []float32{angle + 2*math32.Pi, angle - 2*math32.Pi, angle + 4*math32.Pi} {
			got := table.FindBest(shifted)
			if math32.Abs(got.Angle-want.Angle) > 1e-5 {
				t.Fatalf("FindBest(%v) = %+v, expected %+v as for %v", shifted, got, want, angle)
			}
		}
	}
}

func TestFindBestIsNearest(t *testing.T) {
	table := Get()

	// For a fine sweep of query angles, no table entry may be closer than the
	// one FindBest returns.
	for q := -31; q <= 31; q++ {
		angle := float32(q) * 0.1
		best := table.FindBest(angle)
		bestDist := math32.Abs(normalizeRad(angle) - best.Angle)

		for i := 0; i < table.Len(); i += 9973 {
			if d := math32.Abs(normalizeRad(angle) - table.At(i).Angle); d < bestDist {
				t.Fatalf("FindBest(%v) missed a closer entry: %+v at distance %v (best %v)",
					angle, table.At(i), d, bestDist)
			}
		}
	}
}
