// Package vct implements the vectorial compensation table: the set of every
// movement direction achievable through the engine's integer forwardmove and
// sidemove inputs, sorted by angle for nearest-direction lookup.
package vct

import (
	"sort"
	"sync"

	"github.com/chewxy/math32"
)

// MaxSpeedCap is the largest max-speed value the table is valid for.
//
// The table is exactly the same for any max-speed less than or equal to this
// value. Querying it with a larger configured max-speed silently loses
// direction precision, which is why callers must check this bound first.
const MaxSpeedCap float32 = 1023

// maxMove is the maximal magnitude of a forwardmove or sidemove input.
const maxMove = 2047

// tableSize is the exact number of entries the computation produces.
const tableSize = 10196504

// Entry is a single achievable input pair together with the exact movement
// angle it produces.
type Entry struct {
	// Forward input value.
	Forward int16
	// Side input value.
	Side int16
	// Movement vector angle in radians, equal to atan2(-Side, Forward).
	Angle float32
}

// Table is the angle-sorted set of achievable input pairs. It is immutable
// after construction and safe for concurrent readers.
//
// A computed Table is large (~80 MB); there is one per process, obtained
// through Get.
type Table struct {
	entries []Entry
}

var (
	computeOnce sync.Once
	shared      *Table
)

// Get returns the process-wide table, valid for max-speed values up to
// MaxSpeedCap.
//
// The table is computed the first time Get is called, which takes a few
// seconds. Concurrent callers block until the computation finishes; all
// subsequent calls are instant.
func Get() *Table {
	computeOnce.Do(func() {
		shared = compute()
	})
	return shared
}

func (t *Table) addCombinations(f, s int16) {
	for _, c := range [8][2]int16{
		{f, s},
		{f, -s},
		{-f, s},
		{-f, -s},
		{s, f},
		{s, -f},
		{-s, f},
		{-s, -f},
	} {
		t.entries = append(t.entries, Entry{
			Forward: c[0],
			Side:    c[1],
			Angle:   math32.Atan2(float32(-c[1]), float32(c[0])),
		})
	}
}

func compute() *Table {
	t := &Table{entries: make([]Entry, 0, tableSize)}

	// Walk the Farey sequence in ascending order, starting from 0/1 and
	// 1/maxMove. This visits every co-prime (f, s) pair in the first octant
	// (angles from -90 to -45 degrees) exactly once, strictly increasing.
	f, s := int16(0), int16(1)
	p, q := int16(1), int16(maxMove)

	for p != 1 || q != 1 {
		k := (maxMove + s) / q
		f, s, p, q = p, q, k*p-f, k*q-s

		// Scale f and s to be as large as possible. Larger magnitudes lose
		// less precision when the engine re-normalizes the movement vector.
		fac := int16(maxMove / s)
		t.addCombinations(f*fac, s*fac)
	}

	// The 0 and pi/4 directions are omitted by the loop's termination.
	t.addCombinations(0, maxMove)
	t.addCombinations(maxMove, maxMove)

	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].Angle < t.entries[j].Angle
	})

	return t
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// At returns the i-th entry in angle order.
func (t *Table) At(i int) Entry {
	return t.entries[i]
}

// FindBest returns the entry whose angle is closest to accelAngle, in
// radians. The angle is normalized to (-pi, pi] first; an exact match is
// returned as-is, otherwise the nearer of the two bracketing entries wins,
// with ties going to the greater angle.
func (t *Table) FindBest(accelAngle float32) Entry {
	accelAngle = normalizeRad(accelAngle)

	index := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Angle >= accelAngle
	})

	switch {
	case index == len(t.entries):
		return t.entries[len(t.entries)-1]
	case t.entries[index].Angle == accelAngle:
		return t.entries[index]
	case index == 0:
		return t.entries[0]
	default:
		prev := t.entries[index-1]
		next := t.entries[index]
		if accelAngle-prev.Angle < next.Angle-accelAngle {
			return prev
		}
		return next
	}
}

func normalizeRad(angle float32) float32 {
	angle = math32.Mod(angle, 2*math32.Pi)

	if angle >= math32.Pi {
		return angle - 2*math32.Pi
	} else if angle < -math32.Pi {
		return angle + 2*math32.Pi
	}
	return angle
}
