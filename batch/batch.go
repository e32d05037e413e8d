// Package batch runs many independent simulation timelines in parallel.
//
// A timeline is one (tracer, parameters, initial player, script) tuple; no
// simulation step mutates anything outside its own state, so timelines need
// zero coordination beyond sharing the read-only direction table and tracer.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tasuite/strafesim/script"
	"github.com/tasuite/strafesim/sim"
)

// Timeline is one independent simulation job.
type Timeline struct {
	// ID identifies the timeline in results; NewTimeline fills it in.
	ID uuid.UUID

	Tracer     sim.Tracer
	Parameters sim.Parameters
	Initial    sim.Player
	Script     *script.Script
}

// NewTimeline returns a timeline with a fresh ID.
func NewTimeline(tracer sim.Tracer, params sim.Parameters, initial sim.Player, s *script.Script) Timeline {
	return Timeline{
		ID:         uuid.New(),
		Tracer:     tracer,
		Parameters: params,
		Initial:    initial,
		Script:     s,
	}
}

// Result is the outcome of one fully simulated timeline.
type Result struct {
	ID uuid.UUID

	// Final is the state after the script's last frame.
	Final sim.State
	// LastInput is the input of the script's last frame.
	LastInput sim.Input
	// Frames is how many frames were simulated.
	Frames int
	// Fingerprint is Final.Fingerprint(), the dedup key for search
	// frontiers.
	Fingerprint uint64
}

// Runner simulates timelines across a fixed pool of workers.
type Runner struct {
	// Workers is the pool size; zero or negative means NumCPU.
	Workers int

	// Debugf receives per-timeline progress logs for callers that need deep
	// diagnostics.
	Debugf func(format string, args ...any)
}

func (r *Runner) debugf(format string, args ...any) {
	if r.Debugf != nil {
		r.Debugf(format, args...)
	}
}

// Run validates and simulates every timeline, returning results in timeline
// order. It blocks until all dispatched timelines finish; a cancelled context
// stops new timelines from being dispatched, and their results are zero
// valued apart from the ID.
func (r *Runner) Run(ctx context.Context, timelines []Timeline) ([]Result, error) {
	for i := range timelines {
		if timelines[i].Tracer == nil {
			return nil, errors.Errorf("timeline %d has no tracer", i)
		}
		if err := timelines[i].Script.Validate(); err != nil {
			return nil, errors.Wrapf(err, "timeline %d", i)
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(timelines))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			defer sentry.Recover()

			for idx := range jobs {
				results[idx] = r.simulate(&timelines[idx])
			}
		}()
	}

dispatch:
	for i := range timelines {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for k := i; k < len(timelines); k++ {
				results[k].ID = timelines[k].ID
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, "dispatching timelines")
	}
	return results, nil
}

func (r *Runner) simulate(t *Timeline) Result {
	params := t.Parameters
	state := sim.NewState(t.Tracer, params, t.Initial)

	var (
		lastInput sim.Input
		frames    int
		cur       *script.FrameBulk
	)
	for _, bulk := range t.Script.Frames() {
		if bulk != cur {
			cur = bulk

			ft, err := bulk.ParseFrameTime()
			if err != nil {
				ft = 0
			}
			// The engine reads scripted frame times at millisecond
			// granularity.
			params.FrameTime = math32.Trunc(ft*1000) / 1000
		}

		state, lastInput = state.Simulate(t.Tracer, params, bulk)
		frames++
	}

	res := Result{
		ID:          t.ID,
		Final:       state,
		LastInput:   lastInput,
		Frames:      frames,
		Fingerprint: state.Fingerprint(),
	}
	r.debugf("timeline %s: %d frames, final speed %.3f",
		t.ID, frames, velLen2D(state.Player.Vel))
	return res
}

func velLen2D(v [3]float32) float32 {
	return math32.Hypot(v[0], v[1])
}
