// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package loadrun runs an iteration body on many virtual users at once.
// Virtual users share nothing except what the iteration body closes over,
// which must therefore be safe for concurrent use.
package loadrun

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Plan bounds a run. At least one of Duration and Iterations must be set.
type Plan struct {
	VUs int
	// Duration stops every virtual user once elapsed; zero means no limit.
	Duration time.Duration
	// Iterations is the per-VU iteration budget; zero means no limit.
	Iterations int
	// ThinkMin and ThinkMax bound the random pause between iterations.
	ThinkMin time.Duration
	ThinkMax time.Duration
}

func (p Plan) Validate() error {
	switch {
	case p.VUs < 1:
		return fmt.Errorf("vus must be at least 1, got %d", p.VUs)
	case p.Duration < 0 || p.Iterations < 0:
		return errors.New("duration and iterations must not be negative")
	case p.Duration == 0 && p.Iterations == 0:
		return errors.New("either duration or iterations must be set")
	case p.ThinkMin < 0 || p.ThinkMax < p.ThinkMin:
		return fmt.Errorf("think time range %s..%s is invalid", p.ThinkMin, p.ThinkMax)
	}
	return nil
}

func (p Plan) think(rnd *rand.Rand) time.Duration {
	span := p.ThinkMax - p.ThinkMin
	if span <= 0 {
		return p.ThinkMin
	}
	return p.ThinkMin + time.Duration(rnd.Int64N(int64(span)+1))
}

// Iteration is one unit of work of a virtual user. vu counts from 1 and iter
// from 0. A non-nil error marks the iteration failed; it never stops the run.
type Iteration func(ctx context.Context, vu, iter int) error

// Gauge tracks live virtual users. prometheus.Gauge satisfies it.
type Gauge interface {
	Inc()
	Dec()
}

// Runner executes a Plan.
type Runner struct {
	Plan    Plan
	Iterate Iteration
	// Active is optional.
	Active Gauge
	// OnIteration is called after every finished iteration from the VU's
	// goroutine; it must be safe for concurrent use.
	OnIteration func(vu, iter int, err error)
}

// Report summarizes a finished run.
type Report struct {
	Started    time.Time
	Elapsed    time.Duration
	Iterations int64
	Failed     int64
}

// Run starts Plan.VUs virtual users and waits for all of them. Iterations cut
// short by the end of the run are not counted. The returned error is non-nil
// only for an invalid plan or when ctx itself was cancelled; the report is
// valid in the latter case.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if err := r.Plan.Validate(); err != nil {
		return Report{}, err
	}
	if r.Iterate == nil {
		return Report{}, errors.New("no iteration body")
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if r.Plan.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.Plan.Duration)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	rep := Report{Started: time.Now()}
	var iters, failed atomic.Int64

	// a failed iteration never ends the run, so users share runCtx only
	var g errgroup.Group
	for vu := 1; vu <= r.Plan.VUs; vu++ {
		g.Go(func() error {
			r.user(runCtx, vu, &iters, &failed)
			return nil
		})
	}
	err := g.Wait()

	rep.Elapsed = time.Since(rep.Started)
	rep.Iterations = iters.Load()
	rep.Failed = failed.Load()
	if ctx.Err() != nil {
		return rep, ctx.Err()
	}
	return rep, err
}

func (r *Runner) user(ctx context.Context, vu int, iters, failed *atomic.Int64) {
	if r.Active != nil {
		r.Active.Inc()
		defer r.Active.Dec()
	}
	rnd := rand.New(rand.NewPCG(uint64(vu), uint64(time.Now().UnixNano())))

	for iter := 0; r.Plan.Iterations == 0 || iter < r.Plan.Iterations; iter++ {
		if ctx.Err() != nil {
			return
		}
		err := r.Iterate(ctx, vu, iter)
		if ctx.Err() != nil {
			// interrupted by the end of the run
			return
		}
		iters.Add(1)
		if err != nil {
			failed.Add(1)
		}
		if r.OnIteration != nil {
			r.OnIteration(vu, iter, err)
		}

		if r.Plan.Iterations != 0 && iter == r.Plan.Iterations-1 {
			return
		}
		if sleepOrDone(ctx, r.Plan.think(rnd)) != nil {
			return
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
