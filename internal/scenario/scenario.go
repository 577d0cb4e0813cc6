// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package scenario defines the iteration bodies tixload can run and the
// default load profile of each.
package scenario

import (
	"context"
	"math/rand/v2"
	"net/http"
	"sort"
	"time"

	"tixload/cli/internal/backend"
	"tixload/cli/internal/checkout"
	"tixload/cli/internal/config"
	apperr "tixload/cli/internal/errors"
	"tixload/cli/internal/loadrun"
	"tixload/cli/internal/metrics"
	"tixload/cli/internal/payload"

	"github.com/pterm/pterm"
)

// Deps are the shared collaborators handed to every iteration body.
type Deps struct {
	Store    backend.Storefront
	Seats    backend.SeatMap
	Config   config.Config
	Recorder metrics.Recorder
	Log      *pterm.Logger
	// Pacing enables the in-iteration pauses between requests.
	Pacing bool
}

// Scenario is a named iteration body with its default profile.
type Scenario struct {
	Name        string
	Description string
	Profile     Profile
	build       func(Deps) loadrun.Iteration
}

// Iteration builds the iteration body over d.
func (s Scenario) Iteration(d Deps) loadrun.Iteration {
	if d.Recorder == nil {
		d.Recorder = metrics.Discard{}
	}
	return s.build(d)
}

var builtin = map[string]Scenario{
	"purchase": {
		Name:        "purchase",
		Description: "Full checkout: hold, cart, purchaser, payment, order and QR code",
		Profile: Profile{
			Name: "purchase", VUs: 10, Duration: 5 * time.Minute,
			ThinkMin: time.Second, ThinkMax: 4 * time.Second, MaxErrorRate: 0.1,
		},
		build: purchase,
	},
	"smoke": {
		Name:        "smoke",
		Description: "One user checking the SDK endpoint answers quickly",
		Profile: Profile{
			Name: "smoke", VUs: 1, Duration: 30 * time.Second,
			ThinkMin: time.Second, ThinkMax: time.Second, MaxErrorRate: 0.01,
		},
		build: smoke,
	},
	"stress": {
		Name:        "stress",
		Description: "Workspace lookup and cart creation with synthetic seats under heavy load",
		Profile: Profile{
			Name: "stress", VUs: 100, Duration: 5 * time.Minute,
			ThinkMin: 500 * time.Millisecond, ThinkMax: 500 * time.Millisecond, MaxErrorRate: 0.1,
		},
		build: stress,
	},
	"spike": {
		Name:        "spike",
		Description: "Sudden burst of workspace lookups; only server errors count",
		Profile: Profile{
			Name: "spike", VUs: 100, Duration: time.Minute,
			ThinkMin: 100 * time.Millisecond, ThinkMax: 100 * time.Millisecond, MaxErrorRate: 0.2,
		},
		build: spike,
	},
}

// Lookup returns the built-in scenario called name.
func Lookup(name string) (Scenario, bool) {
	s, ok := builtin[name]
	return s, ok
}

// Names lists the built-in scenarios alphabetically.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for n := range builtin {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func purchase(d Deps) loadrun.Iteration {
	var pacing checkout.Pacing
	if d.Pacing {
		pacing = checkout.DefaultPacing()
	}
	return func(ctx context.Context, vu, iter int) error {
		rnd := rand.New(rand.NewPCG(uint64(vu), uint64(iter)))
		buyer := func() payload.Purchaser { return payload.GeneratedPurchaser(vu, iter, rnd) }
		flow := checkout.NewFlow(d.Store, d.Seats, d.Config, d.Recorder, d.Log,
			checkout.WithPacing(pacing), checkout.WithPurchaser(buyer))
		return flow.Run(ctx).Err
	}
}

// smokeLatency is the response time above which a smoke probe fails.
const smokeLatency = time.Second

func smoke(d Deps) loadrun.Iteration {
	return func(ctx context.Context, _, _ int) error {
		start := time.Now()
		err := probe(ctx, d, checkout.StepWorkspace, d.Store.SeatsIoWorkspace, func(r backend.Response) bool {
			return r.StatusIn(http.StatusOK, http.StatusNotFound, http.StatusUnauthorized) &&
				len(r.Body) > 0 &&
				r.Duration < smokeLatency
		})
		return finish(ctx, d, start, err)
	}
}

func stress(d Deps) loadrun.Iteration {
	return func(ctx context.Context, vu, iter int) error {
		start := time.Now()
		err := probe(ctx, d, checkout.StepWorkspace, d.Store.SeatsIoWorkspace, func(r backend.Response) bool {
			return r.Status == http.StatusOK
		})
		if err != nil {
			return finish(ctx, d, start, err)
		}
		if d.Pacing {
			if err := sleep(ctx, 200*time.Millisecond); err != nil {
				return err
			}
		}
		cart := payload.NewCart(d.Config, payload.SyntheticSeat(d.Config.Seat, vu, iter))
		err = probe(ctx, d, checkout.StepCreateCart, func(ctx context.Context) (backend.Response, error) {
			return d.Store.CreateSeatedShoppingCart(ctx, cart)
		}, func(r backend.Response) bool {
			return r.Status == http.StatusOK
		})
		return finish(ctx, d, start, err)
	}
}

func spike(d Deps) loadrun.Iteration {
	return func(ctx context.Context, _, _ int) error {
		start := time.Now()
		err := probe(ctx, d, checkout.StepWorkspace, d.Store.SeatsIoWorkspace, func(r backend.Response) bool {
			return r.Status < http.StatusInternalServerError
		})
		return finish(ctx, d, start, err)
	}
}

// probe sends one request, records the check result and returns an error
// when the check failed.
func probe(ctx context.Context, d Deps, step checkout.Step, call func(context.Context) (backend.Response, error), check func(backend.Response) bool) error {
	resp, err := call(ctx)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	ok := err == nil && check(resp)
	d.Recorder.Step(string(step), ok, resp.Duration)
	if ok {
		return nil
	}
	if err == nil {
		err = apperr.New(apperr.UnexpectedStatus, string(step)+" check failed")
	}
	if d.Log != nil {
		d.Log.Warn(string(step)+" check failed", d.Log.Args(
			"status", resp.Status,
			"duration", resp.Duration.Round(time.Millisecond),
			"error", err.Error(),
		))
	}
	return err
}

func finish(ctx context.Context, d Deps, start time.Time, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	d.Recorder.Flow(err == nil, time.Since(start))
	return err
}

func sleep(ctx context.Context, dur time.Duration) error {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
