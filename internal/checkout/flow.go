// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package checkout drives one simulated buyer through the ticket purchase
// funnel: hold a seat, build a cart, attach a purchaser, pay, and read back
// the order and its admission code.
//
// Steps run strictly in sequence because each one consumes identifiers the
// previous ones produced. Nothing is retried. A failing gate step ends the
// flow; a failing soft step is recorded and the flow moves on (see Gates).
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tixload/cli/internal/backend"
	"tixload/cli/internal/config"
	apperr "tixload/cli/internal/errors"
	"tixload/cli/internal/logging"
	"tixload/cli/internal/metrics"
	"tixload/cli/internal/payload"

	"github.com/pterm/pterm"
)

// DefaultProcessorID stands in for a payment processor the cart did not name.
// A flow holding it cannot pay, so PaymentSetup and ConfirmPayment are skipped
// and a warning is logged. The usual cause is a GetCart response without
// event.payment.paymentProcessor, which points at event configuration.
const DefaultProcessorID = "default-processor-id"

// bodySnippet bounds response bodies in failure logs.
const bodySnippet = 200

// Option configures a Flow.
type Option func(*Flow)

// WithPacing sets the pause after each step. Nil disables pacing.
func WithPacing(p Pacing) Option { return func(f *Flow) { f.pacing = p } }

// WithPurchaser sets the buyer generator; the default is payload.LoadTestPurchaser.
func WithPurchaser(fn func() payload.Purchaser) Option { return func(f *Flow) { f.purchaser = fn } }

// Flow executes checkout sequences. A Flow holds no per-execution state, so
// one value may serve many concurrent virtual users.
type Flow struct {
	store     backend.Storefront
	seats     backend.SeatMap
	cfg       config.Config
	rec       metrics.Recorder
	log       *pterm.Logger
	pacing    Pacing
	purchaser func() payload.Purchaser
}

// NewFlow wires a flow to its collaborators. rec and log may be nil.
func NewFlow(store backend.Storefront, seats backend.SeatMap, cfg config.Config, rec metrics.Recorder, log *pterm.Logger, opts ...Option) *Flow {
	if rec == nil {
		rec = metrics.Discard{}
	}
	if log == nil {
		log = logging.Discard()
	}
	f := &Flow{
		store:     store,
		seats:     seats,
		cfg:       cfg,
		rec:       rec,
		log:       log,
		purchaser: payload.LoadTestPurchaser,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// run is the state of one execution.
type run struct {
	f   *Flow
	res Result
}

// Run executes one flow. It returns when the sequence completes, a gate
// fails, or ctx is cancelled; the error, if any, is in Result.Err.
func (f *Flow) Run(ctx context.Context) Result {
	start := time.Now()
	r := &run{f: f}
	r.execute(ctx)
	r.res.Duration = time.Since(start)

	if ctx.Err() != nil && errors.Is(r.res.Err, ctx.Err()) {
		return r.res
	}
	ok := r.res.Err == nil
	f.rec.Flow(ok, r.res.Duration)
	if ok {
		f.log.Info("purchase flow completed", f.log.Args(
			"duration", r.res.Duration.Round(time.Millisecond),
			"order", r.res.Session.OrderNumber,
			"qr", r.res.Session.QRCode,
		))
	}
	return r.res
}

func (r *run) execute(ctx context.Context) {
	f, s := r.f, &r.res.Session

	// Seat hold
	if f.cfg.HoldTokenOverride != "" {
		s.HoldToken = f.cfg.HoldTokenOverride
		r.skip(StepCreateHoldToken, nil)
		f.log.Debug("using configured hold token", f.log.Args("hold_token", s.HoldToken))
	} else if !r.step(ctx, StepCreateHoldToken, f.seats.CreateHoldToken, accept(http.StatusOK, http.StatusCreated), func(resp backend.Response) error {
		tok, err := backend.DecodeHoldToken(resp.Body)
		if err != nil {
			return err
		}
		if tok == "" {
			return apperr.New(apperr.MissingDependency, "no holdToken in response")
		}
		s.HoldToken = tok
		return nil
	}) {
		return
	}

	if !r.step(ctx, StepHoldSeat, func(ctx context.Context) (backend.Response, error) {
		return f.seats.HoldSeat(ctx, f.cfg.EventID, s.HoldToken, payload.HoldObjects(f.cfg.Seat))
	}, accept(http.StatusNoContent), nil) {
		return
	}

	// Cart
	if !r.step(ctx, StepWorkspace, f.store.SeatsIoWorkspace, accept(http.StatusOK), func(resp backend.Response) error {
		id, err := backend.DecodeIdentifier(resp.Body)
		if err != nil {
			r.warnDecode(StepWorkspace, err)
		}
		s.WorkspaceID = id
		return nil
	}) {
		return
	}

	if !r.step(ctx, StepCreateCart, func(ctx context.Context) (backend.Response, error) {
		return f.store.CreateSeatedShoppingCart(ctx, payload.NewCart(f.cfg, payload.NewSeat(f.cfg.Seat, s.HoldToken)))
	}, accept(http.StatusOK), func(resp backend.Response) error {
		id, err := backend.DecodeIdentifier(resp.Body)
		if err != nil {
			return err
		}
		if id == "" {
			return apperr.New(apperr.MissingDependency, "no shopping cart id in response")
		}
		s.CartID = id
		return nil
	}) {
		return
	}

	if !r.step(ctx, StepAgreePurchase, func(ctx context.Context) (backend.Response, error) {
		return f.store.AgreeUserPurchase(ctx, s.CartID)
	}, accept(http.StatusOK), nil) {
		return
	}

	if !r.step(ctx, StepPurchaserInfo, func(ctx context.Context) (backend.Response, error) {
		return f.store.FillPurchaserInformation(ctx, s.CartID, f.purchaser())
	}, accept(http.StatusOK), nil) {
		return
	}

	if !r.step(ctx, StepGetCart, func(ctx context.Context) (backend.Response, error) {
		return f.store.GetCart(ctx, s.CartID, payload.PopulateEvent)
	}, accept(http.StatusOK), func(resp backend.Response) error {
		info, err := backend.DecodeCart(resp.Body)
		if err != nil {
			r.warnDecode(StepGetCart, err)
		}
		s.ProcessorID = info.PaymentProcessorID
		s.EventID = info.EventID
		return nil
	}) {
		return
	}
	if s.ProcessorID == "" {
		s.ProcessorID = DefaultProcessorID
	}
	if s.EventID == "" {
		s.EventID = f.cfg.EventID
	}
	canPay := s.ProcessorID != DefaultProcessorID
	if !canPay {
		f.log.Warn("cart has no payment processor, skipping payment setup and confirmation",
			f.log.Args("cart", s.CartID, "processor", s.ProcessorID))
	}

	// Payment
	if canPay {
		if !r.step(ctx, StepPaymentSetup, func(ctx context.Context) (backend.Response, error) {
			return f.store.PaymentProcessorRequest(ctx, s.ProcessorID, payload.ProcessorSetup,
				payload.PaymentSetup{PaymentProcessorID: s.ProcessorID, EventID: s.EventID})
		}, accept(http.StatusOK), nil) {
			return
		}
	} else {
		r.skip(StepPaymentSetup, nil)
	}

	if !r.step(ctx, StepStartPayment, func(ctx context.Context) (backend.Response, error) {
		return f.store.StartPayment(ctx, s.CartID)
	}, accept(http.StatusOK), nil) {
		return
	}

	if !r.step(ctx, StepGetCartFull, func(ctx context.Context) (backend.Response, error) {
		return f.store.GetCart(ctx, s.CartID, payload.FullCartPopulate())
	}, accept(http.StatusOK), nil) {
		return
	}

	if canPay {
		if !r.step(ctx, StepConfirmPayment, func(ctx context.Context) (backend.Response, error) {
			return f.store.PaymentProcessorRequest(ctx, s.ProcessorID, payload.ProcessorConfirmPayment,
				payload.NewConfirmPayment(f.cfg, s.CartID))
		}, accept(http.StatusOK), nil) {
			return
		}
	} else {
		r.skip(StepConfirmPayment, nil)
	}

	// Order
	if !r.step(ctx, StepGetOrderNumber, func(ctx context.Context) (backend.Response, error) {
		return f.store.GetCartInfo(ctx, s.CartID, false)
	}, accept(http.StatusOK), func(resp backend.Response) error {
		no, err := backend.DecodeOrderNumber(resp.Body)
		if err != nil {
			r.warnDecode(StepGetOrderNumber, err)
		}
		s.OrderNumber = no
		return nil
	}) {
		return
	}

	if s.OrderNumber == "" {
		err := apperr.New(apperr.MissingDependency, "cart info has no order number")
		r.skip(StepGetPurchaseCodes, err)
		r.res.Err = fmt.Errorf("%s: %w", StepGetPurchaseCodes, err)
		f.log.Error("no order number, purchase codes not requested", f.log.Args("cart", s.CartID))
		return
	}

	r.step(ctx, StepGetPurchaseCodes, func(ctx context.Context) (backend.Response, error) {
		return f.store.GetPurchaseCodesFromOrderNumber(ctx, s.OrderNumber)
	}, accept(http.StatusOK), func(resp backend.Response) error {
		code, err := backend.DecodePurchaseCode(resp.Body)
		if err != nil {
			r.warnDecode(StepGetPurchaseCodes, err)
		}
		if code == "" {
			f.log.Warn("order has no purchase code yet", f.log.Args("order", s.OrderNumber))
		}
		s.QRCode = code
		return nil
	})
}

func accept(codes ...int) []int { return codes }

// step sends one request, checks its status, runs extract on success and
// reports the sample. It returns false when the flow must stop.
func (r *run) step(ctx context.Context, name Step, call func(context.Context) (backend.Response, error), accepted []int, extract func(backend.Response) error) bool {
	f := r.f
	start := time.Now()
	resp, err := call(ctx)
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}
	if err != nil && ctx.Err() != nil {
		// the run ended under this request; it is not an error sample
		r.res.Err = ctx.Err()
		return false
	}

	ok := err == nil && resp.StatusIn(accepted...)
	if err == nil && !ok {
		err = apperr.New(apperr.UnexpectedStatus, fmt.Sprintf("%s returned %d, want %v", name, resp.Status, accepted))
	}
	if ok && extract != nil {
		if xerr := extract(resp); xerr != nil {
			ok, err = false, xerr
		}
	}

	f.rec.Step(string(name), ok, resp.Duration)
	r.logResponse(name, resp)

	sr := StepResult{Step: name, Status: resp.Status, Duration: resp.Duration, Outcome: OutcomeOK}
	if !ok {
		sr.Outcome, sr.Err = OutcomeFailed, err
		f.log.Error(string(name)+" failed", f.log.Args(
			"status", resp.Status,
			"error", err.Error(),
			"body", resp.Snippet(bodySnippet),
		))
	}
	r.res.Steps = append(r.res.Steps, sr)

	if !ok && Gates(name) {
		r.res.Err = fmt.Errorf("%w at %s: %w", apperr.ErrAborted, name, err)
		return false
	}
	if perr := sleepOrDone(ctx, f.pacing[name]); perr != nil {
		r.res.Err = perr
		return false
	}
	return true
}

func (r *run) skip(name Step, cause error) {
	r.res.Steps = append(r.res.Steps, StepResult{Step: name, Outcome: OutcomeSkipped, Err: cause})
}

func (r *run) warnDecode(name Step, err error) {
	r.f.log.Warn("could not decode response", r.f.log.Args("step", string(name), "error", err.Error()))
}

func (r *run) logResponse(name Step, resp backend.Response) {
	f := r.f
	if slow := f.cfg.SlowThreshold.Duration; slow > 0 && resp.Duration > slow {
		f.log.Warn("slow response", f.log.Args("step", string(name), "duration", resp.Duration.Round(time.Millisecond)))
	}
	f.log.Debug(string(name), f.log.Args(
		"status", resp.Status,
		"duration", resp.Duration.Round(time.Millisecond),
		"body", resp.Snippet(500),
	))
	if len(resp.Header) > 0 {
		f.log.Trace(string(name)+" headers", f.log.Args("headers", resp.Header))
	}
}

// IsAborted reports whether err ended a flow at a gate.
func IsAborted(err error) bool { return errors.Is(err, apperr.ErrAborted) }
