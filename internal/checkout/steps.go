// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package checkout

import (
	"context"
	"time"
)

// Step names one request of the checkout funnel. The values double as metric labels.
type Step string

const (
	StepCreateHoldToken  Step = "CreateHoldToken"
	StepHoldSeat         Step = "HoldSeat"
	StepWorkspace        Step = "SeatsIoWorkspace"
	StepCreateCart       Step = "CreateSeatedShoppingCart"
	StepAgreePurchase    Step = "AgreeUserPurchase"
	StepPurchaserInfo    Step = "FillPurchaserInformation"
	StepGetCart          Step = "GetCart"
	StepPaymentSetup     Step = "PaymentSetup"
	StepStartPayment     Step = "StartPayment"
	StepGetCartFull      Step = "GetCartFull"
	StepConfirmPayment   Step = "ConfirmPayment"
	StepGetOrderNumber   Step = "GetOrderNumber"
	StepGetPurchaseCodes Step = "GetPurchaseCodes"
)

// Order is the execution order of a full flow.
var Order = []Step{
	StepCreateHoldToken,
	StepHoldSeat,
	StepWorkspace,
	StepCreateCart,
	StepAgreePurchase,
	StepPurchaserInfo,
	StepGetCart,
	StepPaymentSetup,
	StepStartPayment,
	StepGetCartFull,
	StepConfirmPayment,
	StepGetOrderNumber,
	StepGetPurchaseCodes,
}

// soft lists the steps whose failure is recorded but does not stop the flow.
// Every other step gates the rest of the sequence.
var soft = map[Step]bool{
	StepPurchaserInfo: true,
	StepGetCart:       true,
}

// Gates reports whether a failure of s aborts the flow.
func Gates(s Step) bool { return !soft[s] }

// Pacing is the pause taken after each step to emulate a person clicking
// through checkout. Steps not in the map do not pause.
type Pacing map[Step]time.Duration

// DefaultPacing returns the pauses of an unhurried buyer.
func DefaultPacing() Pacing {
	return Pacing{
		StepCreateHoldToken: 500 * time.Millisecond,
		StepHoldSeat:        time.Second,
		StepWorkspace:       time.Second,
		StepCreateCart:      time.Second,
		StepAgreePurchase:   time.Second,
		StepPurchaserInfo:   time.Second,
		StepGetCart:         2 * time.Second,
		StepPaymentSetup:    time.Second,
		StepStartPayment:    2 * time.Second,
		StepGetCartFull:     time.Second,
		StepConfirmPayment:  2 * time.Second,
		StepGetOrderNumber:  time.Second,
	}
}

// sleepOrDone waits for d or until ctx is done, whichever comes first.
func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
