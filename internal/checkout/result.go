package checkout

import (
	"time"
)

// Outcome is the fate of one step in one flow execution.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Session carries identifiers between the steps of one flow execution.
// It is never shared between executions.
type Session struct {
	HoldToken   string
	WorkspaceID string
	CartID      string
	ProcessorID string
	EventID     string
	OrderNumber string
	QRCode      string
}

// StepResult describes one executed or skipped step.
type StepResult struct {
	Step     Step
	Status   int
	Duration time.Duration
	Outcome  Outcome
	// Err is set for failed steps and for skips caused by a missing identifier.
	Err error
}

// Result is the outcome of Flow.Run.
type Result struct {
	Session  Session
	Steps    []StepResult
	Duration time.Duration
	// Err is nil only when the flow reached its end with every gate passed
	// and every identifier present.
	Err error
}

func (r Result) OK() bool { return r.Err == nil }

// Called reports whether a request for s was actually sent.
func (r Result) Called(s Step) bool {
	for _, st := range r.Steps {
		if st.Step == s && st.Outcome != OutcomeSkipped {
			return true
		}
	}
	return false
}

// Failed returns the first failed step, if any.
func (r Result) Failed() (StepResult, bool) {
	for _, st := range r.Steps {
		if st.Outcome == OutcomeFailed {
			return st, true
		}
	}
	return StepResult{}, false
}
