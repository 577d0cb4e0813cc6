// Package metrics receives step and flow outcomes from checkout flows and
// fans them out to Prometheus and to the in-memory run summary.
package metrics

import "time"

// Recorder accepts outcomes from any number of concurrent flows.
type Recorder interface {
	// Step records one step; ok=false is an error sample.
	Step(name string, ok bool, d time.Duration)
	// Flow records one complete flow execution.
	Flow(ok bool, d time.Duration)
}

// Multi forwards every outcome to each recorder in order.
type Multi []Recorder

func (m Multi) Step(name string, ok bool, d time.Duration) {
	for _, r := range m {
		r.Step(name, ok, d)
	}
}

func (m Multi) Flow(ok bool, d time.Duration) {
	for _, r := range m {
		r.Flow(ok, d)
	}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Step(string, bool, time.Duration) {}
func (Discard) Flow(bool, time.Duration)         {}
