package metrics

import (
	"sort"
	"sync"
	"time"
)

// StepTotals counts the samples of one step.
type StepTotals struct {
	Name   string
	Total  int64
	Errors int64
}

// ErrorRate is Errors/Total, or 0 before the first sample.
func (s StepTotals) ErrorRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total)
}

// Snapshot is a point-in-time copy of a Summary.
type Snapshot struct {
	Flows       int64
	Failures    int64
	StepSamples int64
	StepErrors  int64
	MeanFlow    time.Duration
	MaxFlow     time.Duration
	Steps       []StepTotals
}

// ErrorRate is the share of failed step samples over all step samples.
func (s Snapshot) ErrorRate() float64 {
	if s.StepSamples == 0 {
		return 0
	}
	return float64(s.StepErrors) / float64(s.StepSamples)
}

// Summary aggregates outcomes in memory for the end-of-run report.
type Summary struct {
	mu       sync.Mutex
	flows    int64
	failures int64
	// okFlows and flowSum cover successful flows only
	okFlows int64
	flowSum time.Duration
	flowMax time.Duration
	steps   map[string]*StepTotals
	order   []string
}

func NewSummary() *Summary {
	return &Summary{steps: make(map[string]*StepTotals)}
}

func (s *Summary) Step(name string, ok bool, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, found := s.steps[name]
	if !found {
		st = &StepTotals{Name: name}
		s.steps[name] = st
		s.order = append(s.order, name)
	}
	st.Total++
	if !ok {
		st.Errors++
	}
}

func (s *Summary) Flow(ok bool, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows++
	if !ok {
		s.failures++
		return
	}
	s.okFlows++
	s.flowSum += d
	if d > s.flowMax {
		s.flowMax = d
	}
}

// Snapshot copies the current totals. Steps are listed in first-seen order,
// which for a checkout flow is execution order.
func (s *Summary) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Snapshot{
		Flows:    s.flows,
		Failures: s.failures,
		MaxFlow:  s.flowMax,
		Steps:    make([]StepTotals, 0, len(s.order)),
	}
	if s.okFlows > 0 {
		out.MeanFlow = s.flowSum / time.Duration(s.okFlows)
	}
	for _, name := range s.order {
		st := *s.steps[name]
		out.StepSamples += st.Total
		out.StepErrors += st.Errors
		out.Steps = append(out.Steps, st)
	}
	return out
}

// WorstSteps returns up to n steps with the highest error counts.
func (s Snapshot) WorstSteps(n int) []StepTotals {
	steps := make([]StepTotals, 0, len(s.Steps))
	for _, st := range s.Steps {
		if st.Errors > 0 {
			steps = append(steps, st)
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Errors > steps[j].Errors })
	if len(steps) > n {
		steps = steps[:n]
	}
	return steps
}
