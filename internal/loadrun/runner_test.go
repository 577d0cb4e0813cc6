package loadrun

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr bool
	}{
		{"iterations only", Plan{VUs: 1, Iterations: 1}, false},
		{"duration only", Plan{VUs: 3, Duration: time.Second}, false},
		{"no vus", Plan{Iterations: 1}, true},
		{"unbounded", Plan{VUs: 1}, true},
		{"negative duration", Plan{VUs: 1, Duration: -time.Second}, true},
		{"inverted think", Plan{VUs: 1, Iterations: 1, ThinkMin: time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunIterationBudget(t *testing.T) {
	var mu sync.Mutex
	seen := map[[2]int]bool{}

	r := &Runner{
		Plan: Plan{VUs: 4, Iterations: 5},
		Iterate: func(_ context.Context, vu, iter int) error {
			mu.Lock()
			defer mu.Unlock()
			seen[[2]int{vu, iter}] = true
			if iter == 0 {
				return errors.New("first iteration fails")
			}
			return nil
		},
	}

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), rep.Iterations)
	assert.Equal(t, int64(4), rep.Failed)
	assert.Len(t, seen, 20)
	assert.True(t, seen[[2]int{1, 0}])
	assert.True(t, seen[[2]int{4, 4}])
}

type countGauge struct {
	cur, peak atomic.Int64
}

func (g *countGauge) Inc() {
	n := g.cur.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (g *countGauge) Dec() { g.cur.Add(-1) }

func TestRunDurationStopsUsers(t *testing.T) {
	g := &countGauge{}
	r := &Runner{
		Plan:   Plan{VUs: 3, Duration: 100 * time.Millisecond, ThinkMin: 5 * time.Millisecond, ThinkMax: 10 * time.Millisecond},
		Active: g,
		Iterate: func(ctx context.Context, _, _ int) error {
			return nil
		},
	}

	start := time.Now()
	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Positive(t, rep.Iterations)
	assert.Zero(t, rep.Failed)
	assert.Equal(t, int64(3), g.peak.Load())
	assert.Equal(t, int64(0), g.cur.Load())
}

func TestRunInterruptedIterationNotCounted(t *testing.T) {
	r := &Runner{
		Plan: Plan{VUs: 2, Duration: 50 * time.Millisecond},
		Iterate: func(ctx context.Context, _, _ int) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Iterations)
	assert.Zero(t, rep.Failed)
}

func TestRunParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64

	r := &Runner{
		Plan: Plan{VUs: 2, Iterations: 1000, ThinkMin: time.Millisecond, ThinkMax: time.Millisecond},
		Iterate: func(context.Context, int, int) error {
			if calls.Add(1) == 10 {
				cancel()
			}
			return nil
		},
	}

	rep, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, rep.Iterations, int64(2000))
}

func TestOnIterationSeesErrors(t *testing.T) {
	var failures atomic.Int64
	r := &Runner{
		Plan:    Plan{VUs: 2, Iterations: 3},
		Iterate: func(context.Context, int, int) error { return errors.New("x") },
		OnIteration: func(_, _ int, err error) {
			if err != nil {
				failures.Add(1)
			}
		},
	}
	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), failures.Load())
}

func TestFailingUserDoesNotStopOthers(t *testing.T) {
	r := &Runner{
		Plan: Plan{VUs: 2, Iterations: 4},
		Iterate: func(ctx context.Context, vu, _ int) error {
			if vu == 1 {
				return errors.New("vu 1 always fails")
			}
			// a cancelled run context would show up here
			return ctx.Err()
		},
	}
	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), rep.Iterations)
	assert.Equal(t, int64(4), rep.Failed)
}
