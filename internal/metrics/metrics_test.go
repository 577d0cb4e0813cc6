package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Step("HoldSeat", true, 20*time.Millisecond)
	p.Step("HoldSeat", false, 30*time.Millisecond)
	p.Step("GetCart", true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.StepsTotal.WithLabelValues("HoldSeat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.StepErrors.WithLabelValues("HoldSeat")))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.StepErrors.WithLabelValues("GetCart")))

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP tixload_steps_total Checkout steps executed
# TYPE tixload_steps_total counter
tixload_steps_total{step="GetCart"} 1
tixload_steps_total{step="HoldSeat"} 2
`), "tixload_steps_total")
	require.NoError(t, err)
}

func TestPrometheusFlow(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.Flow(true, 3*time.Second)
	p.Flow(false, time.Second)
	p.Flow(false, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.FlowsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.FlowsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.FlowDuration))
}

func TestSummaryConcurrent(t *testing.T) {
	s := NewSummary()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Step("CreateSeatedShoppingCart", j%10 != 0, time.Millisecond)
			}
			s.Flow(i%2 == 0, time.Duration(i+1)*time.Second)
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, int64(8), snap.Flows)
	assert.Equal(t, int64(4), snap.Failures)
	assert.Equal(t, int64(800), snap.StepSamples)
	assert.Equal(t, int64(80), snap.StepErrors)
	assert.InDelta(t, 0.1, snap.ErrorRate(), 1e-9)
	// successful flows took 1s, 3s, 5s and 7s
	assert.Equal(t, 4*time.Second, snap.MeanFlow)
	assert.Equal(t, 7*time.Second, snap.MaxFlow)
}

func TestSummaryStepOrderAndWorst(t *testing.T) {
	s := NewSummary()
	s.Step("CreateHoldToken", true, 0)
	s.Step("HoldSeat", false, 0)
	s.Step("SeatsIoWorkspace", false, 0)
	s.Step("SeatsIoWorkspace", false, 0)

	snap := s.Snapshot()
	require.Len(t, snap.Steps, 3)
	assert.Equal(t, "CreateHoldToken", snap.Steps[0].Name)
	assert.Equal(t, 1.0, snap.Steps[2].ErrorRate())

	worst := snap.WorstSteps(5)
	require.Len(t, worst, 2)
	assert.Equal(t, "SeatsIoWorkspace", worst[0].Name)
	assert.Equal(t, "HoldSeat", worst[1].Name)
	assert.Len(t, snap.WorstSteps(1), 1)
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewSummary(), NewSummary()
	m := Multi{a, b, Discard{}}
	m.Step("x", false, 0)
	m.Flow(true, time.Second)

	for _, s := range []*Summary{a, b} {
		snap := s.Snapshot()
		assert.Equal(t, int64(1), snap.StepErrors)
		assert.Equal(t, int64(1), snap.Flows)
	}
}
