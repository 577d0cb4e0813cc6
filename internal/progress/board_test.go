package progress

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tixload/cli/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	sum := metrics.NewSummary()
	sum.Step("CreateHoldToken", true, 0)
	sum.Step("HoldSeat", false, 0)

	b := &Board{Scenario: "purchase", VUs: 5, Duration: time.Minute, Snapshot: sum.Snapshot}
	b.Observe(1, 0, nil)
	b.Observe(2, 0, errors.New("x"))

	lines := strings.Split(b.render(1, 3*time.Second), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "/ running purchase with 5 VUs  3s / 1m0s"))
	assert.Contains(t, lines[1], "iterations 2  failed 1  step error rate 50.0%")
	assert.Contains(t, lines[2], "✓ CreateHoldToken")
	assert.Contains(t, lines[3], "✗ HoldSeat")
	assert.Contains(t, lines[3], "(1 failed)")

	// all lines share the padded width
	for _, l := range lines[1:] {
		assert.Equal(t, len([]rune(lines[0])), len([]rune(l)))
	}
}

func TestRenderWithoutSnapshot(t *testing.T) {
	b := &Board{Scenario: "smoke", VUs: 1}
	out := b.render(0, 0)
	assert.True(t, strings.HasPrefix(out, "| running smoke with 1 VUs  0s"))
	assert.NotContains(t, out, " / ")
}

func TestStopWithoutStart(t *testing.T) {
	b := &Board{}
	b.Stop()
}
