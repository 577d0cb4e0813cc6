// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress renders a live view of a running load test.
package progress

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"tixload/cli/internal/metrics"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var frames = []string{"|", "/", "-", "\\"}

// Board tracks iterations and redraws an area printer on a ticker.
type Board struct {
	Scenario string
	VUs      int
	Duration time.Duration
	// Snapshot supplies the step totals; usually (*metrics.Summary).Snapshot.
	Snapshot func() metrics.Snapshot

	iterations atomic.Int64
	failed     atomic.Int64
	started    time.Time

	mu         sync.Mutex
	area       *pterm.AreaPrinter
	stop       chan struct{}
	wg         sync.WaitGroup
	frame      int
	maxLineLen int
	last       string
}

// Observe counts a finished iteration. It matches loadrun.Runner.OnIteration.
func (b *Board) Observe(_, _ int, err error) {
	b.iterations.Add(1)
	if err != nil {
		b.failed.Add(1)
	}
}

// Start begins redrawing every interval until Stop.
func (b *Board) Start(interval time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.area != nil {
		return nil
	}
	b.started = time.Now()

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return err
	}
	b.area = area
	b.stop = make(chan struct{})

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				b.redraw()
			case <-b.stop:
				return
			}
		}
	}()
	return nil
}

// Stop removes the live view and restores the cursor.
func (b *Board) Stop() {
	b.mu.Lock()
	if b.area == nil {
		b.mu.Unlock()
		return
	}
	close(b.stop)
	b.mu.Unlock()

	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.area.Stop()
	b.area = nil
	cursor.Show()
}

func (b *Board) redraw() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.area == nil {
		return
	}
	b.frame++
	text := b.render(b.frame, time.Since(b.started))
	if text == b.last {
		return
	}
	b.last = text
	b.area.Update(text)
}

// render is the text of one frame. Lines are padded to the widest line seen
// so shorter updates fully overwrite longer ones.
func (b *Board) render(frame int, elapsed time.Duration) string {
	var snap metrics.Snapshot
	if b.Snapshot != nil {
		snap = b.Snapshot()
	}

	head := fmt.Sprintf("%s running %s with %d VUs  %s", frames[frame%len(frames)], b.Scenario, b.VUs, elapsed.Round(time.Second))
	if b.Duration > 0 {
		head += " / " + b.Duration.String()
	}
	lines := []string{
		head,
		fmt.Sprintf("  iterations %d  failed %d  step error rate %.1f%%",
			b.iterations.Load(), b.failed.Load(), snap.ErrorRate()*100),
	}
	for _, st := range snap.Steps {
		mark := "✓"
		if st.Errors > 0 {
			mark = "✗"
		}
		line := fmt.Sprintf("  %s %-26s %d", mark, st.Name, st.Total)
		if st.Errors > 0 {
			line += fmt.Sprintf("  (%d failed)", st.Errors)
		}
		lines = append(lines, line)
	}

	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > b.maxLineLen {
			b.maxLineLen = n
		}
	}
	for i := range lines {
		if pad := b.maxLineLen - utf8.RuneCountInString(lines[i]); pad > 0 {
			lines[i] += strings.Repeat(" ", pad)
		}
	}
	return strings.Join(lines, "\n")
}
