package trie

import (
	"context"
	"iter"
	"slices"
	"strings"
	"time"
)

// Default playback timing.
const (
	DefaultStepDelay = 500 * time.Millisecond
	DefaultHoldDelay = time.Second
)

// Frame is the highlight state after applying Step.
type Frame struct {
	Index       int      `json:"index"`
	Step        Step     `json:"step"`
	Highlighted []string `json:"highlighted"`
}

// Frames folds the steps of tr into highlight frames. Terminal steps clear
// the highlight set; a prune drops highlights under the removed child.
func Frames(tr Trace) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		var lit []string
		i := 0
		for s := range tr.Steps() {
			switch {
			case s.Kind.Terminal():
				lit = nil
			case s.Kind == Prune:
				gone := s.Path + s.Char
				lit = slices.DeleteFunc(lit, func(p string) bool {
					return strings.HasPrefix(p, gone)
				})
				lit = highlight(lit, s.Path)
			default:
				lit = highlight(lit, s.Path)
			}
			if !yield(Frame{Index: i, Step: s, Highlighted: append([]string{}, lit...)}) {
				return
			}
			i++
		}
	}
}

func highlight(lit []string, path string) []string {
	if slices.Contains(lit, path) {
		return lit
	}
	return append(lit, path)
}

// Pacer decides how long a frame stays on screen.
type Pacer interface {
	Pace(ctx context.Context, s Step) error
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, s Step) error

// Pace calls f.
func (f PacerFunc) Pace(ctx context.Context, s Step) error {
	return f(ctx, s)
}

// Delay waits a fixed time after each step and Hold after Hold steps.
// Zero fields fall back to DefaultStepDelay and DefaultHoldDelay.
type Delay struct {
	Step time.Duration
	Hold time.Duration
}

// Pace blocks until the delay for s elapsed or ctx is done.
func (d Delay) Pace(ctx context.Context, s Step) error {
	wait := d.Step
	if wait == 0 {
		wait = DefaultStepDelay
	}
	if s.Kind == Hold {
		wait = d.Hold
		if wait == 0 {
			wait = DefaultHoldDelay
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Immediate never waits.
type Immediate struct{}

// Pace only reports cancellation.
func (Immediate) Pace(ctx context.Context, _ Step) error {
	return ctx.Err()
}

// Play renders every frame of tr through fn, pacing each one with p.
// It returns the first error from fn or p, including ctx.Err() when
// playback is cancelled.
func Play(ctx context.Context, tr Trace, p Pacer, fn func(Frame) error) error {
	if p == nil {
		p = Immediate{}
	}
	for f := range Frames(tr) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
		if err := p.Pace(ctx, f.Step); err != nil {
			return err
		}
	}
	return nil
}
