package trie

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFramesDelete(t *testing.T) {
	_, tr := FromWords("dog").Delete("dog")
	got := [][]string{}
	for f := range Frames(tr) {
		got = append(got, f.Highlighted)
	}
	want := [][]string{
		{""},
		{"", "d"},
		{"", "d", "do"},
		{"", "d", "do", "dog"},
		{"", "d", "do"},
		{"", "d"},
		{""},
		{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestFramesMissClears(t *testing.T) {
	_, tr := FromWords("apple").Search("apt")
	frames := slices.Collect(Frames(tr))
	require.Len(t, frames, 3)
	assert.Equal(t, []string{"a", "ap"}, frames[1].Highlighted)
	assert.Equal(t, Miss, frames[2].Step.Kind)
	assert.Empty(t, frames[2].Highlighted)
	assert.Equal(t, 2, frames[2].Index)
}

func TestPlayImmediate(t *testing.T) {
	_, tr := New().Insert("fig")
	var kinds []Kind
	err := Play(context.Background(), tr, Immediate{}, func(f Frame) error {
		kinds = append(kinds, f.Step.Kind)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Kind{Create, Create, Create, Mark, Clear}, kinds)
}

func TestPlayCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, tr := New().Insert("honeydew")
	seen := 0
	err := Play(ctx, tr, Delay{Step: time.Hour}, func(f Frame) error {
		seen++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, seen)
}

func TestPlayStopsOnRenderError(t *testing.T) {
	boom := errors.New("boom")
	_, tr := New().Insert("kiwi")
	seen := 0
	err := Play(context.Background(), tr, nil, func(f Frame) error {
		seen++
		if seen == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, seen)
}

func TestDelayHoldsSearchResult(t *testing.T) {
	var waits []time.Duration
	p := PacerFunc(func(ctx context.Context, s Step) error {
		d := Delay{Step: time.Millisecond, Hold: 3 * time.Millisecond}
		start := time.Now()
		if err := d.Pace(ctx, s); err != nil {
			return err
		}
		if s.Kind == Hold {
			waits = append(waits, time.Since(start))
		}
		return nil
	})

	_, tr := FromWords("fig").Search("fig")
	require.NoError(t, Play(context.Background(), tr, p, func(Frame) error { return nil }))
	require.Len(t, waits, 1)
	assert.GreaterOrEqual(t, waits[0], 3*time.Millisecond)
}

func TestDelayDefaults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := Delay{}.Pace(ctx, Step{Kind: Visit})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
