// Package trie provides an immutable prefix tree whose operations describe
// themselves as animation steps.
//
// The package separates two concerns that a visualizer usually mixes:
//   - Structure: Trie is a persistent value. Insert and Delete return a new
//     Trie and never modify the receiver, so any version can be kept as a
//     snapshot.
//   - Animation: every operation also returns a Trace, a lazy and restartable
//     sequence of Steps generated from the pre-operation snapshot. A Step names
//     the node being highlighted (by its path from the root) and what happened
//     to it.
//
// Playback:
//
// Play drives a Trace through a Pacer, folding steps into Frames (the set of
// highlighted paths after each step). Delay reproduces the gallery timing of
// 500ms per step with a one second hold on search results; Immediate is meant
// for headless callers and tests. Playback stops when the context is done.
//
// Usage:
//
//	t := trie.FromWords("app", "apple")
//	t, tr := t.Insert("appid")
//	err := trie.Play(ctx, tr, trie.Delay{}, func(f trie.Frame) error {
//		render(t, f.Highlighted)
//		return nil
//	})
//
// Concurrency:
//
// Trie values are safe to share between goroutines because they are never
// mutated. Callers that keep a single "current" trie must serialize the
// operations that replace it.
package trie
