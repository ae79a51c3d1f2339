package trie

import (
	"iter"
	"slices"
)

// Kind identifies what happened at a step.
type Kind string

const (
	// Visit highlights an existing node on the operation path.
	Visit Kind = "visit"
	// Create highlights a node that the insert adds.
	Create Kind = "create"
	// Mark sets the end-of-word flag on the last inserted node.
	Mark Kind = "mark"
	// Unmark clears the end-of-word flag of a deleted word.
	Unmark Kind = "unmark"
	// Prune removes the child Char from the node at Path.
	Prune Kind = "prune"
	// Hold keeps the search result highlighted for one time unit.
	Hold Kind = "hold"
	// Miss reports a missing path and clears all highlights.
	Miss Kind = "miss"
	// Clear ends an operation and clears all highlights.
	Clear Kind = "clear"
)

// Terminal reports whether k ends a trace.
func (k Kind) Terminal() bool {
	return k == Miss || k == Clear
}

// Step is a single highlight event. Path is the highlighted node, spelled
// from the root; the root itself is "".
type Step struct {
	Kind  Kind   `json:"kind"`
	Path  string `json:"path"`
	Char  string `json:"char,omitempty"`
	Found bool   `json:"found,omitempty"`
}

// Op names a trie operation.
type Op string

const (
	OpInsert Op = "insert"
	OpDelete Op = "delete"
	OpSearch Op = "search"
)

// Trace describes the steps of one operation. It holds the snapshot taken
// before the operation ran, so Steps can be iterated any number of times.
type Trace struct {
	Op   Op
	Word string
	root *node
}

// Steps returns the step sequence of the operation.
func (tr Trace) Steps() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		rs := []rune(tr.Word)
		switch tr.Op {
		case OpInsert:
			insertSteps(tr.root, rs, yield)
		case OpDelete:
			deleteSteps(tr.root, rs, yield)
		case OpSearch:
			searchSteps(tr.root, rs, yield)
		}
	}
}

// Collect returns all steps of the trace.
func (tr Trace) Collect() []Step {
	return slices.Collect(tr.Steps())
}

func insertSteps(root *node, rs []rune, yield func(Step) bool) {
	if len(rs) == 0 {
		yield(Step{Kind: Clear})
		return
	}
	cur := root
	for i, r := range rs {
		next := cur.child(r)
		kind := Visit
		if next == nil {
			kind = Create
		}
		if !yield(Step{Kind: kind, Path: string(rs[:i+1]), Char: string(r)}) {
			return
		}
		cur = next
	}
	if !yield(Step{Kind: Mark, Path: string(rs)}) {
		return
	}
	yield(Step{Kind: Clear})
}

func searchSteps(root *node, rs []rune, yield func(Step) bool) {
	if len(rs) == 0 {
		yield(Step{Kind: Miss})
		return
	}
	cur := root
	for i, r := range rs {
		next := cur.child(r)
		if next == nil {
			yield(Step{Kind: Miss, Path: string(rs[:i]), Char: string(r)})
			return
		}
		if !yield(Step{Kind: Visit, Path: string(rs[:i+1]), Char: string(r)}) {
			return
		}
		cur = next
	}
	if !yield(Step{Kind: Hold, Path: string(rs), Found: cur.end}) {
		return
	}
	yield(Step{Kind: Clear})
}

// deleteSteps highlights each node before descending out of it, unmarks the
// word node and then reports prunes while unwinding.
func deleteSteps(root *node, rs []rune, yield func(Step) bool) {
	if len(rs) == 0 {
		yield(Step{Kind: Miss})
		return
	}
	path := make([]*node, 0, len(rs)+1)
	cur := root
	for i, r := range rs {
		next := cur.child(r)
		if next == nil {
			yield(Step{Kind: Miss, Path: string(rs[:i]), Char: string(r)})
			return
		}
		if !yield(Step{Kind: Visit, Path: string(rs[:i])}) {
			return
		}
		path = append(path, cur)
		cur = next
	}
	if !cur.end {
		yield(Step{Kind: Miss, Path: string(rs)})
		return
	}
	if !yield(Step{Kind: Unmark, Path: string(rs)}) {
		return
	}

	// path[d] is the parent of the node at depth d+1.
	pruned := len(cur.children) == 0
	for d := len(rs) - 1; d >= 0 && pruned; d-- {
		if !yield(Step{Kind: Prune, Path: string(rs[:d]), Char: string(rs[d])}) {
			return
		}
		parent := path[d]
		pruned = d > 0 && len(parent.children) == 1 && !parent.end
	}
	yield(Step{Kind: Clear})
}
