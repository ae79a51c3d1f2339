package trie

import (
	"maps"
	"slices"
)

// node is never modified once it is reachable from a Trie.
type node struct {
	children map[rune]*node
	end      bool
}

func (n *node) child(r rune) *node {
	if n == nil {
		return nil
	}
	return n.children[r]
}

func (n *node) isEnd() bool {
	return n != nil && n.end
}

func (n *node) childCount() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// clone returns a shallow copy with its own child map.
func (n *node) clone() *node {
	if n == nil {
		return &node{children: map[rune]*node{}}
	}
	c := &node{end: n.end, children: make(map[rune]*node, len(n.children)+1)}
	maps.Copy(c.children, n.children)
	return c
}

// keys returns the child characters in ascending order.
func (n *node) keys() []rune {
	if n == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(n.children))
}

// lookup walks rs from n and returns the node reached, or nil.
func (n *node) lookup(rs []rune) *node {
	cur := n
	for _, r := range rs {
		cur = cur.child(r)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// insert returns a copy of the path for rs with the last node marked.
func insert(n *node, rs []rune) *node {
	c := n.clone()
	if len(rs) == 0 {
		c.end = true
		return c
	}
	c.children[rs[0]] = insert(n.child(rs[0]), rs[1:])
	return c
}

// remove unmarks rs below n and prunes every node left without children
// or end marker. It returns nil when n itself should be pruned.
func remove(n *node, rs []rune) *node {
	c := n.clone()
	if len(rs) == 0 {
		c.end = false
	} else if sub := remove(n.child(rs[0]), rs[1:]); sub == nil {
		delete(c.children, rs[0])
	} else {
		c.children[rs[0]] = sub
	}
	if len(c.children) == 0 && !c.end {
		return nil
	}
	return c
}

// walk visits stored words below n in lexical order.
func walk(n *node, prefix []rune, yield func(string) bool) bool {
	if n == nil {
		return true
	}
	if n.end && !yield(string(prefix)) {
		return false
	}
	for _, r := range n.keys() {
		if !walk(n.children[r], append(prefix, r), yield) {
			return false
		}
	}
	return true
}
