package trie

import (
	"slices"
	"strings"
)

// NodeView is a JSON friendly snapshot of a node and its subtree.
type NodeView struct {
	Char     string     `json:"char"`
	Path     string     `json:"path"`
	End      bool       `json:"end"`
	Children []NodeView `json:"children"`
}

// View returns the tree rooted at the empty path, children sorted by char.
func (t Trie) View() NodeView {
	return view(t.root, "", "")
}

func view(n *node, char, path string) NodeView {
	v := NodeView{Char: char, Path: path, End: n.isEnd(), Children: []NodeView{}}
	for _, r := range n.keys() {
		c := string(r)
		v.Children = append(v.Children, view(n.children[r], c, path+c))
	}
	return v
}

// Render draws the trie as an indented outline. End-of-word nodes carry a
// "*" and highlighted paths are wrapped in brackets.
func Render(t Trie, highlighted []string) string {
	var b strings.Builder
	render(&b, t.View(), 0, highlighted)
	return b.String()
}

func render(b *strings.Builder, v NodeView, depth int, lit []string) {
	label := v.Char
	if depth == 0 {
		label = "root"
	}
	if v.End {
		label += "*"
	}
	if slices.Contains(lit, v.Path) {
		label = "[" + label + "]"
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(label)
	b.WriteByte('\n')
	for _, c := range v.Children {
		render(b, c, depth+1, lit)
	}
}
