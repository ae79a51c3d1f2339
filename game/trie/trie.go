package trie

import (
	"encoding/json"
	"iter"
	"math/rand/v2"
	"slices"
)

// Trie is an immutable set of words. The zero value is an empty trie.
type Trie struct {
	root *node
	size int
}

// New returns an empty trie.
func New() Trie {
	return Trie{}
}

// FromWords builds a trie holding words, skipping empty ones.
func FromWords(words ...string) Trie {
	t := Trie{}
	for _, w := range words {
		t = t.add(w)
	}
	return t
}

func (t Trie) add(word string) Trie {
	if word == "" || t.Contains(word) {
		return t
	}
	return Trie{root: insert(t.root, []rune(word)), size: t.size + 1}
}

// Insert returns a trie that also holds word, together with the trace of
// the insertion. Inserting an empty word leaves the trie unchanged.
func (t Trie) Insert(word string) (Trie, Trace) {
	return t.add(word), Trace{Op: OpInsert, Word: word, root: t.root}
}

// Delete returns a trie without word. Nodes left without children or end
// marker are pruned bottom-up. Deleting an absent word is a no-op whose
// trace ends in a Miss.
func (t Trie) Delete(word string) (Trie, Trace) {
	tr := Trace{Op: OpDelete, Word: word, root: t.root}
	if word == "" || !t.Contains(word) {
		return t, tr
	}
	return Trie{root: remove(t.root, []rune(word)), size: t.size - 1}, tr
}

// Search reports whether word is stored, together with the search trace.
func (t Trie) Search(word string) (bool, Trace) {
	return t.Contains(word), Trace{Op: OpSearch, Word: word, root: t.root}
}

// Contains reports whether word is stored.
func (t Trie) Contains(word string) bool {
	if word == "" {
		return false
	}
	return t.root.lookup([]rune(word)).isEnd()
}

// HasPrefix reports whether any stored word starts with prefix.
func (t Trie) HasPrefix(prefix string) bool {
	return t.root.lookup([]rune(prefix)) != nil
}

// Len returns the number of stored words.
func (t Trie) Len() int {
	return t.size
}

// All iterates over the stored words in lexical order.
func (t Trie) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		walk(t.root, nil, yield)
	}
}

// Words returns the stored words in lexical order.
func (t Trie) Words() []string {
	words := slices.Collect(t.All())
	if words == nil {
		return []string{}
	}
	return words
}

// WithPrefix returns the stored words starting with prefix.
func (t Trie) WithPrefix(prefix string) []string {
	rs := []rune(prefix)
	words := []string{}
	walk(t.root.lookup(rs), rs, func(w string) bool {
		words = append(words, w)
		return true
	})
	return words
}

// MarshalJSON encodes the trie as its sorted word list.
func (t Trie) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Words())
}

// UnmarshalJSON rebuilds the trie from a word list.
func (t *Trie) UnmarshalJSON(data []byte) error {
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	*t = FromWords(words...)
	return nil
}

// SampleWords is the word pool used to seed random tries.
var SampleWords = []string{
	"apple", "app", "appid", "application", "banana",
	"blueberry", "cherry", "data", "date", "day",
	"dog", "elderberry", "fig", "fruit", "grape",
	"honeydew", "kiwi", "lemon", "xray", "zebra",
}

// DefaultRandomCount is the number of words Random picks by default.
const DefaultRandomCount = 10

// Random returns a trie of n distinct words drawn from SampleWords.
func Random(rng *rand.Rand, n int) Trie {
	if n <= 0 {
		n = DefaultRandomCount
	}
	n = min(n, len(SampleWords))
	words := make([]string, 0, n)
	for _, i := range rng.Perm(len(SampleWords))[:n] {
		words = append(words, SampleWords[i])
	}
	return FromWords(words...)
}
