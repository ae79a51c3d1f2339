package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aigallery/gallery/game/trie"
)

// ErrEmptyWord is returned for trie operations without a word.
var ErrEmptyWord = errors.New("word must not be empty")

// trieOp runs fn against the session's trie under the service lock and
// fills the shared result fields
func (s *gameServiceImpl) trieOp(sessionID string, fn func(sess *Session) *TrieResult) (*TrieResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := fn(sess)
	result.Steps = append([]trie.Step{}, result.Trace.Collect()...)
	result.Words = sess.Trie.Words()
	result.Tree = sess.Trie.View()

	if result.Changed {
		s.persist(sessionID, "trie "+result.Op)
	}
	s.logger.Debug("trie operation",
		zap.String("session", sessionID), zap.String("op", result.Op),
		zap.String("word", result.Word), zap.Bool("changed", result.Changed), zap.Int("steps", len(result.Steps)))
	return result, nil
}

// TrieInsert adds word to the session's trie
func (s *gameServiceImpl) TrieInsert(ctx context.Context, sessionID, word string) (*TrieResult, error) {
	if word == "" {
		return nil, ErrEmptyWord
	}
	return s.trieOp(sessionID, func(sess *Session) *TrieResult {
		next, tr := sess.Trie.Insert(word)
		changed := next.Len() != sess.Trie.Len()
		sess.Trie = next
		return &TrieResult{Op: string(trie.OpInsert), Word: word, Found: true, Changed: changed, Trace: tr}
	})
}

// TrieDelete removes word from the session's trie. The word is searched
// first; a miss returns the search steps and leaves the trie unchanged.
func (s *gameServiceImpl) TrieDelete(ctx context.Context, sessionID, word string) (*TrieResult, error) {
	if word == "" {
		return nil, ErrEmptyWord
	}
	return s.trieOp(sessionID, func(sess *Session) *TrieResult {
		found, search := sess.Trie.Search(word)
		if !found {
			return &TrieResult{Op: string(trie.OpDelete), Word: word, Trace: search}
		}
		next, tr := sess.Trie.Delete(word)
		sess.Trie = next
		return &TrieResult{Op: string(trie.OpDelete), Word: word, Found: true, Changed: true, Trace: tr}
	})
}

// TrieSearch looks word up in the session's trie
func (s *gameServiceImpl) TrieSearch(ctx context.Context, sessionID, word string) (*TrieResult, error) {
	if word == "" {
		return nil, ErrEmptyWord
	}
	return s.trieOp(sessionID, func(sess *Session) *TrieResult {
		found, tr := sess.Trie.Search(word)
		return &TrieResult{Op: string(trie.OpSearch), Word: word, Found: found, Trace: tr}
	})
}

// TrieWords lists the stored words starting with prefix, lexically
func (s *gameServiceImpl) TrieWords(ctx context.Context, sessionID, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return sess.Trie.WithPrefix(prefix), nil
}

// TrieReset empties the session's trie
func (s *gameServiceImpl) TrieReset(ctx context.Context, sessionID string) (*TrieResult, error) {
	return s.trieOp(sessionID, func(sess *Session) *TrieResult {
		changed := sess.Trie.Len() > 0
		sess.Trie = trie.New()
		return &TrieResult{Op: TrieOpReset, Changed: changed}
	})
}

// TrieRandom replaces the session's trie with n random sample words
func (s *gameServiceImpl) TrieRandom(ctx context.Context, sessionID string, n int) (*TrieResult, error) {
	return s.trieOp(sessionID, func(sess *Session) *TrieResult {
		sess.Trie = trie.Random(s.rng, n)
		return &TrieResult{Op: TrieOpRandom, Found: true, Changed: true}
	})
}
