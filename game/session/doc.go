// Package session provides session management for Gomoku and trie sessions.
//
// Each session owns a game engine built from a rule preset and a
// persistent word trie. The manager keeps sessions in memory and, when a
// SessionPersistence is configured, mirrors them to storage:
//   - FilePersistence writes one JSON file per session
//   - BadgerPersistence stores sessions in a badger key-value store,
//     optionally expiring them after a TTL
//
// Session Identifiers:
//
// Sessions use 4-character alphanumeric IDs for easy reference. Lookups are
// case-insensitive and generated IDs never collide with a stored session.
//
// Concurrency:
//
// The manager is safe for concurrent use. Mutating a session's engine or
// trie is the caller's responsibility; the game service serialises those.
//
// Usage:
//
//	store, err := session.NewBadgerPersistence("data/sessions", configs, 24*time.Hour)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	manager := session.NewManagerWithPersistence(store, logger)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", preset)
//
// Cleanup:
//
// RunCleanup evicts idle sessions from memory on a ticker until its
// context is cancelled. Persisted copies remain loadable.
package session
