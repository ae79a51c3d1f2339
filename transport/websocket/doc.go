// Package websocket pushes session updates to browsers.
//
// A Hub keeps the clients of each session and fans out messages to them:
//   - state_update carries the full GameState after a placement, undo or reset
//   - trie_frame carries one frame of a trie operation playback
//   - trie_done and other custom events carry arbitrary data
//
// Clients connect with the session ID as query parameter
// (/ws?sessionId=ab12). Messages from clients are read only to keep the
// connection alive.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.BroadcastToSession(id, state)
//
// Run owns all client registration. Cancelling its context disconnects
// every client and turns later broadcasts into no-ops.
package websocket
