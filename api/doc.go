// Package api provides the HTTP REST API for Gomoku and trie sessions.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "renju"})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Gomoku:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/place - Place a stone ({"row": 7, "col": 7})
//   - POST /api/sessions/{id}/undo - Take back the last move
//   - POST /api/sessions/{id}/reset - Start a new game
//   - GET /api/sessions/{id}/suggest - Suggested move for the side to move
//   - GET /api/sessions/{id}/analyze?row=&col=&player= - Forbidden analysis of a cell
//   - GET /api/sessions/{id}/forbidden - Forbidden cells for the side to move
//   - GET /api/sessions/{id}/history - Paginated move history
//
// Trie:
//   - POST /api/sessions/{id}/trie/insert|delete|search - {"word": "cat", "animate": true}
//   - GET /api/sessions/{id}/trie/words?prefix= - Stored words
//   - POST /api/sessions/{id}/trie/random - Seed random words ({"count": 10})
//   - POST /api/sessions/{id}/trie/reset - Empty the trie
//
// With animate set, the operation's frames are played to the session's
// WebSocket clients, followed by a trie_done event.
//
// Presets and archive:
//   - GET /api/configs, GET /api/configs/{name}, POST /api/configs
//   - GET /api/records?preset=&limit=, GET /api/records/{id}
//   - GET /api/records/leaderboard
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket updates
//
// Error Handling:
//
// Errors are returned as JSON with a status derived from the error:
//
//	{
//	  "error": "place black at (7,7): forbidden move",
//	  "code": 422
//	}
//
// Rejected placements return the PlaceResult itself with the error status,
// so clients see the violation and the unchanged state.
package api
