// Package mcp exposes the gallery to MCP clients.
//
// Client is a thin proxy: every tool calls the REST API over HTTP and
// formats the JSON response as text for the agent.
//
// Tools:
//   - create_session, list_sessions
//   - game_state, place_stone, undo_move, reset_game
//   - suggest_move, check_forbidden, move_history
//   - trie_insert, trie_search, trie_delete, trie_words, trie_random
//   - list_configs, game_instructions
//
// Board output prints column headers in hex (0-e) and marks the last move
// in lower case.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
