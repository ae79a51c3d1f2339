// Package service provides the business logic layer for the gallery server.
//
// The service package implements:
//   - Multi-session management
//   - Gomoku placement, undo, reset and computer replies
//   - Move suggestions and forbidden-move analysis
//   - Trie workspace operations with step traces for animation
//   - Rule preset listing and loading
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule preset loading and validation. Recorder
// archives finished matches.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the engines. Each session owns one Gomoku match engine and one trie;
// the service serializes every mutation behind a single lock and persists
// the session after it.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithLogger(logger),
//		service.WithRecorder(store),
//	)
//
//	info, err := gameService.CreateSession(ctx, "renju")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Place(ctx, info.ID, gomoku.Point{Row: 7, Col: 7})
//	trieResult, err := gameService.TrieInsert(ctx, info.ID, "apple")
//
// Sessions:
//
// Sessions are identified by 4-character IDs and hold independent state.
// When a preset names an AI colour the computer answers automatically,
// including the opening move when it holds the first turn.
package service
