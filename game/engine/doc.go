// Package engine provides the match logic for Gomoku games.
//
// The engine package implements:
//   - Turn-based stone placement with bounds and occupancy checks
//   - Forbidden-move enforcement for the constrained colour
//   - Five-in-a-row detection and draws on a full board
//   - Undo and reset with a cumulative move history
//   - Rule preset loading (JSON or YAML) and validation
//
// Core Types:
//
// The Engine interface defines the main contract for match operations,
// implemented by GameEngine. GameState represents the current match, while
// GameConfig is a rule preset: which restrictions apply (three_three,
// four_four, long_connection), which colour they bind, who opens, and the
// messages shown to players.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("configs", "renju")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := gameEngine.Place(gomoku.Point{Row: 7, Col: 7}); err != nil {
//		// errors.Is(err, engine.ErrForbidden) etc.
//	}
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Players alternate placing stones on a 15x15 board; the first line of five
// or more wins. A move that makes exactly five always wins, even when it
// would otherwise break a restriction. Pattern detection itself lives in
// package gomoku; this package only decides what a match does with it.
package engine
