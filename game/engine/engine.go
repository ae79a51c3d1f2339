package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aigallery/gallery/game/gomoku"
)

var (
	ErrOutOfBounds   = errors.New("position out of bounds")
	ErrOccupied      = errors.New("position occupied")
	ErrGameOver      = errors.New("game is over")
	ErrForbidden     = errors.New("forbidden move")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Engine provides the main interface for match operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	Winner() gomoku.Stone
	Turn() gomoku.Stone

	// Placement operations
	Place(p gomoku.Point) error
	CanPlace(p gomoku.Point) bool
	Undo() error
	ForbiddenCells() map[gomoku.Point]gomoku.Violation
	Analyze(p gomoku.Point, player gomoku.Stone) Analysis

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state   *GameState
	config  *GameConfig
	checker gomoku.RuleChecker
}

// NewEngine creates a new match engine with the provided preset
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config:  config,
		checker: config.RuleChecker(),
		state:   InitGameStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new match engine with the built-in preset
func NewEngineWithDefaults() *GameEngine {
	config := DefaultConfig()
	return &GameEngine{
		config:  config,
		checker: config.RuleChecker(),
		state:   InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset starts a new game and keeps the cumulative history
func (e *GameEngine) Reset() *GameState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameStateFromConfig(e.config)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// Winner returns the winning colour, or Empty
func (e *GameEngine) Winner() gomoku.Stone {
	return e.state.Winner
}

// Turn returns the colour to move
func (e *GameEngine) Turn() gomoku.Stone {
	return e.state.Turn
}

// Constrained reports whether player is bound by the forbidden-move rules
func (e *GameEngine) Constrained(player gomoku.Stone) bool {
	return slices.Contains(e.config.Constrained(), player)
}

// Place puts a stone of the side to move at p
func (e *GameEngine) Place(p gomoku.Point) error {
	player := e.state.Turn
	err := e.state.PlaceStone(p, e.config, e.checker, e.Constrained(player))
	e.state.AddMoveToHistory("place", player, p, err)
	return err
}

// CanPlace checks whether the side to move may play at p
func (e *GameEngine) CanPlace(p gomoku.Point) bool {
	if e.state.GameOver {
		return false
	}
	s, ok := e.state.Board.At(p)
	if !ok || s != gomoku.Empty {
		return false
	}
	if !e.Constrained(e.state.Turn) || gomoku.ExactFive(&e.state.Board, p, e.state.Turn) {
		return true
	}
	_, bad := e.checker.Check(&e.state.Board, p, e.state.Turn)
	return !bad
}

// Undo takes back the last stone of the current game
func (e *GameEngine) Undo() error {
	p, player, err := e.state.TakeBack(e.config)
	if err != nil {
		return err
	}
	e.state.AddMoveToHistory("undo", player, p, nil)
	return nil
}

// ForbiddenCells returns the empty cells the side to move may not play
func (e *GameEngine) ForbiddenCells() map[gomoku.Point]gomoku.Violation {
	if e.state.GameOver || !e.Constrained(e.state.Turn) {
		return map[gomoku.Point]gomoku.Violation{}
	}
	cells := e.checker.ForbiddenCells(&e.state.Board, e.state.Turn)
	for p := range cells {
		if gomoku.ExactFive(&e.state.Board, p, e.state.Turn) {
			delete(cells, p)
		}
	}
	return cells
}

// Analyze reports the shapes a stone of player at p would create. The
// violation is filled only when player is constrained.
func (e *GameEngine) Analyze(p gomoku.Point, player gomoku.Stone) Analysis {
	return AnalyzeMove(&e.state.Board, p, player, e.checker, e.Constrained(player))
}

// GetConfig returns the current preset
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new preset and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.checker = config.RuleChecker()
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
