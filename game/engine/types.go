package engine

import (
	"slices"

	"github.com/aigallery/gallery/game/gomoku"
)

// Enforcement names which colours the forbidden-move rules bind.
type Enforcement string

const (
	EnforceBlack Enforcement = "black"
	EnforceWhite Enforcement = "white"
	EnforceBoth  Enforcement = "both"

	// WebSocketBufferSize is the queue length of the hub and of each client.
	WebSocketBufferSize = 256
)

// Messages are the player-facing texts of a preset. Turn takes the colour
// name, Forbidden takes the rule name.
type Messages struct {
	Welcome     string `json:"welcome" yaml:"welcome"`
	Turn        string `json:"turn" yaml:"turn"`
	BlackWin    string `json:"black_win" yaml:"black_win"`
	WhiteWin    string `json:"white_win" yaml:"white_win"`
	Draw        string `json:"draw" yaml:"draw"`
	Forbidden   string `json:"forbidden" yaml:"forbidden"`
	Occupied    string `json:"occupied" yaml:"occupied"`
	OutOfBounds string `json:"out_of_bounds" yaml:"out_of_bounds"`
	GameOver    string `json:"game_over" yaml:"game_over"`
}

// AIConfig configures the computer opponent of a preset.
type AIConfig struct {
	// Color is "black" or "white" when the computer answers every move of
	// the other colour; empty disables auto replies.
	Color    string `json:"color,omitempty" yaml:"color,omitempty"`
	Rank     string `json:"rank,omitempty" yaml:"rank,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// GameConfig is a rule preset loaded from JSON or YAML.
type GameConfig struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Rules       []string    `json:"rules" yaml:"rules"`
	EnforceFor  Enforcement `json:"enforce_for" yaml:"enforce_for"`
	JumpThrees  bool        `json:"jump_threes" yaml:"jump_threes"`
	FirstPlayer string      `json:"first_player" yaml:"first_player"`
	AI          AIConfig    `json:"ai" yaml:"ai"`
	Messages    Messages    `json:"messages" yaml:"messages"`
}

// GameState is the complete state of a match.
type GameState struct {
	Board       gomoku.Board      `json:"board"`
	Turn        gomoku.Stone      `json:"turn"`
	Winner      gomoku.Stone      `json:"winner,omitempty"`
	WinningLine []gomoku.Point    `json:"winning_line,omitempty"`
	GameOver    bool              `json:"game_over"`
	Draw        bool              `json:"draw"`
	Message     string            `json:"message"`
	ConfigName  string            `json:"config_name"`
	LastMove    *gomoku.Point     `json:"last_move,omitempty"`
	Rejected    *gomoku.Violation `json:"rejected,omitempty"`

	// Stones lists the cells of the current game in placement order.
	Stones []gomoku.Point `json:"stones"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single placement or undo in the game history
type MoveHistoryEntry struct {
	Action     string       `json:"action"`
	Player     gomoku.Stone `json:"player"`
	Position   gomoku.Point `json:"position"`
	Timestamp  int64        `json:"timestamp"`
	Success    bool         `json:"success"`
	Reason     string       `json:"reason,omitempty"`
	MoveNumber int          `json:"move_number"`
}

// Analysis describes what a stone at Point would create for Player.
type Analysis struct {
	Point       gomoku.Point       `json:"point"`
	Player      gomoku.Stone       `json:"player"`
	Occupied    bool               `json:"occupied"`
	Win         bool               `json:"win"`
	DoubleThree gomoku.DoubleThree `json:"double_three"`
	DoubleFour  gomoku.DoubleFour  `json:"double_four"`
	Overlines   [][]gomoku.Point   `json:"overlines"`
	Violation   *gomoku.Violation  `json:"violation,omitempty"`
}

// Clone returns a deep copy of the state that later moves do not touch.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.WinningLine = slices.Clone(gs.WinningLine)
	c.Stones = slices.Clone(gs.Stones)
	c.MoveHistory = slices.Clone(gs.MoveHistory)
	c.CurrentMoves = slices.Clone(gs.CurrentMoves)
	if gs.LastMove != nil {
		p := *gs.LastMove
		c.LastMove = &p
	}
	if gs.Rejected != nil {
		v := *gs.Rejected
		v.Positions = slices.Clone(gs.Rejected.Positions)
		c.Rejected = &v
	}
	return &c
}
