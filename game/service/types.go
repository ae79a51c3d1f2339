package service

import (
	"time"

	"github.com/aigallery/gallery/game/ai"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/trie"
)

// SessionInfo provides information about a session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	Words          []string           `json:"words"`
}

// PlaceResult contains the result of a placement
type PlaceResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events"`
	Violation *gomoku.Violation `json:"violation,omitempty"`

	// Reply is the computer's answer when the preset has an AI colour.
	Reply *ai.Suggestion `json:"reply,omitempty"`
}

// Event types
const (
	EventPlace     = "place"
	EventForbidden = "forbidden"
	EventWin       = "win"
	EventDraw      = "draw"
	EventAIMove    = "ai_move"
	EventUndo      = "undo"
	EventReset     = "reset"
)

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Player    gomoku.Stone  `json:"player,omitempty"`
	Position  *gomoku.Point `json:"position,omitempty"`
}

// ForbiddenCell is an empty cell the side to move may not play
type ForbiddenCell struct {
	Point     gomoku.Point     `json:"point"`
	Violation gomoku.Violation `json:"violation"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a rule preset
type ConfigInfo struct {
	Filename    string   `json:"filename"`
	ConfigID    string   `json:"config_id"` // The identifier to use for session creation
	Name        string   `json:"name"`      // Display name
	Description string   `json:"description"`
	Rules       []string `json:"rules"`
	EnforceFor  string   `json:"enforce_for"`
	AIColor     string   `json:"ai_color,omitempty"`
}

// Trie result operations beyond the trie's own insert/delete/search
const (
	TrieOpReset  = "reset"
	TrieOpRandom = "random"
)

// TrieResult is the outcome of a trie workspace operation
type TrieResult struct {
	Op      string        `json:"op"`
	Word    string        `json:"word,omitempty"`
	Found   bool          `json:"found"`
	Changed bool          `json:"changed"`
	Steps   []trie.Step   `json:"steps"`
	Words   []string      `json:"words"`
	Tree    trie.NodeView `json:"tree"`

	// Trace replays Steps against the pre-operation snapshot.
	Trace trie.Trace `json:"-"`
}
