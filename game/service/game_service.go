package service

import (
	"context"
	"time"

	"github.com/aigallery/gallery/game/ai"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/records"
	"github.com/aigallery/gallery/game/trie"
)

// GameService defines all session operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Gomoku Operations
	Place(ctx context.Context, sessionID string, p gomoku.Point) (*PlaceResult, error)
	Undo(ctx context.Context, sessionID string) (*engine.GameState, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	Suggest(ctx context.Context, sessionID string) (*ai.Suggestion, error)
	Analyze(ctx context.Context, sessionID string, p gomoku.Point, player gomoku.Stone) (*engine.Analysis, error)
	Forbidden(ctx context.Context, sessionID string) ([]ForbiddenCell, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Trie Workspace
	TrieInsert(ctx context.Context, sessionID, word string) (*TrieResult, error)
	TrieDelete(ctx context.Context, sessionID, word string) (*TrieResult, error)
	TrieSearch(ctx context.Context, sessionID, word string) (*TrieResult, error)
	TrieWords(ctx context.Context, sessionID, prefix string) ([]string, error)
	TrieReset(ctx context.Context, sessionID string) (*TrieResult, error)
	TrieRandom(ctx context.Context, sessionID string, n int) (*TrieResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles rule preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Recorder archives finished matches
type Recorder interface {
	Save(ctx context.Context, m records.Match) (records.Match, error)
}

// SuggesterFactory builds the move suggester for a preset
type SuggesterFactory func(config *engine.GameConfig) ai.Suggester

// Session represents an active session: one Gomoku match and one trie
// workspace
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	Trie           trie.Trie
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
