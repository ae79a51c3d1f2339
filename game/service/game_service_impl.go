package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aigallery/gallery/game/ai"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/records"
	"github.com/aigallery/gallery/logging"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	configs    ConfigManager
	recorder   Recorder
	suggesters SuggesterFactory
	logger     *zap.Logger
	rng        *rand.Rand
	mu         sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = logging.OrNop(l) }
}

// WithRecorder archives every finished match in r
func WithRecorder(r Recorder) Option {
	return func(s *gameServiceImpl) { s.recorder = r }
}

// WithSuggesters replaces the default move suggesters
func WithSuggesters(f SuggesterFactory) Option {
	return func(s *gameServiceImpl) { s.suggesters = f }
}

// WithRand sets the random source used to seed random tries
func WithRand(r *rand.Rand) Option {
	return func(s *gameServiceImpl) { s.rng = r }
}

// DefaultSuggesters asks the preset's inference endpoint when one is
// configured and falls back to the rule-aware heuristic of the preset's rank.
func DefaultSuggesters(logger *zap.Logger) SuggesterFactory {
	return func(config *engine.GameConfig) ai.Suggester {
		rank, err := ai.ParseRank(config.AI.Rank)
		if err != nil {
			rank = ai.Expert
		}
		heuristic := ai.NewHeuristic(rank, ai.WithRules(config.RuleChecker(), config.Constrained()...))
		if config.AI.Endpoint == "" {
			return heuristic
		}
		return ai.Fallback{
			Primary:   ai.NewRemote(config.AI.Endpoint),
			Secondary: heuristic,
			Logger:    logger,
		}
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.suggesters == nil {
		s.suggesters = DefaultSuggesters(s.logger)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

func (s *gameServiceImpl) info(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		GameConfig:     sess.Config,
		Words:          sess.Trie.Words(),
	}
}

// CreateSession creates a new session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w. Available configs: %v", err, configIDs)
				}
				return nil, fmt.Errorf("%w. Use /api/configs to list available configurations", err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// The computer may hold the opening move
	if _, err := s.autoReply(ctx, session); err != nil {
		s.logger.Warn("ai opening move failed", zap.String("session", session.ID), zap.Error(err))
	}
	s.persist(session.ID, "create")

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", zap.String("session", session.ID), zap.String("config", configID))
	return s.info(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.info(session, s.getConfigID(session.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.info(sess, s.getConfigID(sess.Config.Name)))
	}
	slices.SortFunc(result, func(a, b *SessionInfo) int { return a.CreatedAt.Compare(b.CreatedAt) })

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Place puts a stone of the side to move at p. A rejected placement
// returns both the result and the engine error.
func (s *gameServiceImpl) Place(ctx context.Context, sessionID string, p gomoku.Point) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	player := sess.Engine.Turn()
	placeErr := sess.Engine.Place(p)
	state := sess.Engine.GetState()

	result := &PlaceResult{
		Success:   placeErr == nil,
		GameState: state.Clone(),
		Message:   state.Message,
		Events:    []GameEvent{},
	}

	if placeErr != nil {
		if errors.Is(placeErr, engine.ErrForbidden) && state.Rejected != nil {
			result.Violation = state.Rejected
			result.Events = append(result.Events, newEvent(EventForbidden, state.Message, player, &p))
		}
		s.logger.Debug("placement rejected",
			zap.String("session", sessionID), zap.Stringer("point", p), zap.Error(placeErr))
		s.persist(sessionID, "place")
		return result, fmt.Errorf("place %s at %v: %w", player, p, placeErr)
	}

	result.Events = append(result.Events, placementEvents(state, player, p)...)

	reply, err := s.autoReply(ctx, sess)
	if err != nil {
		s.logger.Warn("ai reply failed", zap.String("session", sessionID), zap.Error(err))
	}
	if reply != nil {
		result.Reply = reply
		events := placementEvents(state, player.Opponent(), reply.Move)
		events[0].Type = EventAIMove
		result.Events = append(result.Events, events...)
	}
	result.GameState = state.Clone()
	result.Message = state.Message

	if state.GameOver {
		s.archive(ctx, sess)
	}
	s.persist(sessionID, "place")

	return result, nil
}

// autoReply plays the computer's move when it is the computer's turn
func (s *gameServiceImpl) autoReply(ctx context.Context, sess *Session) (*ai.Suggestion, error) {
	state := sess.Engine.GetState()
	if state.GameOver || !aiPlays(sess.Config, state.Turn) {
		return nil, nil
	}

	sg, err := s.suggesters(sess.Config).Suggest(ctx, requestFor(state))
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Place(sg.Move); err != nil {
		return nil, fmt.Errorf("ai move %v: %w", sg.Move, err)
	}
	s.logger.Debug("ai moved",
		zap.String("session", sess.ID), zap.Stringer("point", sg.Move), zap.String("source", sg.Source))
	return &sg, nil
}

func aiPlays(config *engine.GameConfig, turn gomoku.Stone) bool {
	if config == nil || config.AI.Color == "" {
		return false
	}
	color, err := gomoku.ParseStone(config.AI.Color)
	return err == nil && color == turn
}

func requestFor(state *engine.GameState) ai.Request {
	return ai.Request{Board: state.Board, LastMove: state.LastMove, ToMove: state.Turn}
}

// placementEvents describes a successful placement and its outcome
func placementEvents(state *engine.GameState, player gomoku.Stone, p gomoku.Point) []GameEvent {
	events := []GameEvent{
		newEvent(EventPlace, fmt.Sprintf("%s played %s", capitalize(player.Name()), engine.Notation(p)), player, &p),
	}
	switch {
	case state.GameOver && state.Winner == player:
		events = append(events, newEvent(EventWin, state.Message, player, nil))
	case state.Draw:
		events = append(events, newEvent(EventDraw, state.Message, gomoku.Empty, nil))
	}
	return events
}

func newEvent(kind, message string, player gomoku.Stone, p *gomoku.Point) GameEvent {
	return GameEvent{Type: kind, Message: message, Timestamp: time.Now(), Player: player, Position: p}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// archive records a finished match
func (s *gameServiceImpl) archive(ctx context.Context, sess *Session) {
	if s.recorder == nil {
		return
	}
	state := sess.Engine.GetState()
	m, err := s.recorder.Save(ctx, records.Match{
		SessionID: sess.ID,
		Preset:    s.getConfigID(sess.Config.Name),
		Winner:    state.Winner,
		Draw:      state.Draw,
		Moves:     slices.Clone(state.Stones),
	})
	if err != nil {
		s.logger.Warn("failed to archive match", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	s.logger.Info("match archived",
		zap.String("session", sess.ID), zap.String("record", m.ID), zap.Stringer("winner", state.Winner))
}

// persist saves the session, logging failures
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session",
			zap.String("session", sessionID), zap.String("after", after), zap.Error(err))
	}
}

// Undo takes back the last stone. Against the computer the computer's
// reply is taken back too, so the turn returns to the human.
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.Undo(); err != nil {
		return sess.Engine.GetState().Clone(), err
	}
	if aiPlays(sess.Config, sess.Engine.Turn()) && len(sess.Engine.GetState().Stones) > 0 {
		if err := sess.Engine.Undo(); err != nil {
			return sess.Engine.GetState().Clone(), err
		}
	}
	s.persist(sessionID, "undo")

	return sess.Engine.GetState().Clone(), nil
}

// Reset starts a new match in the session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	sess.Engine.Reset()
	if _, err := s.autoReply(ctx, sess); err != nil {
		s.logger.Warn("ai opening move failed", zap.String("session", sessionID), zap.Error(err))
	}
	s.persist(sessionID, "reset")

	return sess.Engine.GetState().Clone(), nil
}

// Suggest proposes a move for the side to move. The suggester runs
// outside the service lock.
func (s *gameServiceImpl) Suggest(ctx context.Context, sessionID string) (*ai.Suggestion, error) {
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	state := sess.Engine.GetState()
	if state.GameOver {
		s.mu.RUnlock()
		return nil, engine.ErrGameOver
	}
	req := requestFor(state)
	suggester := s.suggesters(sess.Config)
	s.mu.RUnlock()

	sg, err := suggester.Suggest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return &sg, nil
}

// Analyze reports what a stone of player at p would create. An empty
// player means the side to move.
func (s *gameServiceImpl) Analyze(ctx context.Context, sessionID string, p gomoku.Point, player gomoku.Stone) (*engine.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if !p.InBounds() {
		return nil, fmt.Errorf("%w: %v", engine.ErrOutOfBounds, p)
	}
	if player == gomoku.Empty {
		player = sess.Engine.Turn()
	}

	a := sess.Engine.Analyze(p, player)
	return &a, nil
}

// Forbidden lists the cells the side to move may not play, in board order
func (s *gameServiceImpl) Forbidden(ctx context.Context, sessionID string) ([]ForbiddenCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	cells := []ForbiddenCell{}
	for p, v := range sess.Engine.ForbiddenCells() {
		cells = append(cells, ForbiddenCell{Point: p, Violation: v})
	}
	slices.SortFunc(cells, func(a, b ForbiddenCell) int {
		if a.Point.Row != b.Point.Row {
			return a.Point.Row - b.Point.Row
		}
		return a.Point.Col - b.Point.Col
	})
	return cells, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	// Get the slice of moves
	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	// Ensure moves is not nil
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available rule presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a rule preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
