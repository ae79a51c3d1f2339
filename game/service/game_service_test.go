package service_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aigallery/gallery/game/ai"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/records"
	"github.com/aigallery/gallery/game/service"
	"github.com/aigallery/gallery/game/trie"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := engine.DefaultConfig()
	defaultConfig.Name = "test"
	defaultConfig.Description = "Test configuration"

	vsWhite := engine.DefaultConfig()
	vsWhite.Name = "vs-white"
	vsWhite.Description = "Computer plays white"
	vsWhite.AI.Color = "white"

	vsBlack := engine.DefaultConfig()
	vsBlack.Name = "vs-black"
	vsBlack.Description = "Computer plays black"
	vsBlack.AI.Color = "black"

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":     defaultConfig,
			"default":  defaultConfig,
			"vs-white": vsWhite,
			"vs-black": vsBlack,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("config not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Rules:       config.Rules,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

// scriptedSuggester plays the first empty cell of its script
type scriptedSuggester struct {
	script []gomoku.Point
}

func (s scriptedSuggester) Suggest(ctx context.Context, r ai.Request) (ai.Suggestion, error) {
	for _, p := range s.script {
		if cell, _ := r.Board.At(p); cell == gomoku.Empty {
			return ai.Suggestion{Move: p, Confidence: 1, Source: "script"}, nil
		}
	}
	return ai.Suggestion{}, ai.ErrNoMove
}

// memRecorder implements service.Recorder in memory
type memRecorder struct {
	matches []records.Match
}

func (r *memRecorder) Save(ctx context.Context, m records.Match) (records.Match, error) {
	m.ID = fmt.Sprintf("rec-%d", len(r.matches)+1)
	r.matches = append(r.matches, m)
	return m, nil
}

func pt(r, c int) gomoku.Point { return gomoku.Point{Row: r, Col: c} }

func newTestService(opts ...service.Option) (service.GameService, *MockSessionManager) {
	sessions := NewMockSessionManager()
	script := scriptedSuggester{script: []gomoku.Point{pt(0, 0), pt(0, 2), pt(0, 4), pt(0, 6), pt(0, 8)}}
	opts = append([]service.Option{
		service.WithSuggesters(func(*engine.GameConfig) ai.Suggester { return script }),
	}, opts...)
	return service.NewGameService(sessions, NewMockConfigManager(), opts...), sessions
}

func placeAll(t *testing.T, svc service.GameService, id string, points ...gomoku.Point) {
	t.Helper()
	for _, p := range points {
		if _, err := svc.Place(context.Background(), id, p); err != nil {
			t.Fatalf("Place(%v) failed: %v", p, err)
		}
	}
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantErr:    false,
		},
		{
			name:       "create with specific config",
			configName: "test",
			wantErr:    false,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && session == nil {
				t.Error("CreateSession() returned nil session")
			}
			if !tt.wantErr && session.Words == nil {
				t.Error("CreateSession() returned nil word list")
			}
		})
	}
}

func TestGameService_Place(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	result, err := svc.Place(ctx, sessionInfo.ID, pt(7, 7))
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if !result.Success || result.GameState.Turn != gomoku.White {
		t.Errorf("Expected success and white to move, got %+v", result)
	}
	if len(result.Events) != 1 || result.Events[0].Type != service.EventPlace {
		t.Errorf("Expected one place event, got %+v", result.Events)
	}
	if result.Reply != nil {
		t.Error("No computer reply expected without an AI colour")
	}

	result, err = svc.Place(ctx, sessionInfo.ID, pt(7, 7))
	if !errors.Is(err, engine.ErrOccupied) {
		t.Errorf("Expected ErrOccupied, got %v", err)
	}
	if result == nil || result.Success {
		t.Errorf("Expected an unsuccessful result, got %+v", result)
	}

	if _, err := svc.Place(ctx, "nonexistent", pt(1, 1)); err == nil {
		t.Error("Expected error for unknown session")
	}
}

func TestGameService_PlaceForbidden(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sessionInfo, _ := svc.CreateSession(ctx, "test")

	placeAll(t, svc, sessionInfo.ID,
		pt(7, 6), pt(0, 0),
		pt(7, 8), pt(0, 2),
		pt(6, 7), pt(0, 4),
		pt(8, 7), pt(0, 6),
	)

	result, err := svc.Place(ctx, sessionInfo.ID, pt(7, 7))
	if !errors.Is(err, engine.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
	if result.Violation == nil || result.Violation.Rule != gomoku.ThreeThree {
		t.Errorf("Expected a three_three violation, got %+v", result.Violation)
	}
	if len(result.Events) != 1 || result.Events[0].Type != service.EventForbidden {
		t.Errorf("Expected a forbidden event, got %+v", result.Events)
	}

	cells, err := svc.Forbidden(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("Forbidden() error = %v", err)
	}
	found := false
	for _, c := range cells {
		if c.Point == pt(7, 7) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected (7,7) among forbidden cells, got %+v", cells)
	}

	analysis, err := svc.Analyze(ctx, sessionInfo.ID, pt(7, 7), gomoku.Empty)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if analysis.Player != gomoku.Black || analysis.Violation == nil || !analysis.DoubleThree.Forbidden {
		t.Errorf("Expected a black double three, got %+v", analysis)
	}

	if _, err := svc.Analyze(ctx, sessionInfo.ID, pt(15, 15), gomoku.Black); !errors.Is(err, engine.ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestGameService_WinIsArchived(t *testing.T) {
	ctx := context.Background()
	recorder := &memRecorder{}
	svc, _ := newTestService(service.WithRecorder(recorder))
	sessionInfo, _ := svc.CreateSession(ctx, "test")

	placeAll(t, svc, sessionInfo.ID,
		pt(7, 3), pt(0, 0),
		pt(7, 4), pt(0, 2),
		pt(7, 5), pt(0, 4),
		pt(7, 6), pt(0, 6),
	)
	result, err := svc.Place(ctx, sessionInfo.ID, pt(7, 7))
	if err != nil {
		t.Fatalf("Winning move failed: %v", err)
	}
	if !result.GameState.GameOver || result.GameState.Winner != gomoku.Black {
		t.Fatalf("Expected black to win, got %+v", result.GameState)
	}
	if last := result.Events[len(result.Events)-1]; last.Type != service.EventWin {
		t.Errorf("Expected a win event, got %+v", result.Events)
	}

	if len(recorder.matches) != 1 {
		t.Fatalf("Expected one archived match, got %d", len(recorder.matches))
	}
	m := recorder.matches[0]
	if m.Winner != gomoku.Black || len(m.Moves) != 9 || m.Preset != "test" {
		t.Errorf("Unexpected archived match: %+v", m)
	}

	if _, err := svc.Suggest(ctx, sessionInfo.ID); !errors.Is(err, engine.ErrGameOver) {
		t.Errorf("Expected ErrGameOver from Suggest, got %v", err)
	}
}

func TestGameService_ComputerReplies(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sessionInfo, err := svc.CreateSession(ctx, "vs-white")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	result, err := svc.Place(ctx, sessionInfo.ID, pt(7, 7))
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if result.Reply == nil || result.Reply.Move != pt(0, 0) {
		t.Fatalf("Expected the computer to answer at (0,0), got %+v", result.Reply)
	}
	if result.GameState.Turn != gomoku.Black || len(result.GameState.Stones) != 2 {
		t.Errorf("Expected black to move after the reply, got %+v", result.GameState)
	}
	if result.Events[len(result.Events)-1].Type != service.EventAIMove {
		t.Errorf("Expected an ai_move event, got %+v", result.Events)
	}

	state, err := svc.Undo(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if len(state.Stones) != 0 || state.Turn != gomoku.Black {
		t.Errorf("Undo should take back both stones, got %+v", state.Stones)
	}

	if _, err := svc.Undo(ctx, sessionInfo.ID); !errors.Is(err, engine.ErrNothingToUndo) {
		t.Errorf("Expected ErrNothingToUndo, got %v", err)
	}
}

func TestGameService_ComputerOpens(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sessionInfo, err := svc.CreateSession(ctx, "vs-black")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if n := len(sessionInfo.GameState.Stones); n != 1 {
		t.Fatalf("Expected the computer to open, got %d stones", n)
	}

	state, err := svc.Reset(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if len(state.Stones) != 1 || state.Turn != gomoku.White {
		t.Errorf("Expected the computer to open again after reset, got %+v", state.Stones)
	}
}

func TestGameService_Suggest(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	sessionInfo, _ := svc.CreateSession(ctx, "test")

	sg, err := svc.Suggest(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if sg.Move != pt(0, 0) || sg.Source != "script" {
		t.Errorf("Unexpected suggestion %+v", sg)
	}
	state, _ := svc.GetGameState(ctx, sessionInfo.ID)
	if !state.Board.IsEmpty() {
		t.Error("Suggest must not place a stone")
	}
}

func TestDefaultSuggesters(t *testing.T) {
	config := engine.DefaultConfig()
	if _, ok := service.DefaultSuggesters(nil)(config).(*ai.Heuristic); !ok {
		t.Error("Expected the heuristic without an inference endpoint")
	}
	config.AI.Endpoint = "http://127.0.0.1:1/infer"
	if _, ok := service.DefaultSuggesters(nil)(config).(ai.Fallback); !ok {
		t.Error("Expected a fallback chain with an inference endpoint")
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	placeAll(t, svc, sessionInfo.ID, pt(7, 7), pt(7, 8), pt(8, 8), pt(6, 6))

	tests := []struct {
		name      string
		sessionID string
		opts      service.HistoryOptions
		wantMoves int
		wantFirst gomoku.Point
		wantErr   bool
	}{
		{
			name:      "default options",
			sessionID: sessionInfo.ID,
			opts:      service.HistoryOptions{},
			wantMoves: 4,
			wantFirst: pt(6, 6),
		},
		{
			name:      "with pagination",
			sessionID: sessionInfo.ID,
			opts: service.HistoryOptions{
				Page:  2,
				Limit: 2,
				Order: "asc",
			},
			wantMoves: 2,
			wantFirst: pt(8, 8),
		},
		{
			name:      "past the end",
			sessionID: sessionInfo.ID,
			opts: service.HistoryOptions{
				Page:  5,
				Limit: 2,
				Order: "asc",
			},
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			opts:      service.HistoryOptions{},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetMoveHistory(ctx, tt.sessionID, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetMoveHistory() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if result.Moves == nil {
				t.Fatal("GetMoveHistory() returned nil moves slice")
			}
			if len(result.Moves) != tt.wantMoves {
				t.Fatalf("Expected %d moves, got %d", tt.wantMoves, len(result.Moves))
			}
			if tt.wantMoves > 0 && result.Moves[0].Position != tt.wantFirst {
				t.Errorf("Expected first move %v, got %v", tt.wantFirst, result.Moves[0].Position)
			}
			if result.TotalMoves != 4 {
				t.Errorf("Expected 4 total moves, got %d", result.TotalMoves)
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	// Create multiple sessions
	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, "test")
		if err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}

	if len(sessionList) != 3 {
		t.Errorf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	placeAll(t, svc, sessionInfo.ID, pt(7, 7))

	state, err := svc.Reset(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !state.Board.IsEmpty() || state.Turn != gomoku.Black {
		t.Error("Reset() should clear the board")
	}
	if state.TotalMoves != 1 || state.CurrentMovesCount != 0 {
		t.Errorf("Reset() should keep cumulative history, got total=%d current=%d", state.TotalMoves, state.CurrentMovesCount)
	}
}

func TestGameService_Trie(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(service.WithRand(rand.New(rand.NewPCG(1, 2))))
	sessionInfo, _ := svc.CreateSession(ctx, "test")
	id := sessionInfo.ID

	inserted, err := svc.TrieInsert(ctx, id, "cat")
	if err != nil {
		t.Fatalf("TrieInsert() error = %v", err)
	}
	if !inserted.Changed || len(inserted.Words) != 1 || inserted.Words[0] != "cat" {
		t.Errorf("Unexpected insert result %+v", inserted)
	}
	if n := len(inserted.Steps); n == 0 || !inserted.Steps[n-1].Kind.Terminal() {
		t.Errorf("Insert steps must end with a terminal step: %+v", inserted.Steps)
	}
	savesAfterInsert := sessions.saves

	again, _ := svc.TrieInsert(ctx, id, "cat")
	if again.Changed {
		t.Error("Inserting a stored word must not change the trie")
	}
	if sessions.saves != savesAfterInsert {
		t.Error("Unchanged tries must not be persisted")
	}

	prefix, _ := svc.TrieSearch(ctx, id, "ca")
	if prefix.Found {
		t.Error("A prefix is not a stored word")
	}
	word, _ := svc.TrieSearch(ctx, id, "cat")
	if !word.Found || word.Changed {
		t.Errorf("Expected to find cat, got %+v", word)
	}

	missing, _ := svc.TrieDelete(ctx, id, "dog")
	if missing.Found || missing.Changed || len(missing.Words) != 1 {
		t.Errorf("Deleting a missing word must not change the trie: %+v", missing)
	}
	if last := missing.Steps[len(missing.Steps)-1]; last.Kind != trie.Miss {
		t.Errorf("Expected the search miss, got %+v", last)
	}

	deleted, _ := svc.TrieDelete(ctx, id, "cat")
	if !deleted.Changed || len(deleted.Words) != 0 || len(deleted.Tree.Children) != 0 {
		t.Errorf("Expected an empty trie after delete, got %+v", deleted)
	}

	if _, err := svc.TrieInsert(ctx, id, ""); !errors.Is(err, service.ErrEmptyWord) {
		t.Errorf("Expected ErrEmptyWord, got %v", err)
	}

	random, err := svc.TrieRandom(ctx, id, 3)
	if err != nil {
		t.Fatalf("TrieRandom() error = %v", err)
	}
	if len(random.Words) != 3 || random.Steps == nil {
		t.Errorf("Expected 3 random words, got %+v", random.Words)
	}

	words, err := svc.TrieWords(ctx, id, "")
	if err != nil || len(words) != 3 {
		t.Errorf("TrieWords() = %v, %v", words, err)
	}

	reset, _ := svc.TrieReset(ctx, id)
	if !reset.Changed || len(reset.Words) != 0 {
		t.Errorf("Expected an empty trie after reset, got %+v", reset)
	}

	if _, err := svc.TrieSearch(ctx, "nonexistent", "cat"); err == nil {
		t.Error("Expected error for unknown session")
	}
}
