package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aigallery/gallery/game/config"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/service"
	"github.com/aigallery/gallery/game/trie"
)

func newTestSession(t *testing.T, id string, gameConfig *engine.GameConfig) *service.Session {
	t.Helper()
	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		Engine:         gameEngine,
		Config:         gameConfig,
		Trie:           trie.New(),
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

// testPersistence runs the behaviour every SessionPersistence shares
func testPersistence(t *testing.T, persistence SessionPersistence, configManager *config.Manager) {
	gameConfig := configManager.GetDefault()
	session := newTestSession(t, "test1", gameConfig)

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("test1") {
			t.Error("Session should exist after save")
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loadedSession.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loadedSession.ID)
		}
		if loadedSession.Config.Name != session.Config.Name {
			t.Errorf("Expected config name %s, got %s", session.Config.Name, loadedSession.Config.Name)
		}
		if loadedSession.Engine.Turn() != gomoku.Black {
			t.Errorf("Expected black to move, got %s", loadedSession.Engine.Turn())
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		for _, p := range []gomoku.Point{{Row: 7, Col: 7}, {Row: 7, Col: 8}, {Row: 8, Col: 8}} {
			if err := session.Engine.Place(p); err != nil {
				t.Fatalf("Place %v failed: %v", p, err)
			}
		}
		session.Trie, _ = session.Trie.Insert("cat")
		session.Trie, _ = session.Trie.Insert("car")

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		state := loadedSession.Engine.GetState()
		if stone, _ := state.Board.At(gomoku.Point{Row: 8, Col: 8}); stone != gomoku.Black {
			t.Errorf("Expected black at (8,8), got %s", stone)
		}
		if len(state.Stones) != 3 {
			t.Errorf("Expected 3 stones, got %d", len(state.Stones))
		}
		if loadedSession.Engine.Turn() != gomoku.White {
			t.Errorf("Expected white to move, got %s", loadedSession.Engine.Turn())
		}
		if len(loadedSession.Engine.GetMoveHistory()) != len(session.Engine.GetMoveHistory()) {
			t.Errorf("Move history not persisted correctly")
		}
		if got := strings.Join(loadedSession.Trie.Words(), ","); got != "car,cat" {
			t.Errorf("Expected trie words car,cat, got %s", got)
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := newTestSession(t, "test2", gameConfig)
		if err := persistence.Save(session2); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if !found["test1"] || !found["test2"] {
			t.Errorf("Expected sessions not found in list: %v", sessionIDs)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}
		if _, err := persistence.Load("test2"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Delete("nonexistent"); err == nil {
			t.Error("Should get error when deleting non-existent session")
		}
		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
	})
}

func newTestConfigManager(t *testing.T) *config.Manager {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return configManager
}

func TestFilePersistence(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	testPersistence(t, persistence, configManager)
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "file_test", configManager.GetDefault())
	session.Trie, _ = session.Trie.Insert("go")
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	content := string(data)
	expectedFields := []string{`"id"`, `"config_name": "standard"`, `"created_at"`, `"game_state"`, `"trie"`}
	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain %s", field)
		}
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should be renamed away")
	}
}
