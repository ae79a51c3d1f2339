package session

import (
	"testing"
	"time"
)

func TestBadgerPersistence(t *testing.T) {
	configManager := newTestConfigManager(t)

	persistence, err := NewBadgerPersistence("", configManager, 0)
	if err != nil {
		t.Fatalf("Failed to open badger persistence: %v", err)
	}
	defer persistence.Close()

	testPersistence(t, persistence, configManager)
}

func TestBadgerPersistenceOnDisk(t *testing.T) {
	dir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewBadgerPersistence(dir, configManager, time.Hour)
	if err != nil {
		t.Fatalf("Failed to open badger persistence: %v", err)
	}

	session := newTestSession(t, "Disk1", configManager.GetDefault())
	session.Trie, _ = session.Trie.Insert("badger")
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := persistence.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	reopened, err := NewBadgerPersistence(dir, configManager, time.Hour)
	if err != nil {
		t.Fatalf("Failed to reopen badger persistence: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load("disk1")
	if err != nil {
		t.Fatalf("Failed to load session after reopen: %v", err)
	}
	if !loaded.Trie.Contains("badger") {
		t.Error("Expected the trie to survive a reopen")
	}

	ids, err := reopened.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "disk1" {
		t.Errorf("Expected [disk1], got %v", ids)
	}
}
