package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/aigallery/gallery/game/service"
)

const badgerKeyPrefix = "session/"

// BadgerPersistence implements SessionPersistence on a badger key-value
// store. Entries expire after the configured TTL when it is positive.
type BadgerPersistence struct {
	db            *badger.DB
	configManager service.ConfigManager
	ttl           time.Duration

	gcTicker *time.Ticker
	done     chan struct{}
}

// NewBadgerPersistence opens a badger store in dir. An empty dir keeps the
// store in memory.
func NewBadgerPersistence(dir string, configManager service.ConfigManager, ttl time.Duration) (*BadgerPersistence, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	bp := &BadgerPersistence{
		db:            db,
		configManager: configManager,
		ttl:           ttl,
		gcTicker:      time.NewTicker(5 * time.Minute),
		done:          make(chan struct{}),
	}
	go bp.collectGarbage(!opts.InMemory)
	return bp, nil
}

// collectGarbage runs value log GC until Close
func (bp *BadgerPersistence) collectGarbage(enabled bool) {
	for {
		select {
		case <-bp.gcTicker.C:
			if enabled {
				bp.db.RunValueLogGC(0.5)
			}
		case <-bp.done:
			return
		}
	}
}

// Close stops garbage collection and closes the store
func (bp *BadgerPersistence) Close() error {
	bp.gcTicker.Stop()
	close(bp.done)
	return bp.db.Close()
}

func badgerKey(id string) []byte {
	return []byte(badgerKeyPrefix + strings.ToLower(id))
}

// Save persists a session under its ID
func (bp *BadgerPersistence) Save(session *service.Session) error {
	jsonData, err := encodeSession(session, bp.configManager)
	if err != nil {
		return err
	}

	return bp.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(badgerKey(session.ID), jsonData)
		if bp.ttl > 0 {
			entry = entry.WithTTL(bp.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Load retrieves a session by ID
func (bp *BadgerPersistence) Load(id string) (*service.Session, error) {
	var jsonData []byte
	err := bp.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		jsonData, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	return decodeSession(jsonData, bp.configManager)
}

// Delete removes a session
func (bp *BadgerPersistence) Delete(id string) error {
	if !bp.Exists(id) {
		return ErrSessionNotFound
	}
	return bp.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(id))
	})
}

// ListAll returns all persisted session IDs
func (bp *BadgerPersistence) ListAll() ([]string, error) {
	ids := []string{}
	err := bp.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, badgerKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session is stored
func (bp *BadgerPersistence) Exists(id string) bool {
	err := bp.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(id))
		return err
	})
	return err == nil
}
