// Package records archives finished Gomoku matches in SQLite and answers
// leaderboard queries over them.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/aigallery/gallery/game/gomoku"
)

// ErrRecordNotFound is returned when no match has the requested id.
var ErrRecordNotFound = errors.New("record not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Match is one finished game.
type Match struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	Preset     string         `json:"preset"`
	Winner     gomoku.Stone   `json:"winner"`
	Draw       bool           `json:"draw"`
	Moves      []gomoku.Point `json:"moves"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Standing aggregates the results of one preset.
type Standing struct {
	Preset    string `json:"preset"`
	Games     int    `json:"games"`
	BlackWins int    `json:"black_wins"`
	WhiteWins int    `json:"white_wins"`
	Draws     int    `json:"draws"`
}

// Store is a SQLite backed match archive. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path. ":memory:" keeps it in
// memory for the life of the Store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return &Store{db: db}, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			preset TEXT NOT NULL,
			winner TEXT NOT NULL DEFAULT '',
			draw BOOLEAN NOT NULL DEFAULT 0,
			moves TEXT NOT NULL,
			finished_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_preset ON matches(preset);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_finished ON matches(finished_at);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives m. A missing ID or FinishedAt is filled in; the stored
// record is returned.
func (s *Store) Save(ctx context.Context, m Match) (Match, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.FinishedAt.IsZero() {
		m.FinishedAt = time.Now().UTC()
	}
	if m.Moves == nil {
		m.Moves = []gomoku.Point{}
	}

	moves, err := json.Marshal(m.Moves)
	if err != nil {
		return Match{}, fmt.Errorf("failed to encode moves: %w", err)
	}
	winner, _ := m.Winner.MarshalText()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (id, session_id, preset, winner, draw, moves, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, m.Preset, string(winner), m.Draw, string(moves), m.FinishedAt.UTC(),
	)
	if err != nil {
		return Match{}, fmt.Errorf("failed to save match: %w", err)
	}
	return m, nil
}

// Get returns the match with id.
func (s *Store) Get(ctx context.Context, id string) (Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, preset, winner, draw, moves, finished_at
		 FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return m, err
}

// List returns the most recent matches first. A non-empty preset filters
// by preset; limit <= 0 uses DefaultListLimit.
func (s *Store) List(ctx context.Context, preset string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, session_id, preset, winner, draw, moves, finished_at FROM matches`
	args := []any{}
	if preset != "" {
		query += ` WHERE preset = ?`
		args = append(args, preset)
	}
	query += ` ORDER BY finished_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Leaderboard returns per-preset results ordered by games played.
func (s *Store) Leaderboard(ctx context.Context) ([]Standing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT preset,
		       COUNT(*),
		       SUM(CASE WHEN winner = 'B' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN winner = 'W' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN draw THEN 1 ELSE 0 END)
		FROM matches
		GROUP BY preset
		ORDER BY COUNT(*) DESC, preset`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	standings := []Standing{}
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.Preset, &st.Games, &st.BlackWins, &st.WhiteWins, &st.Draws); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (Match, error) {
	var (
		m      Match
		winner string
		moves  string
	)
	if err := row.Scan(&m.ID, &m.SessionID, &m.Preset, &winner, &m.Draw, &moves, &m.FinishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, err
		}
		return Match{}, fmt.Errorf("failed to scan match: %w", err)
	}
	if err := m.Winner.UnmarshalText([]byte(winner)); err != nil {
		return Match{}, fmt.Errorf("match %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(moves), &m.Moves); err != nil {
		return Match{}, fmt.Errorf("match %s: failed to decode moves: %w", m.ID, err)
	}
	return m, nil
}
