package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aigallery/gallery/game/ai"
	"github.com/aigallery/gallery/game/config"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/records"
	"github.com/aigallery/gallery/game/service"
	"github.com/aigallery/gallery/game/session"
	"github.com/aigallery/gallery/game/trie"
	"github.com/aigallery/gallery/logging"
	"github.com/aigallery/gallery/transport/websocket"
)

// RecordStore reads archived matches
type RecordStore interface {
	Get(ctx context.Context, id string) (records.Match, error)
	List(ctx context.Context, preset string, limit int) ([]records.Match, error)
	Leaderboard(ctx context.Context) ([]records.Standing, error)
}

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	records RecordStore
	pacer   trie.Pacer
	logger  *zap.Logger
	router  *mux.Router

	// Trie playbacks run on their own goroutines until Close
	playCtx    context.Context
	stopPlay   context.CancelFunc
	playbacks  sync.WaitGroup
	staticRoot string
}

// Option configures the server
type Option func(*Server)

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = logging.OrNop(l) }
}

// WithRecords serves archived matches from store
func WithRecords(store RecordStore) Option {
	return func(s *Server) { s.records = store }
}

// WithPacer sets the timing of trie playbacks sent over the WebSocket
func WithPacer(p trie.Pacer) Option {
	return func(s *Server) { s.pacer = p }
}

// WithStatic serves files under dir for every unmatched path
func WithStatic(dir string) Option {
	return func(s *Server) { s.staticRoot = dir }
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		pacer:   trie.Delay{},
		logger:  zap.NewNop(),
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.playCtx, s.stopPlay = context.WithCancel(context.Background())

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Gomoku
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/place", s.handlePlace).Methods("POST")
	api.HandleFunc("/sessions/{id}/undo", s.handleUndo).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/suggest", s.handleSuggest).Methods("GET", "POST")
	api.HandleFunc("/sessions/{id}/analyze", s.handleAnalyze).Methods("GET")
	api.HandleFunc("/sessions/{id}/forbidden", s.handleForbidden).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Trie workspace
	api.HandleFunc("/sessions/{id}/trie/words", s.handleTrieWords).Methods("GET")
	api.HandleFunc("/sessions/{id}/trie/random", s.handleTrieRandom).Methods("POST")
	api.HandleFunc("/sessions/{id}/trie/reset", s.handleTrieReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/trie/{op:insert|delete|search}", s.handleTrieOp).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Archive
	api.HandleFunc("/records", s.handleListRecords).Methods("GET")
	api.HandleFunc("/records/leaderboard", s.handleLeaderboard).Methods("GET")
	api.HandleFunc("/records/{id}", s.handleGetRecord).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	if s.staticRoot != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticRoot)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops running trie playbacks and waits for them to return
func (s *Server) Close() {
	s.stopPlay()
	s.playbacks.Wait()
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message, "code": status})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, records.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, service.ErrEmptyWord),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, gomoku.ErrInvalidStone):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrOccupied),
		errors.Is(err, engine.ErrGameOver),
		errors.Is(err, engine.ErrNothingToUndo):
		return http.StatusConflict
	case errors.Is(err, engine.ErrForbidden):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ai.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ai.ErrNoMove):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func (s *Server) broadcastState(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Gomoku Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Row == nil || req.Col == nil {
		respondError(w, http.StatusBadRequest, "Request body must contain row and col")
		return
	}
	p := gomoku.Point{Row: *req.Row, Col: *req.Col}

	result, err := s.service.Place(r.Context(), sessionID, p)
	if result == nil {
		s.fail(w, r, err)
		return
	}

	s.broadcastState(sessionID, result.GameState)

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	s.logger.Info("place",
		zap.String("session", sessionID),
		zap.Stringer("point", p),
		zap.Bool("success", result.Success),
		zap.Int("status", status))

	respondJSON(w, status, result)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Undo(r.Context(), sessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.broadcastState(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.broadcastState(sessionID, state)

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Game reset successfully",
		"state":   state,
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	suggestion, err := s.service.Suggest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	row, rowErr := strconv.Atoi(query.Get("row"))
	col, colErr := strconv.Atoi(query.Get("col"))
	if rowErr != nil || colErr != nil {
		respondError(w, http.StatusBadRequest, "row and col query parameters are required")
		return
	}
	player, err := gomoku.ParseStone(query.Get("player"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	analysis, err := s.service.Analyze(r.Context(), mux.Vars(r)["id"], gomoku.Point{Row: row, Col: col}, player)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleForbidden(w http.ResponseWriter, r *http.Request) {
	cells, err := s.service.Forbidden(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(cells),
		"cells": cells,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Trie Handlers

func (s *Server) handleTrieOp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Word    string `json:"word"`
		Animate bool   `json:"animate,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		result *service.TrieResult
		err    error
	)
	switch trie.Op(vars["op"]) {
	case trie.OpInsert:
		result, err = s.service.TrieInsert(r.Context(), sessionID, req.Word)
	case trie.OpDelete:
		result, err = s.service.TrieDelete(r.Context(), sessionID, req.Word)
	default:
		result, err = s.service.TrieSearch(r.Context(), sessionID, req.Word)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if req.Animate {
		s.animate(sessionID, result)
	}

	respondJSON(w, http.StatusOK, result)
}

// animate plays the trace of result to the session's WebSocket clients and
// finishes with a trie_done event carrying the resulting words.
func (s *Server) animate(sessionID string, result *service.TrieResult) {
	if s.hub == nil {
		return
	}

	s.playbacks.Add(1)
	go func() {
		defer s.playbacks.Done()
		tr := result.Trace
		op := trie.Op(result.Op)
		err := trie.Play(s.playCtx, tr, s.pacer, func(f trie.Frame) error {
			s.hub.BroadcastFrame(sessionID, op, tr.Word, f)
			return nil
		})
		if err != nil {
			s.logger.Debug("trie playback stopped", zap.String("session", sessionID), zap.Error(err))
			return
		}
		s.hub.BroadcastEvent(sessionID, websocket.EventTrieDone, map[string]any{
			"op":    op,
			"word":  tr.Word,
			"found": result.Found,
			"words": result.Words,
			"tree":  result.Tree,
		})
	}()
}

func (s *Server) handleTrieWords(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	words, err := s.service.TrieWords(r.Context(), mux.Vars(r)["id"], prefix)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"prefix": prefix,
		"count":  len(words),
		"words":  words,
	})
}

func (s *Server) handleTrieRandom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.service.TrieRandom(r.Context(), mux.Vars(r)["id"], req.Count)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrieReset(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.TrieReset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]
	for _, ext := range engine.ConfigExtensions {
		configName = strings.TrimSuffix(configName, ext)
	}

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
		engine.GameConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = strings.ReplaceAll(strings.ToLower(req.Name), " ", "-")
	}

	if err := s.service.SaveConfig(r.Context(), configID, &req.GameConfig); err != nil {
		s.fail(w, r, fmt.Errorf("failed to save config: %w", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// Archive Handlers

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusNotFound, "match archive is disabled")
		return
	}

	query := r.URL.Query()
	limit := records.DefaultListLimit
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		limit = l
	}

	matches, err := s.records.List(r.Context(), query.Get("preset"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(matches),
		"matches": matches,
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusNotFound, "match archive is disabled")
		return
	}

	match, err := s.records.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusNotFound, "match archive is disabled")
		return
	}

	standings, err := s.records.Leaderboard(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, standings)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("sessionId")
	}
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
