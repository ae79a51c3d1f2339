package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aigallery/gallery/game/ai"
	"github.com/aigallery/gallery/game/engine"
	"github.com/aigallery/gallery/game/gomoku"
	"github.com/aigallery/gallery/game/service"
	"github.com/aigallery/gallery/game/trie"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Gomoku Gallery",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Gomoku Gallery - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session holds a 15x15 Gomoku game and a word trie.

GOMOKU:
Black and white alternate placing stones; five in a row wins. Depending on
the preset, black may not play a double three, a double four or an
overline. Rows and columns are numbered 0-14.

AVAILABLE TOOLS:
- create_session / list_sessions: manage sessions
- game_state: board, side to move and last move
- place_stone: place a stone for the side to move
- undo_move / reset_game: take back or restart
- suggest_move: ask the engine for a move
- check_forbidden: analyse a cell, or list every forbidden cell
- move_history: past placements
- trie_insert / trie_search / trie_delete / trie_words / trie_random: word trie
- list_configs: rule presets
- game_instructions: full rules`),
	)

	c.registerTools()
}

func sessionTool(name, description string, props map[string]any, required ...string) mcp.Tool {
	properties := map[string]any{
		"session_id": map[string]any{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range props {
		properties[k] = v
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   append([]string{"session_id"}, required...),
		},
	}
}

var (
	rowProp  = map[string]any{"type": "integer", "description": "Row, 0-14 from the top"}
	colProp  = map[string]any{"type": "integer", "description": "Column, 0-14 from the left"}
	wordProp = map[string]any{"type": "string", "description": "Word to operate on"}
)

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new session with an optional rule preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Preset to use, e.g. standard, renju, freestyle, vs-ai (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	// Gomoku
	c.mcpServer.AddTool(sessionTool("game_state", "Get the board and game status", nil), c.handleGameState)

	c.mcpServer.AddTool(sessionTool("place_stone", "Place a stone for the side to move",
		map[string]any{"row": rowProp, "col": colProp}, "row", "col"), c.handlePlaceStone)

	c.mcpServer.AddTool(sessionTool("undo_move", "Take back the last move", nil), c.handleUndo)

	c.mcpServer.AddTool(sessionTool("reset_game", "Start a new game in the session", nil), c.handleReset)

	c.mcpServer.AddTool(sessionTool("suggest_move", "Suggest a move for the side to move", nil), c.handleSuggest)

	c.mcpServer.AddTool(sessionTool("check_forbidden",
		"Analyse a cell for forbidden patterns, or list every forbidden cell when row and col are omitted",
		map[string]any{
			"row": rowProp,
			"col": colProp,
			"player": map[string]any{
				"type":        "string",
				"description": "black or white (defaults to the side to move)",
			},
		}), c.handleCheckForbidden)

	c.mcpServer.AddTool(sessionTool("move_history", "Get the move history with pagination",
		map[string]any{
			"page":  map[string]any{"type": "integer", "description": "Page number (default 1)"},
			"limit": map[string]any{"type": "integer", "description": "Moves per page (default 20)"},
		}), c.handleMoveHistory)

	// Trie
	c.mcpServer.AddTool(sessionTool("trie_insert", "Insert a word into the session trie",
		map[string]any{"word": wordProp}, "word"), c.trieOpHandler(trie.OpInsert))
	c.mcpServer.AddTool(sessionTool("trie_search", "Search the session trie for a word",
		map[string]any{"word": wordProp}, "word"), c.trieOpHandler(trie.OpSearch))
	c.mcpServer.AddTool(sessionTool("trie_delete", "Delete a word from the session trie",
		map[string]any{"word": wordProp}, "word"), c.trieOpHandler(trie.OpDelete))

	c.mcpServer.AddTool(sessionTool("trie_words", "List the words stored in the session trie",
		map[string]any{
			"prefix": map[string]any{"type": "string", "description": "Only words with this prefix"},
		}), c.handleTrieWords)

	c.mcpServer.AddTool(sessionTool("trie_random", "Replace the trie with random sample words",
		map[string]any{
			"count": map[string]any{"type": "integer", "description": "Number of words (default 10)"},
		}), c.handleTrieRandom)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of Gomoku, the forbidden patterns and the trie tools",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		switch {
		case errResp.Error != "":
			return fmt.Errorf("%s", errResp.Error)
		case errResp.Message != "":
			return fmt.Errorf("%s", errResp.Message)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(request mcp.CallToolRequest, suffix string) string {
	return "/api/sessions/" + url.PathEscape(request.GetString("session_id", "")) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		stones := 0
		if s.GameState != nil {
			stones = len(s.GameState.Stones)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Stones: %d, Words: %d, Created: %s)\n",
			s.ID, s.ConfigName, stones, len(s.Words), s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(request, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePlaceStone(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.PlaceResult
	err = c.apiCall(ctx, "POST", sessionPath(request, "/place"), map[string]int{"row": row, "col": col}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlaceResult(&result)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(request, "/undo"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Move taken back.\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Message string           `json:"message"`
		State   engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(request, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatGameState(&response.State)), nil
}

func (c *Client) handleSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var suggestion ai.Suggestion
	if err := c.apiCall(ctx, "GET", sessionPath(request, "/suggest"), nil, &suggestion); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Suggested move: row %d, col %d (confidence %.2f, source %s)",
		suggestion.Move.Row, suggestion.Move.Col, suggestion.Confidence, suggestion.Source)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCheckForbidden(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	_, hasRow := args["row"]
	_, hasCol := args["col"]

	if !hasRow || !hasCol {
		var response struct {
			Count int                     `json:"count"`
			Cells []service.ForbiddenCell `json:"cells"`
		}
		if err := c.apiCall(ctx, "GET", sessionPath(request, "/forbidden"), nil, &response); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatForbiddenCells(response.Cells)), nil
	}

	query := url.Values{}
	query.Set("row", fmt.Sprint(request.GetInt("row", 0)))
	query.Set("col", fmt.Sprint(request.GetInt("col", 0)))
	if player := request.GetString("player", ""); player != "" {
		query.Set("player", player)
	}

	var analysis engine.Analysis
	if err := c.apiCall(ctx, "GET", sessionPath(request, "/analyze?"+query.Encode()), nil, &analysis); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAnalysis(&analysis)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(max(request.GetInt("page", 1), 1)))
	query.Set("limit", fmt.Sprint(max(request.GetInt("limit", 20), 1)))

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", sessionPath(request, "/history?"+query.Encode()), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) trieOpHandler(op trie.Op) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		word, err := request.RequireString("word")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var result service.TrieResult
		err = c.apiCall(ctx, "POST", sessionPath(request, "/trie/"+string(op)), map[string]any{"word": word}, &result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(formatTrieResult(&result)), nil
	}
}

func (c *Client) handleTrieWords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := request.GetString("prefix", "")

	var response struct {
		Count int      `json:"count"`
		Words []string `json:"words"`
	}
	path := sessionPath(request, "/trie/words?prefix="+url.QueryEscape(prefix))
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No words stored" + prefixNote(prefix)), nil
	}
	result := fmt.Sprintf("%d words%s:\n%s", response.Count, prefixNote(prefix), strings.Join(response.Words, "\n"))
	return mcp.NewToolResultText(result), nil
}

func prefixNote(prefix string) string {
	if prefix == "" {
		return ""
	}
	return fmt.Sprintf(" with prefix %q", prefix)
}

func (c *Client) handleTrieRandom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]int{"count": request.GetInt("count", trie.DefaultRandomCount)}

	var result service.TrieResult
	if err := c.apiCall(ctx, "POST", sessionPath(request, "/trie/random"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTrieResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s\n  %s\n  Rules: %s (enforced for %s)\n",
			cfg.ConfigID, cfg.Name, cfg.Description, strings.Join(cfg.Rules, ", "), cfg.EnforceFor)
		if cfg.AIColor != "" {
			fmt.Fprintf(&b, "  Computer plays %s\n", cfg.AIColor)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `GOMOKU GALLERY - INSTRUCTIONS

BOARD
- 15x15 grid, rows and columns numbered 0-14; (0,0) is the top-left corner.
- Black (B) and white (W) alternate; the preset decides who opens.

WINNING
- Five stones in an unbroken row, column or diagonal win.
- A line of exactly five always wins, even when the move would otherwise be forbidden.
- A full board without a winner is a draw.

FORBIDDEN MOVES (for the constrained colour, usually black)
- three_three: one stone that makes two open threes at once.
  An open three can become an open four: _BBB_ or, with jump threes, _BB_B_.
- four_four: one stone that makes two fours at once.
- long_connection: six or more in a row (overline).
- no_restriction: freestyle, nothing is forbidden.
A forbidden placement is rejected and the same player must move again.

STRATEGY
- Use check_forbidden without coordinates to list cells you may not play.
- Use check_forbidden with row and col to see which patterns a stone would make.
- suggest_move asks the engine; it blocks the opponent's fours and open threes.

TRIE TOOLS
- Each session also owns a word trie.
- trie_insert, trie_search and trie_delete report the steps taken through the tree.
- trie_words lists the stored words, optionally by prefix.
- trie_random replaces the trie with sample words.

TOOLS
- create_session, list_sessions, game_state, place_stone, undo_move, reset_game
- suggest_move, check_forbidden, move_history, list_configs
- trie_insert, trie_search, trie_delete, trie_words, trie_random`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Preset: %s | Stones: %d | Moves: %d\n\n", state.ConfigName, len(state.Stones), state.TotalMoves)
	b.WriteString(formatBoard(&state.Board, state.LastMove))

	switch {
	case state.Draw:
		b.WriteString("\nDRAW")
	case state.GameOver:
		fmt.Fprintf(&b, "\n%s WINS", strings.ToUpper(state.Winner.Name()))
		if len(state.WinningLine) > 0 {
			b.WriteString(" with ")
			b.WriteString(formatPoints(state.WinningLine))
		}
	default:
		fmt.Fprintf(&b, "\n%s to move", state.Turn.Name())
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

// formatBoard draws the board with coordinates; the last move is lower-case
func formatBoard(board *gomoku.Board, last *gomoku.Point) string {
	var b strings.Builder
	b.WriteString("   ")
	for col := range gomoku.Size {
		fmt.Fprintf(&b, "%x", col)
	}
	b.WriteByte('\n')
	for row := range gomoku.Size {
		fmt.Fprintf(&b, "%2d ", row)
		for col := range gomoku.Size {
			p := gomoku.Point{Row: row, Col: col}
			stone, _ := board.At(p)
			ch := stone.Symbol()
			if last != nil && *last == p {
				ch = strings.ToLower(string(ch))[0]
			}
			b.WriteByte(ch)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatPoints(points []gomoku.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func formatPlaceResult(result *service.PlaceResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("Stone placed.\n")
	} else {
		b.WriteString("Placement rejected.\n")
	}
	if v := result.Violation; v != nil {
		fmt.Fprintf(&b, "Forbidden: %s at %s\n", v.Rule, formatPoints(v.Positions))
	}
	if r := result.Reply; r != nil {
		fmt.Fprintf(&b, "Computer replied at %s\n", r.Move)
	}
	for _, e := range result.Events {
		if e.Type == service.EventWin || e.Type == service.EventDraw {
			fmt.Fprintf(&b, "%s\n", e.Message)
		}
	}
	b.WriteByte('\n')
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatAnalysis(a *engine.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of %s for %s:\n", a.Point, a.Player.Name())
	if a.Occupied {
		b.WriteString("- cell is occupied\n")
		return b.String()
	}
	if a.Win {
		b.WriteString("- makes five in a row\n")
	}
	if a.DoubleThree.Forbidden {
		fmt.Fprintf(&b, "- double three: %s\n", formatPoints(a.DoubleThree.Positions))
	}
	if a.DoubleFour.Double {
		fmt.Fprintf(&b, "- double four: %s\n", formatPoints(a.DoubleFour.Positions))
	}
	for _, line := range a.Overlines {
		fmt.Fprintf(&b, "- overline: %s\n", formatPoints(line))
	}
	if a.Violation != nil {
		fmt.Fprintf(&b, "FORBIDDEN (%s)", a.Violation.Rule)
	} else {
		b.WriteString("Allowed")
	}
	return b.String()
}

func formatForbiddenCells(cells []service.ForbiddenCell) string {
	if len(cells) == 0 {
		return "No forbidden cells for the side to move."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Forbidden cells (%d):\n", len(cells))
	for _, c := range cells {
		fmt.Fprintf(&b, "- %s %s\n", c.Point, c.Violation.Rule)
	}
	return b.String()
}

func formatTrieResult(result *service.TrieResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q", result.Op, result.Word)
	switch {
	case result.Op == string(trie.OpSearch) && result.Found:
		b.WriteString(": found")
	case result.Op == string(trie.OpSearch):
		b.WriteString(": not found")
	case result.Changed:
		b.WriteString(": done")
	default:
		b.WriteString(": no change")
	}
	b.WriteString("\n\nSteps:\n")
	for i, s := range result.Steps {
		fmt.Fprintf(&b, "%d. %s %q", i+1, s.Kind, s.Path)
		if s.Char != "" {
			fmt.Fprintf(&b, " char=%s", s.Char)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nWords (%d): %s\n\n", len(result.Words), strings.Join(result.Words, ", "))
	b.WriteString(trie.Render(trie.FromWords(result.Words...), nil))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), %d total\n\n", history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "ok"
		if !move.Success {
			status = "rejected"
			if move.Reason != "" {
				status += ": " + move.Reason
			}
		}
		fmt.Fprintf(&b, "%d. %s %s %s [%s]\n", move.MoveNumber, move.Action, move.Player.Name(), move.Position, status)
	}

	return b.String()
}
