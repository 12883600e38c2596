package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/maze"
	"github.com/wricardo/maze-game/game/records"
	"github.com/wricardo/maze-game/game/service"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Maze Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the agent (@) from the top-left cell to the goal (G) in the bottom-right cell.
Every maze is perfect: exactly one path connects any two cells.

AVAILABLE TOOLS:
- create_session: Create a new session (optional preset, size and seed)
- game_state: Get the maze, position and open directions
- render: Get only the text drawing of the maze
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Multiple moves at once - requires intent explanation
- describe_cell: Which walls of a cell are open
- reset_game: Back to the start of the same maze
- regenerate_maze: Carve a new maze, optionally with a new size or seed
- move_history: View past moves
- get_session / list_sessions: Session details
- list_configs: List maze presets
- best_records: Fastest solves per maze size
- game_instructions: Rules and drawing legend

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sizeProperties(props map[string]interface{}) map[string]interface{} {
	props["cols"] = map[string]interface{}{
		"type":        "integer",
		"description": fmt.Sprintf("Maze width in cells (%d-%d)", maze.MinSize, maze.MaxSize),
	}
	props["rows"] = map[string]interface{}{
		"type":        "integer",
		"description": fmt.Sprintf("Maze height in cells (%d-%d)", maze.MinSize, maze.MaxSize),
	}
	props["seed"] = map[string]interface{}{
		"type":        "integer",
		"description": "Seed for a reproducible maze layout (optional)",
	}
	return props
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new maze session with optional preset, size and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: sizeProperties(map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (optional, see list_configs)",
				},
			}),
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the maze drawing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "render",
		Description: "Get the text drawing of the maze. '@' is the agent, 'G' the goal, '|' and '---' are walls",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRender)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the agent one cell in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first blocked move or at the goal", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Put the agent back on the start cell of the same maze",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "regenerate_maze",
		Description: "Carve a new maze for the session. Omitted dimensions keep the current size",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: sizeProperties(map[string]interface{}{
				"session_id": sessionIDProperty(),
			}),
			Required: []string{"session_id"},
		},
	}, c.handleRegenerate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maze presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "best_records",
		Description: "Fastest solves. Without a size, the best record of every size; with cols and rows, that size's leaderboard",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"cols": map[string]interface{}{
					"type":        "integer",
					"description": "Maze width (optional)",
				},
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Maze height (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Leaderboard length",
				},
			},
		},
	}, c.handleBestRecords)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Report which sides of a cell are open. Useful for verifying the drawing before planning a route.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
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
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	switch target := result.(type) {
	case nil:
		return nil
	case *string:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*target = string(data)
		return nil
	default:
		return json.NewDecoder(resp.Body).Decode(result)
	}
}

// Argument helpers. Numbers arrive as float64 from JSON.

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func argBool(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func argInt(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func argSeed(args map[string]interface{}) *uint64 {
	switch v := args["seed"].(type) {
	case float64:
		if v >= 0 {
			seed := uint64(v)
			return &seed
		}
	case string:
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			return &seed
		}
	}
	return nil
}

func sizeBody(args map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{}
	if cols, ok := argInt(args, "cols"); ok {
		body["cols"] = cols
	}
	if rows, ok := argInt(args, "rows"); ok {
		body["rows"] = rows
	}
	if seed := argSeed(args); seed != nil {
		body["seed"] = *seed
	}
	return body
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := sizeBody(args)
	if configID := argString(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		size, status := "?", "?"
		if s.GameState != nil && s.GameState.Grid != nil {
			size = fmt.Sprintf("%dx%d", s.GameState.Grid.Cols, s.GameState.Grid.Rows)
			status = string(s.GameState.Status)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Maze: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, size, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var session service.SessionInfo
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var state engine.GameState
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var text string
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/render"), nil, &text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")

	// The intent is for the caller's reasoning only
	body := map[string]interface{}{
		"direction": argString(args, "direction"),
		"reset":     argBool(args, "reset"),
	}

	var result service.MoveResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": argBool(args, "reset"),
	}

	var result service.BulkMoveResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(request.GetArguments(), "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRegenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/regenerate"), sizeBody(args), &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")

	params := url.Values{}
	if page, ok := argInt(args, "page"); ok {
		params.Set("page", strconv.Itoa(page))
	}
	if limit, ok := argInt(args, "limit"); ok {
		params.Set("limit", strconv.Itoa(limit))
	}
	if order := argString(args, "order"); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	err := c.apiCall(ctx, "GET", path, nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Also fetch current segment from live state
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err == nil {
		result += "\n" + formatCurrentSegment(&state)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		layout := "random"
		if config.Seeded {
			layout = "fixed"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Maze: %dx%d, Layout: %s\n\n",
			config.Name, config.ConfigID, config.Description, config.Cols, config.Rows, layout)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleBestRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	cols, hasCols := argInt(args, "cols")
	rows, hasRows := argInt(args, "rows")

	var response struct {
		Count   int              `json:"count"`
		Records []records.Record `json:"records"`
	}

	path := "/api/records"
	title := "Best Records"
	if hasCols && hasRows {
		path = fmt.Sprintf("/api/records/%dx%d", cols, rows)
		if limit, ok := argInt(args, "limit"); ok {
			path += "?limit=" + strconv.Itoa(limit)
		}
		title = fmt.Sprintf("Leaderboard %dx%d", cols, rows)
	}

	err := c.apiCall(ctx, "GET", path, nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRecords(title, response.Records)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`🎮 Maze Game - Complete Instructions

GAME OBJECTIVE:
Walk the agent from the start cell (0,0) in the top-left corner to the goal in
the bottom-right corner. Moves through walls are rejected and do not count.

MAZE RULES:
• Every maze is perfect: all cells are connected and there are no loops
• Exactly one route leads from the start to the goal
• Sizes range from %dx%d to %dx%d cells
• A seed reproduces the same layout; without one every maze is new

DRAWING LEGEND:
• @ - The agent (your current position)
• G - The goal
• | - A wall between two horizontally adjacent cells
• --- - A wall between two vertically adjacent cells
• + - Wall corner
• A blank gap in place of | or --- is an open passage

Coordinates are (x,y): x grows to the right, y grows downwards.

MOVEMENT COMMANDS:
- up, down, left, right - Single moves in cardinal directions
- bulk_move - Up to %d moves in one call; stops at the first blocked move or at the goal
- Reset parameter available for fresh starts on the same maze

SOLVING STRATEGIES:
- Read the open directions listed with the state before every move
- Follow one wall (always keep it on your right or left); in a perfect maze this reaches the goal
- Dead ends are cells with a single opening; back out and mark them as explored
- Use describe_cell to double check a wall you are unsure about

VICTORY CONDITIONS:
- Reaching the goal ends the attempt and records your moves and time
- Further moves are ignored until reset_game or regenerate_maze
- best_records lists the fastest solve for every maze size

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has its own maze, position and history
- Sessions expire after an hour without activity

Good luck finding the exit! 🧭`, maze.MinSize, maze.MinSize, maze.MaxSize, maze.MaxSize, engine.MaxBulkMoves)

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := argString(args, "session_id")
	x, okX := argInt(args, "x")
	y, okY := argInt(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required"), nil
	}

	var state engine.GameState
	err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if state.Grid == nil {
		return mcp.NewToolResultError("session has no maze"), nil
	}

	p := maze.Position{X: x, Y: y}
	cell, err := state.Grid.Cell(p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Cell %s is outside the %dx%d maze", p, state.Grid.Cols, state.Grid.Rows)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, p, cell)), nil
}

// Formatting helpers

func describeCell(state *engine.GameState, p maze.Position, cell maze.Cell) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s\n", p)

	var open []string
	for _, d := range maze.Directions {
		status := "wall"
		if !cell.Wall(d) {
			status = "open"
			open = append(open, d.String())
		}
		fmt.Fprintf(&b, "  %-5s: %s\n", d, status)
	}

	switch len(open) {
	case 1:
		b.WriteString("Dead end\n")
	case 2:
		b.WriteString("Corridor\n")
	case 3, 4:
		b.WriteString("Junction\n")
	}

	switch p {
	case state.PlayerPos:
		b.WriteString("🧭 This is where the agent currently is.\n")
	case state.Goal:
		b.WriteString("🏁 This is the goal.\n")
	case state.Start:
		b.WriteString("This is the start cell.\n")
	}
	return b.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil || state.Grid == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Maze: %dx%d | Position: %s | Goal: %s | Moves: %d | Attempt: %d\n",
		state.Grid.Cols, state.Grid.Rows, state.PlayerPos, state.Goal, state.Moves, state.Attempt)
	if state.Seed != nil {
		fmt.Fprintf(&result, "Seed: %d\n", *state.Seed)
	}

	if state.Status != engine.StatusWon {
		open := engine.DirectionNames(state.OpenDirections())
		fmt.Fprintf(&result, "Open directions: %s\n", strings.Join(open, ","))
	}
	result.WriteString("\n")
	result.WriteString(state.Grid.Render(state.PlayerPos, state.Goal))

	if state.Status == engine.StatusWon {
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	o := result.Outcome

	switch {
	case o.Ignored:
		b.WriteString("• Maze already solved, move ignored\n")
	case result.Success:
		b.WriteString("✓ Move successful\n")
		fmt.Fprintf(&b, "Step: %s %s→%s\n", o.Direction, o.From, o.To)
	default:
		b.WriteString("✗ Move failed\n")
		if o.Attempted != o.From {
			fmt.Fprintf(&b, "Blocked: %s from %s toward %s\n", o.Direction, o.From, blockedTarget(result.GameState, o.Attempted))
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if result.Record != nil {
		b.WriteString(formatRecordResult(result.Record))
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

// blockedTarget names the cell a rejected move was aimed at
func blockedTarget(state *engine.GameState, target maze.Position) string {
	if state != nil && state.Grid != nil && !state.Grid.InBounds(target) {
		return "the outer wall"
	}
	return target.String() + " (wall)"
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	size, configName := "?", ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
		if result.GameState.Grid != nil {
			size = fmt.Sprintf("%dx%d", result.GameState.Grid.Cols, result.GameState.Grid.Rows)
		}
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Maze: %s\n", sessionID, configName, size)

	fmt.Fprintf(&b, "Executed %d/%d moves: %s → %s\n",
		result.MovesExecuted, result.RequestedMoves, result.StartPos, result.EndPos)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if result.Record != nil {
		b.WriteString("\n" + formatRecordResult(result.Record))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	status := "✓"
	if !s.Success {
		status = "✗"
	}
	line := fmt.Sprintf("%d. %s %s→%s %s", s.Idx, s.Dir, s.From, s.To, status)
	if s.Won {
		line += " 🏁"
	}
	return line + "\n"
}

func formatRecordResult(r *service.RecordResult) string {
	rec := r.Record
	line := fmt.Sprintf("Record: %d moves in %s", rec.Moves, rec.Elapsed().Round(time.Millisecond))
	if r.NewBest {
		line += fmt.Sprintf(" 🏆 new best for %s", rec.SizeKey())
	}
	return line + "\n"
}

func formatRecords(title string, recs []records.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n\n", title, len(recs))
	if len(recs) == 0 {
		b.WriteString("(no records yet)\n")
		return b.String()
	}
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. %s • %s • %d moves • session %s • %s\n",
			i+1, rec.SizeKey(), rec.Elapsed().Round(time.Millisecond), rec.Moves,
			rec.SessionID, rec.AchievedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) • Total (cumulative): %d • Accepted: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves, history.Accepted)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "%d. %s %s\n", move.MoveNumber, move.Action, moveStatus(move))
	}

	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Move Segment • Attempts: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, move.Action, moveStatus(move))
	}
	return b.String()
}

func moveStatus(move engine.MoveHistoryEntry) string {
	if !move.Success {
		return "✗"
	}
	return fmt.Sprintf("✓ %s→%s", move.FromPosition, move.ToPosition)
}
