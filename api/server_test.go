package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	gws "github.com/gorilla/websocket"

	"github.com/wricardo/maze-game/game/config"
	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/maze"
	"github.com/wricardo/maze-game/game/records"
	"github.com/wricardo/maze-game/game/service"
	"github.com/wricardo/maze-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc       func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error)
	BulkMoveFunc   func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error)
	ResetFunc      func(ctx context.Context, sessionID string) (*engine.GameState, error)
	RegenerateFunc func(ctx context.Context, sessionID string, req service.RegenerateRequest) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	RenderFunc         func(ctx context.Context, sessionID string) (string, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error

	// Records
	BestRecordsFunc func(ctx context.Context) ([]records.Record, error)
	TopRecordsFunc  func(ctx context.Context, cols, rows, limit int) ([]records.Record, error)
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: req.ConfigName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Game Operations
func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, reset)
	}
	return &service.MoveResult{Success: true, GameState: testState(5, 5)}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, reset)
	}
	return &service.BulkMoveResult{Success: true, GameState: testState(5, 5)}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return testState(5, 5), nil
}

func (m *MockGameService) Regenerate(ctx context.Context, sessionID string, req service.RegenerateRequest) (*engine.GameState, error) {
	if m.RegenerateFunc != nil {
		return m.RegenerateFunc(ctx, sessionID, req)
	}
	return testState(5, 5), nil
}

// Game State
func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return testState(5, 5), nil
}

func (m *MockGameService) Render(ctx context.Context, sessionID string) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, sessionID)
	}
	return "", nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{
		Name:        configName,
		Description: "Test config",
		Cols:        5,
		Rows:        5,
	}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Records
func (m *MockGameService) BestRecords(ctx context.Context) ([]records.Record, error) {
	if m.BestRecordsFunc != nil {
		return m.BestRecordsFunc(ctx)
	}
	return nil, nil
}

func (m *MockGameService) TopRecords(ctx context.Context, cols, rows, limit int) ([]records.Record, error) {
	if m.TopRecordsFunc != nil {
		return m.TopRecordsFunc(ctx, cols, rows, limit)
	}
	return nil, nil
}

// Test helpers
func testState(cols, rows int) *engine.GameState {
	grid, _ := maze.NewGrid(cols, rows)
	return &engine.GameState{
		Grid:   grid,
		Goal:   maze.Position{X: cols - 1, Y: rows - 1},
		Status: engine.StatusPlaying,
	}
}

func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// gorillaDial opens a client connection watching one session
func gorillaDial(serverURL, sessionID string) (*gws.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws?session=" + sessionID
	return gws.DefaultDialer.Dial(url, nil)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	var resp map[string]string
	parseResponse(t, w, &resp)
	return resp["error"]
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	seed := uint64(7)

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if req.ConfigName != "" || req.Cols != 0 || req.Seed != nil {
						t.Errorf("Expected empty request, got %+v", req)
					}
					return &service.SessionInfo{
						ID:             "sess-123",
						ConfigName:     "classic",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with config and overrides",
			requestBody: map[string]interface{}{"config_id": "tiny", "cols": 9, "rows": 7, "seed": seed},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if req.ConfigName != "tiny" {
						t.Errorf("Expected config 'tiny', got %s", req.ConfigName)
					}
					if req.Cols != 9 || req.Rows != 7 {
						t.Errorf("Expected 9x7, got %dx%d", req.Cols, req.Rows)
					}
					if req.Seed == nil || *req.Seed != seed {
						t.Errorf("Expected seed %d, got %v", seed, req.Seed)
					}
					return &service.SessionInfo{ID: "sess-456", ConfigName: req.ConfigName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != "tiny" {
					t.Errorf("Expected config name 'tiny', got %s", resp.ConfigName)
				}
			},
		},
		{
			name:        "Deprecated config_name parameter",
			requestBody: map[string]string{"config_name": "large"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if req.ConfigName != "large" {
						t.Errorf("Expected config 'large', got %s", req.ConfigName)
					}
					return &service.SessionInfo{ID: "sess-789", ConfigName: req.ConfigName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Negative dimensions",
			requestBody:    map[string]int{"cols": -3},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "missing"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to load config: %w", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				if msg := errorMessage(t, w); msg != "service error" {
					t.Errorf("Expected error message 'service error', got %s", msg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sessions := func(ctx context.Context) ([]*service.SessionInfo, error) {
		return []*service.SessionInfo{
			{ID: "a", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Minute)},
			{ID: "b", CreatedAt: base.Add(time.Minute), LastAccessedAt: base.Add(time.Minute)},
			{ID: "c", CreatedAt: base.Add(2 * time.Minute), LastAccessedAt: base.Add(2 * time.Minute)},
		}, nil
	}

	tests := []struct {
		name          string
		query         string
		expectedOrder []string
		expectedTotal int
	}{
		{name: "Default sorts by access, newest first", query: "", expectedOrder: []string{"a", "c", "b"}, expectedTotal: 3},
		{name: "Sort by creation ascending", query: "?sort=created&order=asc", expectedOrder: []string{"a", "b", "c"}, expectedTotal: 3},
		{name: "Limit", query: "?sort=created&limit=2", expectedOrder: []string{"c", "b"}, expectedTotal: 3},
		{name: "Invalid limit ignored", query: "?limit=abc", expectedOrder: []string{"a", "c", "b"}, expectedTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, &MockGameService{ListSessionsFunc: sessions})
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.expectedTotal {
				t.Errorf("Expected total %d, got %d", tt.expectedTotal, resp.Total)
			}
			if resp.Count != len(tt.expectedOrder) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.expectedOrder), resp.Count)
			}
			for i, id := range tt.expectedOrder {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Existing session",
			sessionID:      "sess-123",
			expectedStatus: http.StatusOK,
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Code == http.StatusOK {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != tt.sessionID {
					t.Errorf("Expected session %s, got %s", tt.sessionID, resp.ID)
				}
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	var deleted string
	mockService := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return service.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/sess-1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "sess-1" {
		t.Errorf("Expected sess-1 to be deleted, got %q", deleted)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Game Operation Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		requestBody    map[string]interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Valid move right",
			sessionID:   "sess-123",
			requestBody: map[string]interface{}{"direction": "right"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					if direction != "right" {
						t.Errorf("Expected direction 'right', got %s", direction)
					}
					state := testState(5, 5)
					state.PlayerPos = maze.Position{X: 1, Y: 0}
					state.Moves = 1
					return &service.MoveResult{
						Success:   true,
						GameState: state,
						Outcome:   engine.MoveOutcome{Direction: maze.Right, Accepted: true, To: state.PlayerPos, Moves: 1},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if !resp.Success {
					t.Error("Expected success to be true")
				}
				if resp.GameState.PlayerPos.X != 1 {
					t.Errorf("Expected X position 1, got %d", resp.GameState.PlayerPos.X)
				}
				if resp.Outcome.Moves != 1 {
					t.Errorf("Expected 1 move, got %d", resp.Outcome.Moves)
				}
			},
		},
		{
			name:        "Move with reset",
			sessionID:   "sess-123",
			requestBody: map[string]interface{}{"direction": "down", "reset": true},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					if !reset {
						t.Error("Expected reset to be true")
					}
					return &service.MoveResult{Success: false, GameState: testState(5, 5)}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing direction",
			sessionID:      "sess-123",
			requestBody:    map[string]interface{}{"invalid": "field"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unparseable direction",
			sessionID:   "sess-123",
			requestBody: map[string]interface{}{"direction": "sideways"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					return &service.MoveResult{Success: false, GameState: testState(5, 5), Message: "invalid direction: sideways"}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if resp.Success {
					t.Error("Expected success to be false")
				}
			},
		},
		{
			name:        "Session not found",
			sessionID:   "nonexistent",
			requestBody: map[string]interface{}{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					return nil, fmt.Errorf("failed to get session: %w", service.ErrSessionNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/"+tt.sessionID+"/move", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleMove(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	var got []string
	mockService := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
			got = moves
			return &service.BulkMoveResult{
				MovesExecuted:  2,
				RequestedMoves: len(moves),
				GameState:      testState(5, 5),
				StopReasonCode: "blocked",
				StoppedOnMove:  2,
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/bulk-move", map[string]interface{}{
		"moves": []string{"right", "down", "down"},
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if strings.Join(got, ",") != "right,down,down" {
		t.Errorf("Unexpected moves forwarded: %v", got)
	}

	var resp service.BulkMoveResult
	parseResponse(t, w, &resp)
	if resp.StopReasonCode != "blocked" || resp.StoppedOnMove != 2 {
		t.Errorf("Expected stop on move 2 (blocked), got %d (%s)", resp.StoppedOnMove, resp.StopReasonCode)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions/sess-1/bulk-move", strings.NewReader("not json"))
	server.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid body, got %d", w.Code)
	}
}

func TestReset(t *testing.T) {
	mockService := &MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID == "missing" {
				return nil, service.ErrSessionNotFound
			}
			state := testState(5, 5)
			state.Attempt = 2
			return state, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State == nil || resp.State.Attempt != 2 {
		t.Errorf("Expected attempt 2 in reset state, got %+v", resp.State)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/missing/reset", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestRegenerate(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "Keep current size",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.RegenerateFunc = func(ctx context.Context, sessionID string, req service.RegenerateRequest) (*engine.GameState, error) {
					if req.Cols != 0 || req.Rows != 0 || req.Seed != nil {
						t.Errorf("Expected empty request, got %+v", req)
					}
					return testState(15, 15), nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "New 15x15 maze generated",
		},
		{
			name:        "New size and seed",
			requestBody: map[string]interface{}{"cols": 21, "rows": 11, "seed": 42},
			setupMock: func(m *MockGameService) {
				m.RegenerateFunc = func(ctx context.Context, sessionID string, req service.RegenerateRequest) (*engine.GameState, error) {
					if req.Seed == nil || *req.Seed != 42 {
						t.Errorf("Expected seed 42, got %v", req.Seed)
					}
					return testState(req.Cols, req.Rows), nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "New 21x11 maze generated",
		},
		{
			name:        "Invalid dimensions",
			requestBody: map[string]interface{}{"cols": 2},
			setupMock: func(m *MockGameService) {
				m.RegenerateFunc = func(ctx context.Context, sessionID string, req service.RegenerateRequest) (*engine.GameState, error) {
					return nil, fmt.Errorf("%w: 2x15", maze.ErrInvalidDimensions)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative dimensions",
			requestBody:    map[string]interface{}{"rows": -1},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/regenerate", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedMsg != "" {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["message"] != tt.expectedMsg {
					t.Errorf("Expected message %q, got %v", tt.expectedMsg, resp["message"])
				}
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected service.HistoryOptions
	}{
		{name: "Defaults", query: "", expected: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{name: "Custom", query: "?page=3&limit=5&order=asc", expected: service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{name: "Invalid values ignored", query: "?page=0&limit=x&order=sideways", expected: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/sess-1/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestGetGameState(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			state := testState(7, 5)
			state.Status = engine.StatusWon
			return state, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/sess-1/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var state engine.GameState
	parseResponse(t, w, &state)
	if state.Status != engine.StatusWon {
		t.Errorf("Expected status won, got %s", state.Status)
	}
	if state.Grid == nil || state.Grid.Cols != 7 || state.Grid.Rows != 5 {
		t.Errorf("Expected a 7x5 grid, got %+v", state.Grid)
	}
}

func TestRender(t *testing.T) {
	grid, err := maze.NewGrid(3, 2)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	text := grid.Render(maze.Position{}, maze.Position{X: 2, Y: 1})

	mockService := &MockGameService{
		RenderFunc: func(ctx context.Context, sessionID string) (string, error) {
			return text, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/sess-1/render", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain, got %s", ct)
	}
	if w.Body.String() != text {
		t.Errorf("Unexpected render body:\n%s", w.Body.String())
	}
	if lines := strings.Count(w.Body.String(), "\n"); lines != 5 {
		t.Errorf("Expected 5 lines for a 3x2 maze, got %d", lines)
	}
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				{ConfigID: "classic", Name: "Classic Maze", Cols: 15, Rows: 15},
				{ConfigID: "daily", Name: "Daily Maze", Cols: 21, Rows: 21, Seeded: true},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var configs []service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}
	if !configs[1].Seeded {
		t.Error("Expected daily config to be seeded")
	}
}

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name           string
		configName     string
		expectedName   string
		expectedStatus int
	}{
		{name: "Existing config", configName: "classic", expectedName: "classic", expectedStatus: http.StatusOK},
		{name: "Config with extension", configName: "tiny.json", expectedName: "tiny", expectedStatus: http.StatusOK},
		{name: "Missing config", configName: "missing", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
					if configName == "missing" {
						return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configName)
					}
					return &engine.GameConfig{Name: configName, Cols: 5, Rows: 5}, nil
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/configs/"+tt.configName, nil)
			req = mux.SetURLVars(req, map[string]string{"name": tt.configName})

			server.handleGetConfig(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Code == http.StatusOK {
				var cfg engine.GameConfig
				parseResponse(t, w, &cfg)
				if cfg.Name != tt.expectedName {
					t.Errorf("Expected config %s, got %s", tt.expectedName, cfg.Name)
				}
			}
		})
	}
}

func TestCreateConfig(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		saveErr        error
		expectedID     string
		expectedStatus int
	}{
		{
			name:           "Explicit config id",
			requestBody:    map[string]interface{}{"config_id": "weekly", "name": "Weekly Maze", "cols": 25, "rows": 25},
			expectedID:     "weekly",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Id derived from name",
			requestBody:    map[string]interface{}{"name": "My Big  Maze!", "cols": 25, "rows": 25},
			expectedID:     "my-big-maze",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing name",
			requestBody:    map[string]interface{}{"cols": 25, "rows": 25},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid config",
			requestBody:    map[string]interface{}{"name": "Bad", "cols": 1, "rows": 1},
			saveErr:        fmt.Errorf("%w: size out of range", config.ErrInvalidConfig),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var savedID string
			mockService := &MockGameService{
				SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
					savedID = configName
					return tt.saveErr
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/configs", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedID != "" && savedID != tt.expectedID {
				t.Errorf("Expected config id %s, got %s", tt.expectedID, savedID)
			}
		})
	}
}

// Record Tests

func TestRecords(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	best := []records.Record{
		records.New("s1", "tiny", 5, 5, 8, 2*time.Second, nil, at),
		records.New("s2", "classic", 15, 15, 60, 40*time.Second, nil, at),
	}

	var gotCols, gotRows, gotLimit int
	mockService := &MockGameService{
		BestRecordsFunc: func(ctx context.Context) ([]records.Record, error) {
			return best, nil
		},
		TopRecordsFunc: func(ctx context.Context, cols, rows, limit int) ([]records.Record, error) {
			gotCols, gotRows, gotLimit = cols, rows, limit
			return best[1:], nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/records", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var all struct {
		Count   int              `json:"count"`
		Records []records.Record `json:"records"`
	}
	parseResponse(t, w, &all)
	if all.Count != 2 {
		t.Errorf("Expected 2 best records, got %d", all.Count)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/records/15x15?limit=3", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotCols != 15 || gotRows != 15 || gotLimit != 3 {
		t.Errorf("Expected 15x15 limit 3, got %dx%d limit %d", gotCols, gotRows, gotLimit)
	}
	var top map[string]interface{}
	parseResponse(t, w, &top)
	if top["size"] != "15x15" {
		t.Errorf("Expected size 15x15, got %v", top["size"])
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/records/big", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for malformed size, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %s", resp["status"])
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("wrap: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{config.ErrConfigNotFound, http.StatusNotFound},
		{maze.ErrInvalidDimensions, http.StatusBadRequest},
		{config.ErrInvalidConfig, http.StatusBadRequest},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		respondServiceError(w, tt.err)
		if w.Code != tt.expected {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.expected, w.Code)
		}
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Valid session",
			queryParams: "?session=sess-123",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:         sessionID,
						ConfigName: "test",
					}, nil
				}
			},
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// httptest.ResponseRecorder cannot be hijacked, so a 500 means the upgrade was attempted
			if tt.expectedStatus == http.StatusSwitchingProtocols && w.Code == http.StatusInternalServerError {
				return
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestMoveBroadcastsToWatchers(t *testing.T) {
	won := testState(5, 5)
	won.Status = engine.StatusWon
	won.Message = "Solved in 8 moves!"

	mockService := &MockGameService{
		MoveFunc: func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
			return &service.MoveResult{
				Success:   true,
				GameState: won,
				Outcome:   engine.MoveOutcome{Accepted: true, Won: true, Moves: 8},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	ts := httptest.NewServer(server)
	defer ts.Close()

	conn, _, err := gorillaDial(ts.URL, "sess-1")
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for server.hub.ClientCount("sess-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/move", map[string]string{"direction": "down"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var events []string
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for len(events) < 2 {
		var msg websocket.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		events = append(events, msg.Event)
	}

	if events[0] != websocket.EventStateUpdate || events[1] != websocket.EventVictory {
		t.Errorf("Expected state_update then victory, got %v", events)
	}
}
