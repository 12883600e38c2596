package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/maze"
	"github.com/wricardo/maze-game/game/records"
	"github.com/wricardo/maze-game/internal/observability"
)

var (
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithRecordStore sets where finished attempts are recorded
func WithRecordStore(store records.Store) Option {
	return func(s *gameServiceImpl) { s.records = store }
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = logger }
}

// WithClock overrides the time source used for events and records
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) { s.now = now }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	records  records.Store
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. Without a record
// store, records are kept in memory.
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = observability.GetLogger()
	}
	s.logger = s.logger.Named("service")
	if s.records == nil {
		s.records, _ = records.NewFileStore("")
	}
	return s
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

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name), // Return config_id consistently
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Snapshot(),
		GameConfig:     sess.Config,
	}
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSessionNotFound, sessionID, err)
	}
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session",
			zap.String("session", sessionID), zap.String("op", op), zap.Error(err))
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if req.ConfigName != "" {
		config, err = s.configs.LoadConfig(req.ConfigName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, req.ConfigName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, req.ConfigName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", req.ConfigName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Overrides apply to a private copy; presets are shared through the cache
	if req.Cols > 0 || req.Rows > 0 || req.Seed != nil {
		custom := *config
		if req.Cols > 0 {
			custom.Cols = maze.ClampSize(req.Cols)
		}
		if req.Rows > 0 {
			custom.Rows = maze.ClampSize(req.Rows)
		}
		if req.Seed != nil {
			custom.Seed = req.Seed
		}
		config = &custom
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	info := s.sessionInfo(session)
	if req.ConfigName != "" {
		info.ConfigName = req.ConfigName
	}

	s.logger.Info("session created",
		zap.String("session", session.ID),
		zap.String("config", info.ConfigName),
		zap.Int("cols", config.Cols),
		zap.Int("rows", config.Rows))

	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.Touch(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSessionNotFound, sessionID, err)
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.Touch(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Restart()
		events = append(events, s.event(EventReset, "Game reset to the start of the same maze", sess.Engine.GetPlayerPosition()))
	}

	outcome, moveErr := sess.Engine.Step(direction)
	state := sess.Engine.GetState().Snapshot()

	result := &MoveResult{
		Success:   moveErr == nil && outcome.Accepted,
		GameState: state,
		Message:   state.Message,
		Outcome:   outcome,
	}

	switch {
	case moveErr != nil:
		events = append(events, s.event(EventBlocked, moveErr.Error(), state.PlayerPos))
	case outcome.Ignored:
		events = append(events, s.event(EventBlocked, "Maze already solved", state.PlayerPos))
	case outcome.Accepted:
		events = append(events, s.event(EventMove, fmt.Sprintf("Moved %s to %s", outcome.Direction, outcome.To), outcome.To))
	default:
		events = append(events, s.event(EventBlocked, fmt.Sprintf("Blocked moving %s from %s", outcome.Direction, outcome.From), outcome.From))
	}

	if outcome.Won {
		events = append(events, s.event(EventVictory, state.Message, state.PlayerPos))
		result.Record = s.submitRecord(ctx, sess)
		if result.Record != nil {
			events = append(events, s.recordEvent(result.Record, state.PlayerPos))
		}
	}

	result.Events = events
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	s.persist(sessionID, "move")
	return result, nil
}

// BulkMove executes moves in sequence until one fails or the goal is reached
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.Touch(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Restart()
		result.Events = append(result.Events, s.event(EventReset, "Game reset to the start of the same maze", sess.Engine.GetPlayerPosition()))
	}
	result.StartPos = sess.Engine.GetPlayerPosition()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsWon() {
			result.Success = false
			result.StoppedReason = "maze already solved"
			result.StopReasonCode = "already_won"
			result.StoppedOnMove = i + 1
			break
		}

		outcome, moveErr := sess.Engine.Step(move)
		step := StepInfo{
			Idx:     i + 1,
			Dir:     move,
			From:    outcome.From,
			To:      outcome.To,
			Success: moveErr == nil && outcome.Accepted,
			Won:     outcome.Won,
		}
		result.Steps = append(result.Steps, step)

		if moveErr != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d invalid: %v", i+1, moveErr)
			result.StopReasonCode = "invalid_direction"
			result.StoppedOnMove = i + 1
			break
		}
		if !outcome.Accepted {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StopReasonCode = "blocked"
			result.StoppedOnMove = i + 1
			result.Events = append(result.Events, s.event(EventBlocked, result.StoppedReason, outcome.From))
			break
		}

		result.MovesExecuted++
		result.Events = append(result.Events, s.event(EventMove, fmt.Sprintf("Moved %s to %s", outcome.Direction, outcome.To), outcome.To))

		if outcome.Won {
			result.StopReasonCode = "won"
			result.Events = append(result.Events, s.event(EventVictory, sess.Engine.GetState().Message, outcome.To))
			result.Record = s.submitRecord(ctx, sess)
			if result.Record != nil {
				result.Events = append(result.Events, s.recordEvent(result.Record, outcome.To))
			}
			break
		}
	}

	state := sess.Engine.GetState().Snapshot()
	result.GameState = state
	result.EndPos = state.PlayerPos
	result.Won = state.Status == engine.StatusWon
	result.Message = state.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	s.persist(sessionID, "bulk_move")
	return result, nil
}

// Reset restarts the session on the same maze
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.Touch(sessionID)
	state := sess.Engine.Restart()

	s.persist(sessionID, "reset")
	return state.Snapshot(), nil
}

// Regenerate carves a new maze for the session. Requested dimensions are clamped.
func (s *gameServiceImpl) Regenerate(ctx context.Context, sessionID string, req RegenerateRequest) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.Touch(sessionID)

	cols, rows := req.Cols, req.Rows
	if cols > 0 {
		cols = maze.ClampSize(cols)
	}
	if rows > 0 {
		rows = maze.ClampSize(rows)
	}

	state, err := sess.Engine.Regenerate(cols, rows, req.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate maze: %w", err)
	}
	sess.Config = sess.Engine.GetConfig()

	s.logger.Info("maze regenerated",
		zap.String("session", sessionID),
		zap.Int("cols", state.Grid.Cols),
		zap.Int("rows", state.Grid.Rows))

	s.persist(sessionID, "regenerate")
	return state.Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.Touch(sessionID)
	return sess.Engine.GetState().Snapshot(), nil
}

// Render draws the session maze as ASCII text
func (s *gameServiceImpl) Render(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return "", err
	}
	return sess.Engine.Render(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
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

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Accepted:    engine.CountAccepted(history),
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// BestRecords returns the best record of every maze size
func (s *gameServiceImpl) BestRecords(ctx context.Context) ([]records.Record, error) {
	return s.records.AllBest(ctx)
}

// TopRecords returns the leaderboard of one maze size
func (s *gameServiceImpl) TopRecords(ctx context.Context, cols, rows, limit int) ([]records.Record, error) {
	return s.records.Top(ctx, cols, rows, limit)
}

// submitRecord stores the finished attempt. Store failures are logged and
// never fail the move itself.
func (s *gameServiceImpl) submitRecord(ctx context.Context, sess *Session) *RecordResult {
	state := sess.Engine.GetState()
	rec := records.New(
		sess.ID,
		s.getConfigID(sess.Config.Name),
		state.Grid.Cols,
		state.Grid.Rows,
		state.Moves,
		sess.Engine.Elapsed(),
		state.Seed,
		s.now(),
	)

	best, err := s.records.Submit(ctx, rec)
	if err != nil {
		s.logger.Warn("failed to submit record", zap.String("session", sess.ID), zap.Error(err))
		return nil
	}

	s.logger.Info("maze solved",
		zap.String("session", sess.ID),
		zap.String("size", rec.SizeKey()),
		zap.Int("moves", rec.Moves),
		zap.Int64("elapsed_ms", rec.ElapsedMs),
		zap.Bool("new_best", best))

	return &RecordResult{Record: rec, NewBest: best}
}

func (s *gameServiceImpl) event(eventType, message string, pos maze.Position) GameEvent {
	return GameEvent{
		Type:      eventType,
		Message:   message,
		Timestamp: s.now(),
		Position:  pos,
	}
}

func (s *gameServiceImpl) recordEvent(rec *RecordResult, pos maze.Position) GameEvent {
	msg := fmt.Sprintf("Finished %s in %d moves (%s)", rec.Record.SizeKey(), rec.Record.Moves, rec.Record.Elapsed())
	if rec.NewBest {
		msg = "New best! " + msg
	}
	return s.event(EventRecord, msg, pos)
}
