// Command solver plays a maze session through the REST API until it reaches
// the goal. The explore strategy sees only the walls of the cell it stands on
// and walks the maze depth-first, backtracking out of dead ends.
//
// The session ID is kept in a file so the next run continues on the same
// maze; every run resets the session before solving.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/service"
	"github.com/wricardo/maze-game/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "solver",
		Usage: "Solve a maze session through the game API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("MAZE_API_URL")},
			&cli.StringFlag{Name: "config", Usage: "Preset for a new session"},
			&cli.IntFlag{Name: "cols", Usage: "Width override for a new session"},
			&cli.IntFlag{Name: "rows", Usage: "Height override for a new session"},
			&cli.Uint64Flag{Name: "seed", Usage: "Seed for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "File remembering the last session ID (empty to disable)"},
			&cli.StringFlag{Name: "strategy", Value: "explore", Usage: "Move strategy (explore)"},
			&cli.IntFlag{Name: "max-moves", Value: 10000, Usage: "Maximum accepted moves before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between requests"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: solveAction,
	}
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	cfg := observability.DefaultConfig()
	cfg.ServiceName = "maze-solver"
	if cmd.Bool("verbose") {
		cfg.Level = "debug"
	}
	observability.InitializeLogger(cfg)
	defer observability.Sync()
	logger := observability.GetLogger()

	strategy, err := NewStrategy(cmd.String("strategy"))
	if err != nil {
		return err
	}

	client := NewClient(cmd.String("url"))
	logger.Info("connecting to game server", zap.String("url", cmd.String("url")))

	state, err := openSession(ctx, cmd, client, logger)
	if err != nil {
		return err
	}

	state, err = client.Reset(ctx)
	if err != nil {
		return err
	}
	strategy.Reset()
	logger.Info("solving",
		zap.String("session", client.SessionID()),
		zap.Int("cols", state.Grid.Cols),
		zap.Int("rows", state.Grid.Rows),
		zap.String("strategy", cmd.String("strategy")))

	result, err := Solve(ctx, client, strategy, state, Options{
		MaxMoves: int(cmd.Int("max-moves")),
		Delay:    cmd.Duration("delay"),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("session %s: %w", client.SessionID(), err)
	}

	fields := []zap.Field{
		zap.String("session", client.SessionID()),
		zap.Int("moves", result.Moves),
		zap.Int("requests", result.Requests),
	}
	if result.Record != nil {
		fields = append(fields,
			zap.Int64("elapsed_ms", result.Record.Record.ElapsedMs),
			zap.Bool("new_best", result.Record.NewBest))
	}
	logger.Info("maze solved", fields...)
	return nil
}

// openSession resumes the requested or remembered session, or creates one
func openSession(ctx context.Context, cmd *cli.Command, client *Client, logger *zap.Logger) (*engine.GameState, error) {
	sessionFile := cmd.String("session-file")

	sessionID := cmd.String("continue")
	if sessionID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			sessionID = string(bytes.TrimSpace(data))
		}
	}

	if sessionID != "" {
		state, err := client.Resume(ctx, sessionID)
		if err == nil {
			logger.Info("resumed session", zap.String("session", sessionID))
			return state, nil
		}
		logger.Warn("failed to resume session, creating a new one", zap.String("session", sessionID), zap.Error(err))
	}

	req := service.CreateSessionRequest{
		ConfigName: cmd.String("config"),
		Cols:       int(cmd.Int("cols")),
		Rows:       int(cmd.Int("rows")),
	}
	if cmd.IsSet("seed") {
		seed := cmd.Uint64("seed")
		req.Seed = &seed
	}

	state, err := client.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Info("session created", zap.String("session", client.SessionID()))

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			logger.Warn("failed to save session ID", zap.Error(err))
		}
	}
	return state, nil
}
