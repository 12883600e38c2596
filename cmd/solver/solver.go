package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/service"
)

// ErrNoMoves is returned when the strategy has nothing left to try
var ErrNoMoves = errors.New("no moves available")

// Options bounds a solve run
type Options struct {
	MaxMoves int
	Delay    time.Duration
	Logger   *zap.Logger
}

// Result summarizes a solve run
type Result struct {
	Won      bool
	Moves    int // accepted moves in this attempt
	Requests int // API calls made for moves
	Record   *service.RecordResult
}

// Solve plays the current session of c from state until the goal is reached
func Solve(ctx context.Context, c *Client, strategy Strategy, state *engine.GameState, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var result Result
	for state.Status != engine.StatusWon {
		if opts.MaxMoves > 0 && state.Moves >= opts.MaxMoves {
			return result, fmt.Errorf("gave up after %d moves", state.Moves)
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		moves := strategy.NextMoves(state)
		if len(moves) == 0 {
			return result, fmt.Errorf("%w at %s", ErrNoMoves, state.PlayerPos)
		}

		result.Requests++
		if len(moves) == 1 {
			res, err := c.Move(ctx, moves[0])
			if err != nil {
				return result, err
			}
			if !res.Outcome.Accepted {
				return result, fmt.Errorf("move %s rejected at %s: %s", moves[0], state.PlayerPos, res.Message)
			}
			state = res.GameState
			if res.Record != nil {
				result.Record = res.Record
			}
		} else {
			res, err := c.BulkMove(ctx, moves)
			if err != nil {
				return result, err
			}
			state = res.GameState
			if res.Record != nil {
				result.Record = res.Record
			}
			if code := res.StopReasonCode; code != "" && code != "won" {
				return result, fmt.Errorf("bulk move stopped on move %d: %s", res.StoppedOnMove, res.StoppedReason)
			}
		}

		if result.Requests%50 == 0 {
			logger.Debug("progress", zap.Stringer("pos", state.PlayerPos), zap.Int("moves", state.Moves))
		}

		if opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	result.Won = true
	result.Moves = state.Moves
	return result, nil
}
