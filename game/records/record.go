package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultTopN is the number of records kept per maze size
const DefaultTopN = 10

var (
	ErrNoRecord    = errors.New("no record for this size")
	ErrInvalidSize = errors.New("invalid size key")
)

// Record is a completed attempt
type Record struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	ConfigName string    `json:"config_name,omitempty"`
	Cols       int       `json:"cols"`
	Rows       int       `json:"rows"`
	Moves      int       `json:"moves"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	Seed       *uint64   `json:"seed,omitempty"`
	AchievedAt time.Time `json:"achieved_at"`
}

// Store persists records per maze size
type Store interface {
	// Submit stores the record and reports whether it is the new best for its size
	Submit(ctx context.Context, rec Record) (bool, error)
	Best(ctx context.Context, cols, rows int) (*Record, error)
	Top(ctx context.Context, cols, rows, limit int) ([]Record, error)
	// AllBest returns the best record of every known size
	AllBest(ctx context.Context) ([]Record, error)
	Close() error
}

// New builds a record for a finished attempt
func New(sessionID, configName string, cols, rows, moves int, elapsed time.Duration, seed *uint64, at time.Time) Record {
	return Record{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		ConfigName: configName,
		Cols:       cols,
		Rows:       rows,
		Moves:      moves,
		ElapsedMs:  elapsed.Milliseconds(),
		Seed:       seed,
		AchievedAt: at.UTC(),
	}
}

// SizeKey returns the grouping key of the record
func (r Record) SizeKey() string {
	return SizeKey(r.Cols, r.Rows)
}

// Elapsed returns the attempt duration
func (r Record) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMs) * time.Millisecond
}

// SizeKey formats maze dimensions as "COLSxROWS"
func SizeKey(cols, rows int) string {
	return fmt.Sprintf("%dx%d", cols, rows)
}

// ParseSizeKey parses a "COLSxROWS" key
func ParseSizeKey(key string) (int, int, error) {
	var cols, rows int
	if n, err := fmt.Sscanf(key, "%dx%d", &cols, &rows); err != nil || n != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, key)
	}
	if SizeKey(cols, rows) != key || cols <= 0 || rows <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, key)
	}
	return cols, rows, nil
}

// Better reports whether a ranks ahead of b: faster wins, fewer moves breaks ties
func Better(a, b Record) bool {
	if a.ElapsedMs != b.ElapsedMs {
		return a.ElapsedMs < b.ElapsedMs
	}
	return a.Moves < b.Moves
}

// Rank sorts records best first, keeping submission order for equal entries
func Rank(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return Better(recs[i], recs[j])
	})
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultTopN {
		return DefaultTopN
	}
	return limit
}
