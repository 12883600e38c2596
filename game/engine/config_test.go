package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*GameConfig)
		wantErr string
	}{
		{"valid", func(*GameConfig) {}, ""},
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"cols too small", func(c *GameConfig) { c.Cols = 4 }, "cols must be between 5 and 51"},
		{"rows too large", func(c *GameConfig) { c.Rows = 52 }, "rows must be between 5 and 51"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome is required"},
		{"missing victory", func(c *GameConfig) { c.Messages.Victory = "" }, "messages.victory is required"},
		{"missing cant move", func(c *GameConfig) { c.Messages.CantMove = "" }, "messages.cant_move is required"},
		{"victory without count", func(c *GameConfig) { c.Messages.Victory = "You won!" }, "must contain %d"},
		{"moved with two verbs", func(c *GameConfig) { c.Messages.Moved = "%d of %d" }, "single %d verb"},
		{"rectangular", func(c *GameConfig) { c.Cols, c.Rows = 51, 5 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			tt.modify(config)

			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	config := createTestConfig()
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	path := filepath.Join(dir, "test.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	loaded, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Name != config.Name || loaded.Cols != 5 || loaded.Messages.Victory != config.Messages.Victory {
		t.Errorf("Loaded config differs: %+v", loaded)
	}

	t.Run("CONFIG_DIR override", func(t *testing.T) {
		t.Setenv("CONFIG_DIR", dir)
		loaded, err := LoadGameConfig("configs/test.json")
		if err != nil {
			t.Fatalf("Failed to load config through CONFIG_DIR: %v", err)
		}
		if loaded.Name != config.Name {
			t.Errorf("Expected %s, got %s", config.Name, loaded.Name)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		os.WriteFile(bad, []byte("{not json"), 0644)
		if _, err := LoadGameConfig(bad); err == nil {
			t.Error("Expected parse error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

func TestInitGameState(t *testing.T) {
	state := serpentineState(t)

	if state.Start.X != 0 || state.Start.Y != 0 {
		t.Errorf("Expected start at (0,0), got %s", state.Start)
	}
	if state.Goal.X != 4 || state.Goal.Y != 4 {
		t.Errorf("Expected goal at (4,4), got %s", state.Goal)
	}
	if state.PlayerPos != state.Start {
		t.Error("Expected player to begin on the start cell")
	}
	if state.Status != StatusPlaying {
		t.Errorf("Expected playing, got %s", state.Status)
	}
	if !state.StartedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Unexpected start time %v", state.StartedAt)
	}
	if state.MoveHistory == nil || state.CurrentMoves == nil {
		t.Error("Expected initialized history slices")
	}
}

func TestGameStateJSONRoundTrip(t *testing.T) {
	state := serpentineState(t)
	state.AttemptMove(1) // right

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}
	if !strings.Contains(string(data), `"status":"playing"`) {
		t.Errorf("Expected status in JSON, got %s", data)
	}

	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal state: %v", err)
	}
	if restored.PlayerPos != state.PlayerPos || restored.Moves != 1 {
		t.Errorf("Restored state differs: %+v", restored)
	}
	if restored.Grid.String() != state.Grid.String() {
		t.Error("Expected the maze to survive serialization")
	}
	if err := restored.Grid.CheckSymmetry(); err != nil {
		t.Errorf("Restored maze is inconsistent: %v", err)
	}
}
