// Package config loads and caches maze presets.
//
// A preset is a JSON file in the configs directory naming the maze size, an
// optional fixed seed and the player-facing messages:
//
//	{
//	  "name": "Classic Maze",
//	  "description": "The standard 15x15 perfect maze",
//	  "cols": 15,
//	  "rows": 15,
//	  "messages": {"welcome": "...", "victory": "Escaped in %d moves!", ...}
//	}
//
// The file name without extension is the config ID used to create sessions.
// Dimensions must lie between 5 and 51. A preset with a seed always carves
// the same maze, which makes records on it comparable between players.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	classic, err := manager.LoadConfig("classic")
//	presets, err := manager.ListConfigs()
//
// When no valid preset exists the manager falls back to the built-in
// 15x15 classic configuration.
package config
