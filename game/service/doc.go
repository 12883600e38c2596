// Package service provides the business logic layer of the maze game.
//
// The service package implements:
//   - Multi-session management on top of a SessionManager
//   - Maze presets through a ConfigManager
//   - Move processing, restart and maze regeneration
//   - Best-attempt records submitted when a session reaches the goal
//   - Paginated move history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages preset loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. Each session owns its own engine and maze. Mutations are
// serialized by the service mutex.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	store, _ := records.NewFileStore("records.json")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithRecordStore(store))
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "classic"})
//	result, err := gameService.Move(ctx, info.ID, "right", false)
package service
