// Package mcp exposes the maze game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON answer is formatted as text, including
// the maze drawing, so an agent can plan its next moves.
//
// MCP Tools:
//   - create_session, get_session, list_sessions
//   - game_state, render, describe_cell
//   - move, bulk_move, reset_game, regenerate_maze
//   - move_history, list_configs, best_records, game_instructions
//
// The move tools accept an 'intent' argument that is not sent to the server;
// it gives the agent a place to state its reasoning.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
