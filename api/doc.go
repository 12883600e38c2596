// Package api provides HTTP REST API handlers for the maze game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id", "cols", "rows", "seed"}, all optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state including the maze
//   - GET /api/sessions/{id}/render - Text drawing of the maze (text/plain)
//   - POST /api/sessions/{id}/move - {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["right", "down"], "reset": false}
//   - POST /api/sessions/{id}/reset - Back to the start cell of the same maze
//   - POST /api/sessions/{id}/regenerate - {"cols", "rows", "seed"}, zero keeps the size
//   - GET /api/sessions/{id}/history - Move history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List presets
//   - POST /api/configs - Save a preset
//   - GET /api/configs/{name} - Get a preset
//
// Records:
//   - GET /api/records - Best record of every maze size
//   - GET /api/records/{cols}x{rows} - Leaderboard of one size (?limit=N)
//
// Errors are returned as JSON:
//
//	{"error": "session not found: ab12"}
//
// Unknown sessions and presets map to 404, invalid dimensions and presets to
// 400. Every state change is pushed to WebSocket watchers of the session.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
