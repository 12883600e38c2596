// Package websocket pushes live session updates to browsers and other watchers.
//
// A central Hub owns every connection. Clients subscribe to one session with
// the ?session=<id> query parameter and receive JSON messages:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "victory", "data": "You escaped the maze in 48 moves!"}
//
// Events are state_update, victory, regenerated and record. Incoming client
// messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.BroadcastToSession(sessionID, state)
//
// Registration, unregistration and broadcasts are serialized on the Run
// goroutine. Broadcasting never blocks the caller; a client whose send
// buffer is full is disconnected.
package websocket
