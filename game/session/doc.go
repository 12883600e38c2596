// Package session manages the lifecycle of maze game sessions.
//
// The session package implements:
//   - Thread-safe session storage with case-insensitive IDs
//   - 4-character session ID generation using crypto/rand
//   - Expiry of idle sessions, in memory and in the store
//   - Optional persistence to JSON files or Redis
//
// Each session owns its own engine and therefore its own maze. Persisted
// sessions embed the maze, the full game state and the effective
// configuration, so a restored session continues on the identical grid even
// when it was created with custom dimensions or a seed.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configManager)
//	manager := session.NewManager(
//		session.WithPersistence(persistence),
//		session.WithIdleTTL(time.Hour))
//	manager.Restore()
//
//	sess, err := manager.Create("", config)
//	sess, err = manager.Get(sess.ID)
//
// A Redis backend stores each session under "maze:sessions:<id>":
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	persistence := session.NewRedisPersistence(client, "", 24*time.Hour, configManager)
package session
