// Package records keeps the best completed attempts per maze size.
//
// A Record is produced when a session reaches the goal. Records are grouped
// by grid dimensions ("15x15") and ranked by elapsed time, with fewer moves
// breaking ties. Each size keeps the top DefaultTopN entries.
//
// Two Store implementations are provided:
//   - FileStore: a JSON file guarded by a mutex, or memory only when the
//     path is empty
//   - RedisStore: one sorted set per size plus an index set of known sizes,
//     with submissions serialized by a redsync mutex
//
// Usage:
//
//	store, err := records.NewFileStore("records.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	best, err := store.Submit(ctx, rec)
package records
