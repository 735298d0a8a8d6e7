// Package session stores authenticated browser sessions keyed by their
// opaque bearer token.
//
// Three implementations share one contract: [FileStore] persists sessions as
// a flat JSON document guarded by an advisory file lock, so any number of
// worker processes on the same host see a consistent view; [MemoryStore]
// holds them in process memory for tests and single-process deployments;
// [RedisStore] keeps them in Redis with native TTL expiry for multi-host
// setups.
//
// # Architecture boundaries
//
// This package owns session records and their lifetime. It does not:
//
//   - generate tokens, CSRF secrets, or session IDs (callers supply them)
//   - decide whether a session grants access to anything
//   - verify credentials or touch rate limits
//
// Expired records are deleted lazily: a Get that finds an expired or
// unreadable record removes it and reports [ErrNotFound]. CleanupExpired
// exists for callers that want to sweep proactively.
package session
