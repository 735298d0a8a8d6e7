// Package middleware exposes net/http adapters for cookie-session
// enforcement built on top of pressauth.Manager.
//
// # Guards
//
//   - [RequireSession] — resolves the session cookie and injects the
//     session into the request context.
//   - [RequirePermission] — RequireSession plus an authorization check for
//     one action.
//   - [RequireCSRF] — verifies the CSRF header on mutating requests.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Manager calls. It does NOT
// implement authentication logic itself; all decisions are delegated to the
// Manager.
//
// # What this package must NOT do
//
//   - Read or write session files (the Manager handles I/O).
//   - Make authorization decisions beyond pass/reject from the Manager.
//   - Render anything richer than a plain error status.
package middleware
