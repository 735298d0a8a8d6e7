// Package pressauth is the authentication core for a self-hosted flat-file
// CMS: session management, credential verification, login rate limiting,
// and role-based authorization, sharable between web workers and CLI tools
// through lock-protected JSON files.
//
// The package is designed for concurrent server workloads: Manager methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// pressauth is the public surface. It exposes [Manager], [Builder],
// [Config], and value types (LoginResult, MetricsSnapshot, etc.). Store
// implementations live in the session, ratelimit, and userstore
// sub-packages; audit dispatch and file plumbing live under internal/ and
// are never exported directly.
//
// # What this package must NOT do
//
//   - Render HTTP responses or own routing (see the middleware sub-package
//     for net/http guards).
//   - Send email. Password reset tokens are returned to the caller, who
//     owns delivery.
//   - Persist plaintext passwords anywhere, including audit events.
package pressauth
