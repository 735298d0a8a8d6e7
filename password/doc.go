// Package password implements password hashing and verification with bcrypt.
//
// # Output format
//
// Hashes are standard bcrypt strings (`$2a$<cost>$<salt+digest>`); the salt is
// generated per call, so hashing the same password twice yields different
// strings. The cost factor is configurable and validated at construction.
//
// The [Bcrypt] hasher supports transparent cost upgrades: if a stored hash was
// produced with a lower cost than currently configured, [Bcrypt.NeedsUpgrade]
// returns true so the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (minimum
// length, reuse rules) and credential storage are enforced elsewhere.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other pressauth package.
//   - Surface errors for malformed stored hashes during verification; a hash
//     that cannot be parsed is simply a failed verification.
package password
