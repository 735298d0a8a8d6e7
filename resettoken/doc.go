// Package resettoken issues and verifies single-purpose password reset
// tokens as signed JWTs.
//
// Each token embeds a fingerprint of the account's current password hash.
// Completing a reset changes the hash, so every outstanding token for the
// account stops verifying without any server-side revocation state.
package resettoken
