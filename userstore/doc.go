// Package userstore persists user accounts in a flat JSON document keyed by
// username, sharing the lock-and-atomic-replace discipline of the session
// store so CLI tools and web workers can edit accounts concurrently.
//
// It stores credentials and account metadata only. Password hashing policy,
// session issuance, and authorization live elsewhere; this package never
// sees a plaintext password.
package userstore
