// Package permission provides the static role-to-action matrix used by
// pressauth authorization checks.
//
// # Model
//
// [Role] is a closed enumeration (admin, editor, viewer). Actions are plain
// strings; the canonical set is declared as constants in this package. A
// [Matrix] maps each role to the set of actions it may perform. Roles may be
// granted additional actions during startup (for example by plugin hooks) and
// the matrix is then frozen; grants after [Matrix.Freeze] are rejected.
//
// # Fail-closed semantics
//
// [Matrix.Allowed] returns false for any role or action not explicitly
// granted, including roles unknown to the matrix entirely. There is no
// wildcard and no implicit inheritance between roles.
//
// # What this package must NOT do
//
//   - Access storage or the network.
//   - Import any other pressauth package.
//   - Grant permissions dynamically after the matrix is frozen.
package permission
