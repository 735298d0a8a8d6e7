package permission

import (
	"errors"
	"sort"
	"sync"
)

// Role identifies one permission tier. The set of roles is closed; values
// outside the declared constants never receive grants.
type Role string

const (
	// RoleAdmin has full access, including user and settings management.
	RoleAdmin Role = "admin"
	// RoleEditor has content-edit access but no administrative rights.
	RoleEditor Role = "editor"
	// RoleViewer has read-only access to public content.
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// ParseRole maps a stored role string to a [Role]. Unknown strings report
// ok=false; callers treat that as "no permissions" rather than an error.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Canonical action names. Plugins may grant additional action strings before
// the matrix is frozen.
const (
	ActionViewPublic     = "view_public"
	ActionViewHidden     = "view_hidden"
	ActionEditPage       = "edit_page"
	ActionCreatePage     = "create_page"
	ActionDeletePage     = "delete_page"
	ActionEditBlock      = "edit_block"
	ActionUploadFile     = "upload_file"
	ActionDeleteFile     = "delete_file"
	ActionChangeTheme    = "change_theme"
	ActionManagePlugins  = "manage_plugins"
	ActionChangeSettings = "change_settings"
	ActionManageUsers    = "manage_users"
	ActionViewAudit      = "view_audit"
	ActionBackup         = "backup"
	ActionRestore        = "restore"
)

// ErrMatrixFrozen is returned by [Matrix.Grant] after [Matrix.Freeze].
var ErrMatrixFrozen = errors.New("permission matrix frozen")

// Matrix is a role-to-action-set mapping. Grants are registered during
// startup; once frozen the matrix is immutable and safe for concurrent
// lookup without contention concerns.
type Matrix struct {
	mu     sync.RWMutex
	grants map[Role]map[string]struct{}
	frozen bool
}

// NewMatrix creates an empty [Matrix] with no grants.
func NewMatrix() *Matrix {
	return &Matrix{
		grants: make(map[Role]map[string]struct{}),
	}
}

// DefaultMatrix returns the standard pressassist grants: admins hold every
// action, editors hold the content actions, viewers only view_public.
func DefaultMatrix() *Matrix {
	m := NewMatrix()

	_ = m.Grant(RoleAdmin,
		ActionViewPublic,
		ActionViewHidden,
		ActionEditPage,
		ActionCreatePage,
		ActionDeletePage,
		ActionEditBlock,
		ActionUploadFile,
		ActionDeleteFile,
		ActionChangeTheme,
		ActionManagePlugins,
		ActionChangeSettings,
		ActionManageUsers,
		ActionViewAudit,
		ActionBackup,
		ActionRestore,
	)
	_ = m.Grant(RoleEditor,
		ActionViewPublic,
		ActionViewHidden,
		ActionEditPage,
		ActionCreatePage,
		ActionDeletePage,
		ActionEditBlock,
		ActionUploadFile,
	)
	_ = m.Grant(RoleViewer,
		ActionViewPublic,
	)

	return m
}

// Grant adds actions to a role's set. Grant may return an error when the
// matrix is frozen, the role is outside the closed enumeration, or an action
// name is empty.
func (m *Matrix) Grant(role Role, actions ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.frozen {
		return ErrMatrixFrozen
	}
	if !role.Valid() {
		return errors.New("unknown role: " + string(role))
	}

	set, ok := m.grants[role]
	if !ok {
		set = make(map[string]struct{}, len(actions))
		m.grants[role] = set
	}

	for _, action := range actions {
		if action == "" {
			return errors.New("empty action name")
		}
		set[action] = struct{}{}
	}

	return nil
}

// Freeze makes the matrix immutable. Subsequent Grant calls fail.
func (m *Matrix) Freeze() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen = true
}

// Allowed reports whether role may perform action. Unknown roles and
// ungranted actions are denied.
func (m *Matrix) Allowed(role Role, action string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.grants[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// Actions returns the sorted action set granted to role. Unknown roles
// return an empty slice.
func (m *Matrix) Actions(role Role) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.grants[role]
	actions := make([]string, 0, len(set))
	for action := range set {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// Roles returns the roles holding at least one grant.
func (m *Matrix) Roles() []Role {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make([]Role, 0, len(m.grants))
	for role := range m.grants {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
