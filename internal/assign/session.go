package assign

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// State enumerates the lifecycle of an assignment screen per principal.
type State int

const (
	// StateIdle means no principal is chosen yet.
	StateIdle State = iota
	// StateLoading means the principal's current grants are being fetched.
	StateLoading
	// StateReady means the selection is populated and editable.
	StateReady
)

// RoleSession drives the role-permission screen: a flat grant set with no
// inheritance. Switching roles discards the previous selection; a fetch
// that resolves after the role changed again is discarded via the
// generation counter.
type RoleSession struct {
	mu     sync.Mutex
	api    API
	notify Notifier

	roles  []Role
	groups Groups

	state  State
	roleID int64
	gen    uint64
	sel    *Selection
}

// NewRoleSession constructs an idle role session.
func NewRoleSession(api API, notify Notifier) *RoleSession {
	return &RoleSession{api: api, notify: notify, sel: NewSelection(), state: StateIdle}
}

// LoadCatalog fetches the role and permission catalogs concurrently. On
// failure the prior catalogs stay untouched and the error is surfaced to
// the notification sink.
func (s *RoleSession) LoadCatalog(ctx context.Context) error {
	var (
		roles []Role
		perms []Permission
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.api.Roles(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		perms, err = s.api.Permissions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.notify.Error("Failed to load roles and permissions: " + err.Error())
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = roles
	s.groups = BuildGroups(perms)
	return nil
}

// Roles returns the loaded role catalog.
func (s *RoleSession) Roles() []Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles
}

// Groups returns the grouped permission catalog.
func (s *RoleSession) Groups() Groups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups
}

// State returns the current lifecycle state.
func (s *RoleSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select makes roleID the active principal and repopulates the selection
// from the backend. A failed fetch leaves the screen editable with an
// empty selection and reports through the notification sink.
func (s *RoleSession) Select(ctx context.Context, roleID int64) {
	s.mu.Lock()
	s.roleID = roleID
	s.gen++
	gen := s.gen
	s.state = StateLoading
	s.sel.Reset()
	s.mu.Unlock()

	perms, err := s.api.RolePermissions(ctx, roleID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// A newer principal selection superseded this fetch.
		return
	}
	s.state = StateReady
	if err != nil {
		s.sel.Reset()
		s.notify.Error("Failed to load role permissions: " + err.Error())
		return
	}
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	s.sel.Replace(ids)
}

// Toggle flips one permission.
func (s *RoleSession) Toggle(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.sel.Toggle(id)
}

// ToggleGroup applies the per-group binary toggle.
func (s *RoleSession) ToggleGroup(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.sel.ToggleGroup(s.groups.IDs(key))
}

// ToggleAll applies the global binary toggle.
func (s *RoleSession) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.sel.ToggleAll(s.groups.AllIDs())
}

// Checked reports whether the permission renders as checked.
func (s *RoleSession) Checked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Has(id)
}

// SelectedCount returns the badge value.
func (s *RoleSession) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Len()
}

// Payload returns the ids that would be submitted.
func (s *RoleSession) Payload() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Payload()
}

// Submit sends the direct grant list. Local state is preserved on failure
// so the user can adjust and retry.
func (s *RoleSession) Submit(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateReady || s.roleID == 0 {
		s.mu.Unlock()
		return
	}
	roleID := s.roleID
	payload := s.sel.Payload()
	s.mu.Unlock()

	if err := s.api.SaveRolePermissions(ctx, roleID, payload); err != nil {
		s.notify.Error("Failed to save role permissions: " + err.Error())
		return
	}
	s.notify.Success("Role permissions updated")
}

// UserSession drives the user-permission screen. On top of the role
// variant it reconciles role-inherited grants (rendered checked and
// locked) with the directly granted set, and honours a deep-link
// permission hint.
type UserSession struct {
	mu     sync.Mutex
	api    API
	notify Notifier

	users  []User
	groups Groups

	state  State
	userID int64
	gen    uint64
	hint   int64
	sel    *UserSelection
}

// NewUserSession constructs an idle user session.
func NewUserSession(api API, notify Notifier) *UserSession {
	return &UserSession{api: api, notify: notify, sel: NewUserSelection(), state: StateIdle}
}

// LoadCatalog fetches the user and permission catalogs concurrently. On
// failure the prior catalogs stay untouched.
func (s *UserSession) LoadCatalog(ctx context.Context) error {
	var (
		users []User
		perms []Permission
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.api.Users(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		perms, err = s.api.Permissions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.notify.Error("Failed to load users and permissions: " + err.Error())
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	s.groups = BuildGroups(perms)
	return nil
}

// Users returns the loaded user catalog.
func (s *UserSession) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users
}

// Groups returns the grouped permission catalog.
func (s *UserSession) Groups() Groups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups
}

// State returns the current lifecycle state.
func (s *UserSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetHint records a deep-linked permission id to pre-check once the active
// user's grants have loaded. An inherited hint is ignored at application
// time.
func (s *UserSession) SetHint(permissionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReady {
		s.sel.ApplyHint(permissionID)
		return
	}
	s.hint = permissionID
}

// Select makes userID the active principal and repopulates both grant
// sets from the backend. A failed fetch leaves the screen editable with
// empty sets and reports through the notification sink.
func (s *UserSession) Select(ctx context.Context, userID int64) {
	s.mu.Lock()
	s.userID = userID
	s.gen++
	gen := s.gen
	s.state = StateLoading
	s.sel.Reset()
	s.mu.Unlock()

	grants, err := s.api.UserPermissions(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.state = StateReady
	if err != nil {
		s.sel.Reset()
		s.notify.Error("Failed to load user permissions: " + err.Error())
		return
	}
	s.sel.SetInherited(grants.InheritedIDs)
	s.sel.SetDirect(grants.DirectIDs)
	if s.hint != 0 {
		s.sel.ApplyHint(s.hint)
		s.hint = 0
	}
}

// Toggle flips one permission; inherited ids are locked.
func (s *UserSession) Toggle(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.sel.Toggle(id)
}

// ToggleGroup applies the per-group binary toggle over the assignable
// subset of the group.
func (s *UserSession) ToggleGroup(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.sel.ToggleGroup(s.groups.IDs(key))
}

// ToggleAll applies the global binary toggle over the assignable set.
func (s *UserSession) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return
	}
	s.sel.ToggleAll(s.groups.AllIDs())
}

// Checked reports the effective checkbox state.
func (s *UserSession) Checked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Checked(id)
}

// Inherited reports whether the permission is locked by role membership.
func (s *UserSession) Inherited(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Inherited(id)
}

// SelectedCount returns the badge value: direct plus inherited grants.
func (s *UserSession) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Count()
}

// Payload returns the direct ids that would be submitted.
func (s *UserSession) Payload() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Payload()
}

// Submit sends the direct grant list; inherited grants are re-derived by
// the backend from role membership and never submitted.
func (s *UserSession) Submit(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateReady || s.userID == 0 {
		s.mu.Unlock()
		return
	}
	userID := s.userID
	payload := s.sel.Payload()
	s.mu.Unlock()

	if err := s.api.SaveUserPermissions(ctx, userID, payload); err != nil {
		s.notify.Error("Failed to save user permissions: " + err.Error())
		return
	}
	s.notify.Success("User permissions updated")
}
