package assign

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	roles      []Role
	users      []User
	perms      []Permission
	roleGrants map[int64][]Permission
	userGrants map[int64]Grants
	grantsErr  error
	catalogErr error
	saveErr    error
	savedRole  map[int64][]int64
	savedUser  map[int64][]int64

	// When set, the first RolePermissions call signals grantsStarted and
	// blocks until grantsGate is closed.
	grantsGate    chan struct{}
	grantsStarted chan struct{}
	gateOnce      sync.Once
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		roleGrants: make(map[int64][]Permission),
		userGrants: make(map[int64]Grants),
		savedRole:  make(map[int64][]int64),
		savedUser:  make(map[int64][]int64),
	}
}

func (f *fakeAPI) Roles(ctx context.Context) ([]Role, error) {
	return f.roles, f.catalogErr
}

func (f *fakeAPI) Users(ctx context.Context) ([]User, error) {
	return f.users, f.catalogErr
}

func (f *fakeAPI) Permissions(ctx context.Context) ([]Permission, error) {
	return f.perms, f.catalogErr
}

func (f *fakeAPI) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	if f.grantsGate != nil {
		first := false
		f.gateOnce.Do(func() { first = true })
		if first {
			close(f.grantsStarted)
			<-f.grantsGate
		}
	}
	return f.roleGrants[roleID], f.grantsErr
}

func (f *fakeAPI) UserPermissions(ctx context.Context, userID int64) (Grants, error) {
	return f.userGrants[userID], f.grantsErr
}

func (f *fakeAPI) SaveRolePermissions(ctx context.Context, roleID int64, ids []int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedRole[roleID] = ids
	return nil
}

func (f *fakeAPI) SaveUserPermissions(ctx context.Context, userID int64, ids []int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedUser[userID] = ids
	return nil
}

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

func bookstorePermissions() []Permission {
	return []Permission{
		{ID: 1, Name: "create book"},
		{ID: 2, Name: "edit book"},
		{ID: 3, Name: "create customer"},
	}
}

func TestRoleSessionGroupToggleScenario(t *testing.T) {
	api := newFakeAPI()
	api.roles = []Role{{ID: 10, Name: "cashier"}}
	api.perms = bookstorePermissions()
	notify := &recordingNotifier{}
	sess := NewRoleSession(api, notify)

	require.NoError(t, sess.LoadCatalog(context.Background()))
	require.Equal(t, []string{"book", "customer"}, sess.Groups().Keys())

	sess.Select(context.Background(), 10)
	require.Equal(t, StateReady, sess.State())

	sess.ToggleGroup("book")
	require.Equal(t, []int64{1, 2}, sess.Payload())
	sess.ToggleGroup("book")
	require.Empty(t, sess.Payload())
}

func TestRoleSessionSubmitPayload(t *testing.T) {
	api := newFakeAPI()
	api.roles = []Role{{ID: 10, Name: "cashier"}}
	api.perms = bookstorePermissions()
	api.roleGrants[10] = []Permission{{ID: 3, Name: "create customer"}}
	notify := &recordingNotifier{}
	sess := NewRoleSession(api, notify)

	require.NoError(t, sess.LoadCatalog(context.Background()))
	sess.Select(context.Background(), 10)
	require.Equal(t, []int64{3}, sess.Payload())

	sess.Toggle(1)
	sess.Submit(context.Background())
	require.Equal(t, []int64{1, 3}, api.savedRole[10])
	require.Len(t, notify.successes, 1)
}

func TestRoleSessionFailOpenOnGrantsError(t *testing.T) {
	api := newFakeAPI()
	api.perms = bookstorePermissions()
	api.grantsErr = errors.New("boom")
	notify := &recordingNotifier{}
	sess := NewRoleSession(api, notify)

	require.NoError(t, sess.LoadCatalog(context.Background()))
	sess.Select(context.Background(), 10)

	require.Equal(t, StateReady, sess.State(), "fetch failure must still leave the screen editable")
	require.Empty(t, sess.Payload())
	require.Len(t, notify.errors, 1)

	// The empty state is editable.
	sess.Toggle(1)
	require.Equal(t, []int64{1}, sess.Payload())
}

func TestRoleSessionCatalogErrorKeepsPriorState(t *testing.T) {
	api := newFakeAPI()
	api.roles = []Role{{ID: 10, Name: "cashier"}}
	api.perms = bookstorePermissions()
	notify := &recordingNotifier{}
	sess := NewRoleSession(api, notify)

	require.NoError(t, sess.LoadCatalog(context.Background()))
	api.catalogErr = errors.New("backend down")
	require.Error(t, sess.LoadCatalog(context.Background()))
	require.Equal(t, []string{"book", "customer"}, sess.Groups().Keys(), "prior catalog must survive a failed reload")
	require.Len(t, notify.errors, 1)
}

func TestRoleSessionDiscardsStaleFetch(t *testing.T) {
	api := newFakeAPI()
	api.perms = bookstorePermissions()
	api.roleGrants[10] = []Permission{{ID: 1, Name: "create book"}}
	api.roleGrants[20] = []Permission{{ID: 3, Name: "create customer"}}
	api.grantsGate = make(chan struct{})
	api.grantsStarted = make(chan struct{})
	notify := &recordingNotifier{}
	sess := NewRoleSession(api, notify)
	require.NoError(t, sess.LoadCatalog(context.Background()))

	done := make(chan struct{})
	go func() {
		sess.Select(context.Background(), 10) // blocks on the gate
		close(done)
	}()

	// Switch principals while the first fetch is in flight.
	<-api.grantsStarted
	sess.Select(context.Background(), 20)
	close(api.grantsGate)
	<-done

	require.Equal(t, []int64{3}, sess.Payload(), "stale fetch for role 10 must not overwrite role 20 state")
}

func TestRoleSessionSubmitFailureKeepsSelection(t *testing.T) {
	api := newFakeAPI()
	api.perms = bookstorePermissions()
	api.saveErr = errors.New("save failed")
	notify := &recordingNotifier{}
	sess := NewRoleSession(api, notify)
	require.NoError(t, sess.LoadCatalog(context.Background()))
	sess.Select(context.Background(), 10)
	sess.Toggle(2)

	sess.Submit(context.Background())
	require.Equal(t, []int64{2}, sess.Payload(), "failed submit must preserve local state")
	require.Len(t, notify.errors, 1)
	require.Empty(t, notify.successes)
}

func TestUserSessionInheritanceScenario(t *testing.T) {
	api := newFakeAPI()
	api.users = []User{{ID: 7, Name: "Ana", Email: "ana@example.com", Roles: []string{"cashier"}}}
	api.perms = bookstorePermissions()
	api.userGrants[7] = Grants{InheritedIDs: []int64{1}}
	notify := &recordingNotifier{}
	sess := NewUserSession(api, notify)

	require.NoError(t, sess.LoadCatalog(context.Background()))
	sess.Select(context.Background(), 7)

	sess.Toggle(1)
	require.Empty(t, sess.Payload(), "inherited id must be locked")
	require.True(t, sess.Checked(1))

	sess.Toggle(2)
	require.Equal(t, []int64{2}, sess.Payload())

	sess.Submit(context.Background())
	require.Equal(t, []int64{2}, api.savedUser[7], "payload must contain direct ids only")
}

func TestUserSessionHintIgnoredWhenInherited(t *testing.T) {
	api := newFakeAPI()
	api.perms = bookstorePermissions()
	api.userGrants[7] = Grants{InheritedIDs: []int64{1}}
	notify := &recordingNotifier{}
	sess := NewUserSession(api, notify)
	require.NoError(t, sess.LoadCatalog(context.Background()))

	sess.SetHint(1)
	sess.Select(context.Background(), 7)
	require.Empty(t, sess.Payload(), "hint pointing at an inherited grant is ignored")
}

func TestUserSessionHintAppliedAfterLoad(t *testing.T) {
	api := newFakeAPI()
	api.perms = bookstorePermissions()
	notify := &recordingNotifier{}
	sess := NewUserSession(api, notify)
	require.NoError(t, sess.LoadCatalog(context.Background()))

	sess.SetHint(2)
	sess.Select(context.Background(), 7)
	require.Equal(t, []int64{2}, sess.Payload())

	// Switching principals discards the previous selection and the
	// already-consumed hint.
	sess.Select(context.Background(), 8)
	require.Empty(t, sess.Payload())
}

func TestUserSessionCountBadge(t *testing.T) {
	api := newFakeAPI()
	api.perms = bookstorePermissions()
	api.userGrants[7] = Grants{DirectIDs: []int64{3}, InheritedIDs: []int64{1, 2}}
	notify := &recordingNotifier{}
	sess := NewUserSession(api, notify)
	require.NoError(t, sess.LoadCatalog(context.Background()))
	sess.Select(context.Background(), 7)

	require.Equal(t, 3, sess.SelectedCount())
	require.Equal(t, []int64{3}, sess.Payload())
}
