package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryRBACRepo struct {
	roles      map[int64]Role
	users      map[int64]User
	perms      map[int64]Permission
	rolePerms  map[int64][]int64
	userPerms  map[int64][]int64
	userRoles  map[int64][]int64
	hashes     map[int64]string
	nextUserID int64
}

func newMemoryRBACRepo() *memoryRBACRepo {
	return &memoryRBACRepo{
		roles:     make(map[int64]Role),
		users:     make(map[int64]User),
		perms:     make(map[int64]Permission),
		rolePerms: make(map[int64][]int64),
		userPerms: make(map[int64][]int64),
		userRoles: make(map[int64][]int64),
		hashes:    make(map[int64]string),
	}
}

func (r *memoryRBACRepo) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRBACRepo) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryRBACRepo) ListPermissions(ctx context.Context) ([]Permission, error) {
	var out []Permission
	for _, p := range r.perms {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRBACRepo) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var out []Permission
	for _, pid := range r.rolePerms[roleID] {
		out = append(out, r.perms[pid])
	}
	return out, nil
}

func (r *memoryRBACRepo) ReplaceRolePermissions(ctx context.Context, roleID int64, ids []int64) error {
	if _, ok := r.roles[roleID]; !ok {
		return ErrNotFound
	}
	r.rolePerms[roleID] = ids
	return nil
}

func (r *memoryRBACRepo) UserDirectPermissionIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.userPerms[userID], nil
}

func (r *memoryRBACRepo) UserInheritedPermissionIDs(ctx context.Context, userID int64) ([]int64, error) {
	seen := make(map[int64]struct{})
	var out []int64
	for _, roleID := range r.userRoles[userID] {
		for _, pid := range r.rolePerms[roleID] {
			if _, ok := seen[pid]; ok {
				continue
			}
			seen[pid] = struct{}{}
			out = append(out, pid)
		}
	}
	return out, nil
}

func (r *memoryRBACRepo) ReplaceUserPermissions(ctx context.Context, userID int64, ids []int64) error {
	if _, ok := r.users[userID]; !ok {
		return ErrNotFound
	}
	r.userPerms[userID] = ids
	return nil
}

func (r *memoryRBACRepo) EffectivePermissionNames(ctx context.Context, userID int64) ([]string, error) {
	seen := make(map[int64]struct{})
	for _, pid := range r.userPerms[userID] {
		seen[pid] = struct{}{}
	}
	inherited, _ := r.UserInheritedPermissionIDs(ctx, userID)
	for _, pid := range inherited {
		seen[pid] = struct{}{}
	}
	var names []string
	for pid := range seen {
		names = append(names, r.perms[pid].Name)
	}
	return names, nil
}

func (r *memoryRBACRepo) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	r.nextUserID++
	u := User{ID: r.nextUserID, Name: name, Email: email, IsActive: true, Roles: []string{}, CreatedAt: time.Now()}
	r.users[u.ID] = u
	r.hashes[u.ID] = passwordHash
	return u, nil
}

func seedRepo() *memoryRBACRepo {
	repo := newMemoryRBACRepo()
	repo.perms[1] = Permission{ID: 1, Name: "create book"}
	repo.perms[2] = Permission{ID: 2, Name: "edit book"}
	repo.perms[3] = Permission{ID: 3, Name: "create customer"}
	repo.roles[10] = Role{ID: 10, Name: "cashier"}
	repo.users[7] = User{ID: 7, Name: "Ana", Email: "ana@example.com"}
	return repo
}

func TestUserGrantsSplitsDirectAndInherited(t *testing.T) {
	repo := seedRepo()
	repo.rolePerms[10] = []int64{1}
	repo.userRoles[7] = []int64{10}
	repo.userPerms[7] = []int64{3}
	svc := NewService(repo)

	grants, err := svc.UserGrants(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []int64{3}, grants.DirectIDs)
	require.Equal(t, []int64{1}, grants.InheritedIDs)
}

func TestUserGrantsEmptySetsAreNotNil(t *testing.T) {
	repo := seedRepo()
	svc := NewService(repo)

	grants, err := svc.UserGrants(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, grants.DirectIDs)
	require.NotNil(t, grants.InheritedIDs)
}

func TestReplaceRolePermissionsDeduplicates(t *testing.T) {
	repo := seedRepo()
	svc := NewService(repo)

	require.NoError(t, svc.ReplaceRolePermissions(context.Background(), 10, []int64{1, 2, 1}))
	require.Equal(t, []int64{1, 2}, repo.rolePerms[10])
}

func TestReplaceRolePermissionsUnknownRole(t *testing.T) {
	repo := seedRepo()
	svc := NewService(repo)
	require.ErrorIs(t, svc.ReplaceRolePermissions(context.Background(), 99, []int64{1}), ErrNotFound)
}

func TestEffectivePermissionsUnion(t *testing.T) {
	repo := seedRepo()
	repo.rolePerms[10] = []int64{1, 2}
	repo.userRoles[7] = []int64{10}
	repo.userPerms[7] = []int64{2, 3}
	svc := NewService(repo)

	names, err := svc.EffectivePermissions(context.Background(), 7)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"create book", "edit book", "create customer"}, names)
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := seedRepo()
	svc := NewService(repo)

	user, err := svc.CreateUser(context.Background(), "Luis", "Luis@Example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "luis@example.com", user.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[user.ID]), []byte("correct horse")))
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	repo := seedRepo()
	svc := NewService(repo)
	_, err := svc.CreateUser(context.Background(), "Luis", "luis@example.com", "short")
	require.Error(t, err)
}
