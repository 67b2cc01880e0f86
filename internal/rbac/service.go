package rbac

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Service orchestrates RBAC operations.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// ListUsers returns all users with their role names.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// RolePermissions returns the permissions directly granted to a role.
func (s *Service) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	if roleID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.RolePermissions(ctx, roleID)
}

// ReplaceRolePermissions stores the submitted grant list verbatim.
func (s *Service) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if roleID <= 0 {
		return ErrNotFound
	}
	return s.repo.ReplaceRolePermissions(ctx, roleID, dedupe(permissionIDs))
}

// UserGrants returns the split direct/inherited view the user-permission
// screen renders. Inherited grants are re-derived from role membership on
// every call.
func (s *Service) UserGrants(ctx context.Context, userID int64) (UserGrants, error) {
	if userID <= 0 {
		return UserGrants{}, ErrNotFound
	}
	direct, err := s.repo.UserDirectPermissionIDs(ctx, userID)
	if err != nil {
		return UserGrants{}, err
	}
	inherited, err := s.repo.UserInheritedPermissionIDs(ctx, userID)
	if err != nil {
		return UserGrants{}, err
	}
	if direct == nil {
		direct = []int64{}
	}
	if inherited == nil {
		inherited = []int64{}
	}
	return UserGrants{DirectIDs: direct, InheritedIDs: inherited}, nil
}

// ReplaceUserPermissions stores the submitted direct grant list. Inherited
// grants never pass through here; they change only via role membership.
func (s *Service) ReplaceUserPermissions(ctx context.Context, userID int64, permissionIDs []int64) error {
	if userID <= 0 {
		return ErrNotFound
	}
	return s.repo.ReplaceUserPermissions(ctx, userID, dedupe(permissionIDs))
}

// EffectivePermissions returns the union of a user's direct and
// role-inherited permission names.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.EffectivePermissionNames(ctx, userID)
}

// CreateUser registers an account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return User{}, errors.New("rbac: name and email are required")
	}
	if len(password) < 8 {
		return User{}, errors.New("rbac: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, name, email, string(hash))
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
