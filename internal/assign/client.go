package assign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Role is a principal of the role-assignment screen.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a principal of the user-assignment screen.
type User struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Grants is the canonical form of a principal's current permissions after
// the network-boundary normalization.
type Grants struct {
	DirectIDs    []int64
	InheritedIDs []int64
}

// API is the backend surface the assignment screens consume.
type API interface {
	Roles(ctx context.Context) ([]Role, error)
	Users(ctx context.Context) ([]User, error)
	Permissions(ctx context.Context) ([]Permission, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	UserPermissions(ctx context.Context, userID int64) (Grants, error)
	SaveRolePermissions(ctx context.Context, roleID int64, ids []int64) error
	SaveUserPermissions(ctx context.Context, userID int64, ids []int64) error
}

// ErrBadShape indicates a response body that matched none of the accepted
// shapes. Unrecognized payloads are rejected rather than guessed at.
var ErrBadShape = errors.New("assign: unrecognized response shape")

// Client is a typed HTTP client over the back-office REST API.
type Client struct {
	base string
	http *http.Client
}

// NewClient constructs a Client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: baseURL, http: httpClient}
}

// Roles fetches the role catalog.
func (c *Client) Roles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.getList(ctx, "/roles", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users fetches the user catalog.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.getList(ctx, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Permissions fetches the permission catalog.
func (c *Client) Permissions(ctx context.Context) ([]Permission, error) {
	var out []Permission
	if err := c.getList(ctx, "/permissions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RolePermissions fetches the permissions directly granted to a role.
func (c *Client) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var out []Permission
	if err := c.getList(ctx, fmt.Sprintf("/roles/%d/permissions", roleID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserPermissions fetches a user's current grants. The backend answers
// either with a bare permission array (treated as fully direct) or with
// explicit direct/inherited id lists; both normalize into Grants.
func (c *Client) UserPermissions(ctx context.Context, userID int64) (Grants, error) {
	body, err := c.get(ctx, fmt.Sprintf("/users/%d/permissions", userID))
	if err != nil {
		return Grants{}, err
	}
	return decodeGrants(body)
}

// SaveRolePermissions replaces a role's direct grant list.
func (c *Client) SaveRolePermissions(ctx context.Context, roleID int64, ids []int64) error {
	return c.post(ctx, fmt.Sprintf("/roles/%d/permissions", roleID), ids)
}

// SaveUserPermissions replaces a user's direct grant list.
func (c *Client) SaveUserPermissions(ctx context.Context, userID int64, ids []int64) error {
	return c.post(ctx, fmt.Sprintf("/users/%d/permissions", userID), ids)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, responseError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) getList(ctx context.Context, path string, target any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	return decodeList(body, target)
}

func (c *Client) post(ctx context.Context, path string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	payload, err := json.Marshal(map[string][]int64{"permission_ids": ids})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp.StatusCode, body)
	}
	return nil
}

// decodeList normalizes the two accepted list shapes, a bare JSON array
// or a {success, data} envelope, into target.
func decodeList(body []byte, target any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ErrBadShape
	}
	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, target)
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return fmt.Errorf("assign: decode envelope: %w", err)
		}
		if len(env.Data) == 0 {
			return ErrBadShape
		}
		return json.Unmarshal(env.Data, target)
	default:
		return ErrBadShape
	}
}

func decodeGrants(body []byte) (Grants, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Grants{}, ErrBadShape
	}
	if trimmed[0] == '[' {
		var perms []Permission
		if err := json.Unmarshal(trimmed, &perms); err != nil {
			return Grants{}, fmt.Errorf("assign: decode permissions: %w", err)
		}
		ids := make([]int64, 0, len(perms))
		for _, p := range perms {
			ids = append(ids, p.ID)
		}
		return Grants{DirectIDs: ids}, nil
	}
	if trimmed[0] != '{' {
		return Grants{}, ErrBadShape
	}
	var split struct {
		Direct    []int64         `json:"direct_permission_ids"`
		Inherited []int64         `json:"inherited_permission_ids"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &split); err != nil {
		return Grants{}, fmt.Errorf("assign: decode grants: %w", err)
	}
	if split.Direct != nil || split.Inherited != nil {
		return Grants{DirectIDs: split.Direct, InheritedIDs: split.Inherited}, nil
	}
	if len(split.Data) > 0 {
		return decodeGrants(split.Data)
	}
	return Grants{}, ErrBadShape
}

func responseError(status int, body []byte) error {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil {
		if problem.Detail != "" {
			return fmt.Errorf("assign: backend: %s", problem.Detail)
		}
		if problem.Title != "" {
			return fmt.Errorf("assign: backend: %s", problem.Title)
		}
	}
	return fmt.Errorf("assign: backend returned status %d", status)
}
