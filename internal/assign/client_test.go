package assign

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/permissions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":1,"name":"create book"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	perms, err := client.Permissions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Permission{{ID: 1, Name: "create book"}}, perms)
}

func TestClientDecodesBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":2,"name":"edit book"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	perms, err := client.Permissions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Permission{{ID: 2, Name: "edit book"}}, perms)
}

func TestClientRejectsUnknownShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"surprise"`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Permissions(context.Background())
	require.ErrorIs(t, err, ErrBadShape)
}

func TestClientUserPermissionsBareArrayIsAllDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/7/permissions", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"name":"create book"},{"id":3,"name":"create customer"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	grants, err := client.UserPermissions(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3}, grants.DirectIDs)
	require.Empty(t, grants.InheritedIDs)
}

func TestClientUserPermissionsSplitShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"direct_permission_ids":[2],"inherited_permission_ids":[1]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	grants, err := client.UserPermissions(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, grants.DirectIDs)
	require.Equal(t, []int64{1}, grants.InheritedIDs)
}

func TestClientUserPermissionsEnvelopedSplitShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"direct_permission_ids":[5],"inherited_permission_ids":[]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	grants, err := client.UserPermissions(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []int64{5}, grants.DirectIDs)
}

func TestClientSavePostsPermissionIDs(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/roles/10/permissions", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	require.NoError(t, client.SaveRolePermissions(context.Background(), 10, []int64{1, 2}))
	require.JSONEq(t, `{"permission_ids":[1,2]}`, body)
}

func TestClientSurfacesBackendDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"title":"Duplicate","status":409,"detail":"permission already granted"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.SaveUserPermissions(context.Background(), 7, []int64{1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "permission already granted")
}
