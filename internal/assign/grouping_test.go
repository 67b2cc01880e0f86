package assign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupKey(t *testing.T) {
	cases := map[string]string{
		"create book":       "book",
		"books":             "book",
		"delete categories": "category",
		"manage user roles": "role",
		"  Edit  Supplier ": "supplier",
		"receipt":           "receipt",
	}
	for input, want := range cases {
		require.Equal(t, want, GroupKey(input), "GroupKey(%q)", input)
	}
}

func TestGroupKeyDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		require.Equal(t, GroupKey("create book"), GroupKey("create book"))
	}
}

func TestTitle(t *testing.T) {
	require.Equal(t, "Book", Title("book"))
	require.Equal(t, "Goods Received Note", Title("goods-received_note"))
	require.Equal(t, "", Title(""))
}

func TestBuildGroupsPartition(t *testing.T) {
	perms := []Permission{
		{ID: 3, Name: "create customer"},
		{ID: 2, Name: "edit book"},
		{ID: 1, Name: "create book"},
	}
	groups := BuildGroups(perms)

	require.Equal(t, []string{"book", "customer"}, groups.Keys())
	require.Equal(t, []Permission{{ID: 1, Name: "create book"}, {ID: 2, Name: "edit book"}}, groups.Members("book"))
	require.Equal(t, []Permission{{ID: 3, Name: "create customer"}}, groups.Members("customer"))

	// Exact partition: every permission in exactly one group.
	seen := map[int64]int{}
	for _, key := range groups.Keys() {
		for _, p := range groups.Members(key) {
			seen[p.ID]++
		}
	}
	require.Len(t, seen, len(perms))
	for id, n := range seen {
		require.Equal(t, 1, n, "permission %d appears %d times", id, n)
	}
}

func TestBuildGroupsIdempotent(t *testing.T) {
	perms := []Permission{
		{ID: 5, Name: "view reports"},
		{ID: 4, Name: "delete supplier"},
		{ID: 6, Name: "create supplier"},
	}
	first := BuildGroups(perms)
	second := BuildGroups(perms)
	require.Equal(t, first.Keys(), second.Keys())
	for _, key := range first.Keys() {
		require.Equal(t, first.Members(key), second.Members(key))
	}
	// Input order is preserved, the source list is never mutated.
	require.Equal(t, []Permission{
		{ID: 5, Name: "view reports"},
		{ID: 4, Name: "delete supplier"},
		{ID: 6, Name: "create supplier"},
	}, perms)
}

func TestBuildGroupsOrdering(t *testing.T) {
	perms := []Permission{
		{ID: 9, Name: "view book"},
		{ID: 2, Name: "create book"},
		{ID: 7, Name: "create book"},
	}
	groups := BuildGroups(perms)
	members := groups.Members("book")
	require.Equal(t, []int64{2, 7, 9}, []int64{members[0].ID, members[1].ID, members[2].ID})
}
