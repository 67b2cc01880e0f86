package assign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(1)
	require.True(t, sel.Has(1))
	sel.Toggle(1)
	require.False(t, sel.Has(1))
}

func TestSelectionToggleGroupBinary(t *testing.T) {
	sel := NewSelection()
	sel.ToggleGroup([]int64{1, 2})
	require.Equal(t, []int64{1, 2}, sel.Payload())
	sel.ToggleGroup([]int64{1, 2})
	require.Empty(t, sel.Payload())
}

func TestSelectionToggleGroupPartialSelectsAll(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(1)
	sel.ToggleGroup([]int64{1, 2, 3})
	require.Equal(t, []int64{1, 2, 3}, sel.Payload())
}

func TestSelectionToggleGroupLeavesOthersAlone(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(99)
	sel.ToggleGroup([]int64{1, 2})
	require.Equal(t, []int64{1, 2, 99}, sel.Payload())
	sel.ToggleGroup([]int64{1, 2})
	require.Equal(t, []int64{99}, sel.Payload())
}

func TestSelectionToggleAllStrictToggle(t *testing.T) {
	all := []int64{1, 2, 3}
	sel := NewSelection()
	sel.Toggle(2)
	sel.ToggleAll(all)
	require.Equal(t, []int64{1, 2, 3}, sel.Payload())
	sel.ToggleAll(all)
	require.Empty(t, sel.Payload())
	// Double application from any state returns to the original set size.
	sel.Toggle(1)
	before := sel.Payload()
	sel.ToggleAll(all)
	sel.ToggleAll(all)
	require.Equal(t, before, sel.Payload())
}

func TestUserSelectionInheritedLocked(t *testing.T) {
	sel := NewUserSelection()
	sel.SetInherited([]int64{1})

	sel.Toggle(1)
	require.Empty(t, sel.Payload(), "toggling an inherited id must be a no-op")
	require.True(t, sel.Checked(1), "inherited ids always render checked")

	sel.Toggle(2)
	require.Equal(t, []int64{2}, sel.Payload())
}

func TestUserSelectionBulkSkipsInherited(t *testing.T) {
	sel := NewUserSelection()
	sel.SetInherited([]int64{1})

	sel.ToggleGroup([]int64{1, 2, 3})
	require.Equal(t, []int64{2, 3}, sel.Payload())
	sel.ToggleGroup([]int64{1, 2, 3})
	require.Empty(t, sel.Payload())

	// A group whose members are all inherited is a no-op.
	sel.Toggle(5)
	sel.ToggleGroup([]int64{1})
	require.Equal(t, []int64{5}, sel.Payload())
}

func TestUserSelectionToggleAllAssignableOnly(t *testing.T) {
	sel := NewUserSelection()
	sel.SetInherited([]int64{2})
	all := []int64{1, 2, 3}

	sel.ToggleAll(all)
	require.Equal(t, []int64{1, 3}, sel.Payload())
	sel.ToggleAll(all)
	require.Empty(t, sel.Payload())
}

func TestUserSelectionDisjointInvariant(t *testing.T) {
	sel := NewUserSelection()
	sel.SetInherited([]int64{2, 4})
	ops := []func(){
		func() { sel.Toggle(1) },
		func() { sel.Toggle(2) },
		func() { sel.ToggleGroup([]int64{2, 3, 4}) },
		func() { sel.ToggleAll([]int64{1, 2, 3, 4, 5}) },
		func() { sel.Toggle(4) },
		func() { sel.ToggleAll([]int64{1, 2, 3, 4, 5}) },
	}
	for _, op := range ops {
		op()
		for _, id := range sel.Payload() {
			require.False(t, sel.Inherited(id), "payload leaked inherited id %d", id)
		}
	}
}

func TestUserSelectionRefetchStripsInherited(t *testing.T) {
	sel := NewUserSelection()
	sel.Toggle(7)
	// A refetch reveals id 7 is actually inherited.
	sel.SetInherited([]int64{7})
	require.Empty(t, sel.Payload())
	require.Equal(t, 1, sel.Count())
}

func TestUserSelectionCountDeduplicates(t *testing.T) {
	sel := NewUserSelection()
	sel.SetInherited([]int64{1, 2})
	sel.Toggle(3)
	require.Equal(t, 3, sel.Count())
}

func TestUserSelectionApplyHint(t *testing.T) {
	sel := NewUserSelection()
	sel.SetInherited([]int64{1})

	sel.ApplyHint(1)
	require.Empty(t, sel.Payload(), "inherited hint must be ignored")

	sel.ApplyHint(2)
	require.Equal(t, []int64{2}, sel.Payload())
	sel.ApplyHint(2)
	require.Equal(t, []int64{2}, sel.Payload())
}
