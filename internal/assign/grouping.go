// Package assign implements the permission-assignment screens' logic layer:
// grouping of the permission catalog for display, reconciliation of direct
// and role-inherited grants, and the session state driving both the
// role-permission and user-permission screens.
package assign

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Permission is a read-only catalog entry as served by the backend.
type Permission struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupKey derives the resource bucket for a permission display name.
// Names follow an "action resource" convention ("create book", "delete
// customer"); the resource is the grouping axis. A single-token name is
// its own resource. A trailing "s" is dropped ("ies" becomes "y") so
// "books" and "create book" land in the same bucket. The heuristic is
// deliberately naive and must
// stay byte-compatible with existing permission catalogs; irregular
// plurals and multi-word resources are known limitations.
func GroupKey(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	if len(fields) == 0 {
		return ""
	}
	base := fields[len(fields)-1]
	if strings.HasSuffix(base, "ies") {
		return strings.TrimSuffix(base, "ies") + "y"
	}
	return strings.TrimSuffix(base, "s")
}

// Title renders a group key as a display heading. Fragments are split on
// hyphens, underscores and whitespace, capitalized and joined with spaces.
func Title(key string) string {
	caser := cases.Title(language.English)
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, " ")
}

// Groups holds the derived partition of a permission catalog. It is a pure
// function of the input list: rebuilding from the same catalog yields an
// identical value, and the input slice is never mutated.
type Groups struct {
	keys  []string
	byKey map[string][]Permission
}

// BuildGroups partitions permissions by GroupKey. Within a group members
// are ordered by (name, id) ascending; keys are ordered lexicographically.
func BuildGroups(perms []Permission) Groups {
	byKey := make(map[string][]Permission)
	for _, p := range perms {
		key := GroupKey(p.Name)
		byKey[key] = append(byKey[key], p)
	}
	keys := make([]string, 0, len(byKey))
	for key, members := range byKey {
		sort.Slice(members, func(i, j int) bool {
			if members[i].Name != members[j].Name {
				return members[i].Name < members[j].Name
			}
			return members[i].ID < members[j].ID
		})
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return Groups{keys: keys, byKey: byKey}
}

// Keys returns the group keys in display order.
func (g Groups) Keys() []string {
	return g.keys
}

// Members returns the permissions of one group in display order.
func (g Groups) Members(key string) []Permission {
	return g.byKey[key]
}

// IDs returns the permission ids of one group.
func (g Groups) IDs(key string) []int64 {
	members := g.byKey[key]
	ids := make([]int64, 0, len(members))
	for _, p := range members {
		ids = append(ids, p.ID)
	}
	return ids
}

// AllIDs returns every permission id across all groups.
func (g Groups) AllIDs() []int64 {
	var ids []int64
	for _, key := range g.keys {
		ids = append(ids, g.IDs(key)...)
	}
	return ids
}

// Len returns the total number of permissions across all groups.
func (g Groups) Len() int {
	n := 0
	for _, members := range g.byKey {
		n += len(members)
	}
	return n
}
