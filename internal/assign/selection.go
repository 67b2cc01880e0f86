package assign

import "sort"

// Selection tracks the directly granted permission ids on the
// role-assignment screen. Roles have no inherited grants, so every id is
// freely togglable.
type Selection struct {
	ids map[int64]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]struct{})}
}

// Toggle flips membership of id.
func (s *Selection) Toggle(id int64) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Has reports whether id is selected.
func (s *Selection) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Reset clears the selection.
func (s *Selection) Reset() {
	s.ids = make(map[int64]struct{})
}

// Replace overwrites the selection with the given ids.
func (s *Selection) Replace(ids []int64) {
	s.ids = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// ToggleGroup applies the per-group binary toggle: if every id in the
// group is already selected the whole group is deselected, otherwise the
// whole group is selected. Ids outside the group are never touched.
func (s *Selection) ToggleGroup(ids []int64) {
	if len(ids) == 0 {
		return
	}
	all := true
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			all = false
			break
		}
	}
	if all {
		for _, id := range ids {
			delete(s.ids, id)
		}
		return
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// ToggleAll applies the global binary toggle: if the selection already
// equals the full id set it is cleared, otherwise it becomes the full set.
func (s *Selection) ToggleAll(all []int64) {
	if len(s.ids) == len(all) {
		complete := true
		for _, id := range all {
			if _, ok := s.ids[id]; !ok {
				complete = false
				break
			}
		}
		if complete {
			s.Reset()
			return
		}
	}
	s.Replace(all)
}

// Payload returns the selected ids sorted ascending, ready for submission.
func (s *Selection) Payload() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UserSelection tracks direct grants for a user alongside the read-only
// set of grants inherited through role membership. Inherited ids are
// locked: they always render as checked, single toggles on them are
// no-ops, bulk operations skip them, and they are never part of the
// submission payload.
type UserSelection struct {
	selected  map[int64]struct{}
	inherited map[int64]struct{}
}

// NewUserSelection returns an empty user selection.
func NewUserSelection() *UserSelection {
	return &UserSelection{
		selected:  make(map[int64]struct{}),
		inherited: make(map[int64]struct{}),
	}
}

// Reset clears both the direct and inherited sets.
func (s *UserSelection) Reset() {
	s.selected = make(map[int64]struct{})
	s.inherited = make(map[int64]struct{})
}

// SetDirect overwrites the directly selected ids. Ids that are currently
// inherited are dropped so the two sets stay disjoint.
func (s *UserSelection) SetDirect(ids []int64) {
	s.selected = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.inherited[id]; ok {
			continue
		}
		s.selected[id] = struct{}{}
	}
}

// SetInherited overwrites the inherited ids. Any of them that were picked
// up as direct selections earlier are stripped, so a refetch that reveals
// new inheritance can never leak an inherited id into the payload.
func (s *UserSelection) SetInherited(ids []int64) {
	s.inherited = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s.inherited[id] = struct{}{}
		delete(s.selected, id)
	}
}

// Inherited reports whether id is granted through role membership.
func (s *UserSelection) Inherited(id int64) bool {
	_, ok := s.inherited[id]
	return ok
}

// Checked reports the effective checkbox state for id.
func (s *UserSelection) Checked(id int64) bool {
	if _, ok := s.inherited[id]; ok {
		return true
	}
	_, ok := s.selected[id]
	return ok
}

// Toggle flips membership of id unless it is inherited, in which case the
// call is a no-op: inherited grants are revoked by editing role
// membership, not from this screen.
func (s *UserSelection) Toggle(id int64) {
	if _, ok := s.inherited[id]; ok {
		return
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	s.selected[id] = struct{}{}
}

// ToggleGroup applies the per-group binary toggle restricted to the
// assignable subset of the group. A group with nothing assignable is a
// no-op.
func (s *UserSelection) ToggleGroup(ids []int64) {
	assignable := s.assignable(ids)
	if len(assignable) == 0 {
		return
	}
	all := true
	for _, id := range assignable {
		if _, ok := s.selected[id]; !ok {
			all = false
			break
		}
	}
	if all {
		for _, id := range assignable {
			delete(s.selected, id)
		}
		return
	}
	for _, id := range assignable {
		s.selected[id] = struct{}{}
	}
}

// ToggleAll applies the global binary toggle over the assignable subset:
// if every assignable id is selected the selection is cleared, otherwise
// it becomes exactly the assignable set.
func (s *UserSelection) ToggleAll(all []int64) {
	assignable := s.assignable(all)
	complete := true
	for _, id := range assignable {
		if _, ok := s.selected[id]; !ok {
			complete = false
			break
		}
	}
	if complete && len(assignable) > 0 {
		s.selected = make(map[int64]struct{})
		return
	}
	s.selected = make(map[int64]struct{}, len(assignable))
	for _, id := range assignable {
		s.selected[id] = struct{}{}
	}
}

// ApplyHint pre-checks a deep-linked permission id. An inherited id is
// ignored, inherited implies already granted.
func (s *UserSelection) ApplyHint(id int64) {
	if id <= 0 {
		return
	}
	if _, ok := s.inherited[id]; ok {
		return
	}
	s.selected[id] = struct{}{}
}

// Count returns the displayed selected-count badge value: the size of the
// union of direct and inherited grants.
func (s *UserSelection) Count() int {
	n := len(s.inherited)
	for id := range s.selected {
		if _, ok := s.inherited[id]; !ok {
			n++
		}
	}
	return n
}

// Payload returns the direct ids sorted ascending. Inherited ids are
// excluded even if the direct set somehow contains one; the backend
// re-derives inheritance from role membership.
func (s *UserSelection) Payload() []int64 {
	out := make([]int64, 0, len(s.selected))
	for id := range s.selected {
		if _, ok := s.inherited[id]; ok {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *UserSelection) assignable(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.inherited[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
