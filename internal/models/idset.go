package models

import "encoding/json"

// IDSet is an insertion-ordered set of entity ids. It serializes as a
// plain JSON array, so it can stand in for the id lists in persisted
// snapshots while keeping membership tests O(1) and adds idempotent.
type IDSet struct {
	ids   []string
	index map[string]struct{}
}

// NewIDSet builds a set from the given ids, dropping duplicates while
// preserving first-seen order.
func NewIDSet(ids ...string) IDSet {
	var s IDSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is in the set.
func (s *IDSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add inserts id if absent. It returns true if the set changed.
func (s *IDSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id if present. It returns true if the set changed.
func (s *IDSet) Remove(id string) bool {
	if !s.Has(id) {
		return false
	}
	delete(s.index, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// Values returns the ids in insertion order. The slice is a copy.
func (s *IDSet) Values() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of ids in the set.
func (s *IDSet) Len() int {
	return len(s.ids)
}

// Clone returns an independent copy of the set.
func (s *IDSet) Clone() IDSet {
	return NewIDSet(s.ids...)
}

// Equal reports whether both sets contain exactly the same ids,
// regardless of insertion order.
func (s *IDSet) Equal(other IDSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, id := range s.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a JSON array in insertion order.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

// UnmarshalJSON decodes a JSON array into the set, dropping duplicates.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
