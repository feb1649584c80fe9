package slot

import "errors"

var (
	// ErrNotFound is returned when a key does not name a live slot.
	ErrNotFound = errors.New("slot: not found")
	// ErrCheckedOut is returned by Take when the slot's value is already out.
	ErrCheckedOut = errors.New("slot: value checked out")
	// ErrOccupied is returned by Replace when the slot already holds a value.
	ErrOccupied = errors.New("slot: already occupied")
)

type entry[V any] struct {
	value      V
	present    bool
	alive      bool
	generation uint32
}

// Store is a generational arena of optional values. A live slot is either
// present (holds a value) or empty: empty right after Reserve, or while its
// value is checked out by Take. Emptiness is the lock, Replace releases it.
//
// Not safe for concurrent use; callers serialize access.
type Store[V any] struct {
	entries  []entry[V]
	freeList []uint32
	live     int
}

func NewStore[V any]() *Store[V] {
	return &Store[V]{
		entries:  make([]entry[V], 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Reserve allocates an empty slot and returns its key.
func (s *Store[V]) Reserve() Key {
	s.live++
	if len(s.freeList) > 0 {
		idx := s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
		e := &s.entries[idx]
		e.alive = true
		return NewKey(idx, e.generation)
	}
	idx := uint32(len(s.entries))
	s.entries = append(s.entries, entry[V]{alive: true, generation: 1})
	return NewKey(idx, 1)
}

// Insert allocates a slot holding v.
func (s *Store[V]) Insert(v V) Key {
	k := s.Reserve()
	e := &s.entries[k.Index()]
	e.value = v
	e.present = true
	return k
}

func (s *Store[V]) lookup(k Key) *entry[V] {
	idx := k.Index()
	if int(idx) >= len(s.entries) {
		return nil
	}
	e := &s.entries[idx]
	if !e.alive || e.generation != k.Generation() {
		return nil
	}
	return e
}

// Contains reports whether k names a live slot, present or checked out.
func (s *Store[V]) Contains(k Key) bool {
	return s.lookup(k) != nil
}

// CheckedOut reports whether k is live but currently empty.
func (s *Store[V]) CheckedOut(k Key) bool {
	e := s.lookup(k)
	return e != nil && !e.present
}

// Get returns the value held at k without checking it out.
func (s *Store[V]) Get(k Key) (V, bool) {
	e := s.lookup(k)
	if e == nil || !e.present {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Take checks the value at k out, leaving the slot empty until Replace.
func (s *Store[V]) Take(k Key) (V, error) {
	var zero V
	e := s.lookup(k)
	if e == nil {
		return zero, ErrNotFound
	}
	if !e.present {
		return zero, ErrCheckedOut
	}
	v := e.value
	e.value = zero
	e.present = false
	return v, nil
}

// Replace restores a value into the empty slot at k.
func (s *Store[V]) Replace(k Key, v V) error {
	e := s.lookup(k)
	if e == nil {
		return ErrNotFound
	}
	if e.present {
		return ErrOccupied
	}
	e.value = v
	e.present = true
	return nil
}

// Remove frees the slot at k. The generation is bumped so k and any copy of
// it stop resolving. The held value, if any, is returned.
func (s *Store[V]) Remove(k Key) (V, bool) {
	var zero V
	e := s.lookup(k)
	if e == nil {
		return zero, false
	}
	v, had := e.value, e.present
	e.value = zero
	e.present = false
	e.alive = false
	e.generation++
	if e.generation == 0 {
		e.generation = 1
	}
	s.freeList = append(s.freeList, k.Index())
	s.live--
	return v, had
}

// Len returns the number of live slots.
func (s *Store[V]) Len() int {
	return s.live
}

// Each calls fn for every present value in index order.
func (s *Store[V]) Each(fn func(Key, V)) {
	for i := range s.entries {
		e := &s.entries[i]
		if e.alive && e.present {
			fn(NewKey(uint32(i), e.generation), e.value)
		}
	}
}
