package slot

// Key encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on remove to invalidate stale keys.
// Generations start at 1, so the zero Key never names a live slot.
type Key uint64

func NewKey(index uint32, generation uint32) Key {
	return Key(uint64(generation)<<32 | uint64(index))
}

func (k Key) Index() uint32      { return uint32(k) }
func (k Key) Generation() uint32 { return uint32(k >> 32) }
func (k Key) IsZero() bool       { return k == 0 }
