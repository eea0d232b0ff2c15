package broadcast

// ring is a fixed-capacity circular buffer holding the replay history.
// Unlike a growable buffer, it overwrites the oldest entry when full: the
// replay contract is "most recent N", not "everything since start".
type ring[T any] struct {
	buf      []T
	head     int // oldest element
	count    int
	capacity int
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

func (r *ring[T]) push(v T) {
	tail := (r.head + r.count) % r.capacity
	r.buf[tail] = v
	if r.count == r.capacity {
		r.head = (r.head + 1) % r.capacity
	} else {
		r.count++
	}
}

// values returns the buffered elements oldest-first.
func (r *ring[T]) values() []T {
	out := make([]T, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.head+i)%r.capacity])
	}
	return out
}

func (r *ring[T]) len() int { return r.count }
