package xpool

// initialRingSize 队列初始容量，按需翻倍增长到上限。
const initialRingSize = 64

// ring FIFO 环形缓冲区，容量上限为 limit。非并发安全，由 Pool.mu 保护。
type ring[T any] struct {
	buf   []T
	head  int
	n     int
	limit int
}

func newRing[T any](limit int) ring[T] {
	return ring[T]{buf: make([]T, min(limit, initialRingSize)), limit: limit}
}

func (r *ring[T]) len() int { return r.n }

// push 追加到队尾，已达上限时返回 false 且不修改队列。
func (r *ring[T]) push(v T) bool {
	if r.n >= r.limit {
		return false
	}
	if r.n == len(r.buf) {
		r.grow()
	}
	r.buf[(r.head+r.n)%len(r.buf)] = v
	r.n++
	return true
}

// pop 取出队首。
func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.n--
	return v, true
}

// reset 清空队列并返回清空前的长度。
func (r *ring[T]) reset() int {
	n := r.n
	clear(r.buf)
	r.head, r.n = 0, 0
	return n
}

func (r *ring[T]) grow() {
	size := min(max(2*len(r.buf), 1), r.limit)
	buf := make([]T, size)
	for i := 0; i < r.n; i++ {
		buf[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.buf = buf
	r.head = 0
}
