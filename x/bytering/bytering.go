package bytering

// Ring is a fixed-capacity byte FIFO backed by a power-of-two buffer.
// It is not safe for concurrent use; callers serialise access (the
// simulated backend holds its state lock around every call).
type Ring struct {
	buf  []byte
	mask uint32
	rd   uint32 // consumer index (monotonic)
	wr   uint32 // producer index (monotonic)
}

func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("bytering: size must be power of two >= 2")
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

func (r *Ring) Cap() int  { return len(r.buf) }
func (r *Ring) Len() int  { return int(r.wr - r.rd) }
func (r *Ring) Free() int { return len(r.buf) - r.Len() }

// Reset discards all buffered bytes.
func (r *Ring) Reset() { r.rd, r.wr = 0, 0 }

// WriteByte appends one byte, reporting false when full.
func (r *Ring) WriteByte(b byte) bool {
	if r.Free() == 0 {
		return false
	}
	r.buf[r.wr&r.mask] = b
	r.wr++
	return true
}

// Write appends up to len(p) bytes and returns how many fit.
func (r *Ring) Write(p []byte) int {
	n := r.Free()
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		r.buf[r.wr&r.mask] = p[i]
		r.wr++
	}
	return n
}

// Read pops up to len(p) bytes in FIFO order and returns the count.
func (r *Ring) Read(p []byte) int {
	n := r.Len()
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = r.buf[r.rd&r.mask]
		r.rd++
	}
	return n
}

// Bytes returns a copy of the buffered content in FIFO order without
// consuming it.
func (r *Ring) Bytes() []byte {
	out := make([]byte, r.Len())
	for i, idx := 0, r.rd; idx != r.wr; i, idx = i+1, idx+1 {
		out[i] = r.buf[idx&r.mask]
	}
	return out
}
