package audio

import "sync"

// PCMBuffer is a bounded byte buffer between the RTP decoder and the audio
// player. Writes past capacity drop the oldest audio first; reads block until
// data arrives.
type PCMBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []byte
	cap  int
}

func NewPCMBuffer(capacity int) *PCMBuffer {
	b := &PCMBuffer{
		buf: make([]byte, 0, capacity),
		cap: capacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *PCMBuffer) Write(data []byte) (dropped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if overflow := len(b.buf) + len(data) - b.cap; overflow > 0 {
		if overflow > len(b.buf) {
			overflow = len(b.buf)
		}
		b.buf = b.buf[overflow:]
		dropped = overflow
	}
	b.buf = append(b.buf, data...)
	b.cond.Signal()
	return dropped
}

func (b *PCMBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.buf) == 0 {
		b.cond.Wait()
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

func (b *PCMBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}
