package audio

import "sync/atomic"

// Gate sits between the microphone reader and the outbound WebRTC track.
// While closed, captured frames are dropped on the floor; the capture device
// and the track itself are left running so reopening is instantaneous.
type Gate struct {
	open atomic.Bool
}

func NewGate(open bool) *Gate {
	g := new(Gate)
	g.open.Store(open)
	return g
}

func (g *Gate) Open()  { g.open.Store(true) }
func (g *Gate) Close() { g.open.Store(false) }

func (g *Gate) IsOpen() bool {
	return g.open.Load()
}
