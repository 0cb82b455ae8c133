package voicebridge

import "github.com/pion/webrtc/v4"

// Transport selects how the session reaches the realtime endpoint. WebRTC is
// the voice path; WebSocket serves headless text/tool sessions where no
// audio device is involved.
type Transport int

const (
	TransportWebRTC Transport = iota
	TransportWebSocket
)

func (t Transport) String() string {
	switch t {
	case TransportWebRTC:
		return "webrtc"
	case TransportWebSocket:
		return "websocket"
	}
	return "unknown"
}

// frameSender is the seam between protocol logic and the wire. Satisfied by
// the pion data channel, the websocket transport, and test fakes.
type frameSender interface {
	Send(data []byte) error
}

type dataChannelSender struct {
	dc *webrtc.DataChannel
}

func (s *dataChannelSender) Send(data []byte) error {
	return s.dc.Send(data)
}
