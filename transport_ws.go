package voicebridge

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// wsTransport speaks the same event protocol over a websocket instead of a
// WebRTC data channel. Writes are serialized; gorilla allows only one
// concurrent writer.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func dialRealtimeWebSocket(ctx context.Context, endpoint, token string) (*wsTransport, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("OpenAI-Beta", "realtime=v1")
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing realtime websocket: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dialing realtime websocket: %w", err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// readLoop pushes inbound frames to onFrame until the connection dies, then
// reports the terminal error once.
func (t *wsTransport) readLoop(onFrame func([]byte), onClose func(error)) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			onClose(err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		onFrame(data)
	}
}
