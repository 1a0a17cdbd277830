// Package ws is a minimal WebSocket test client. It delegates directly to
// gorilla/websocket; the only logic here is header plumbing and shutdown.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Message is a single received frame.
type Message struct {
	Type int
	Data []byte
	At   time.Time
}

// Conn is an open WebSocket connection.
type Conn struct {
	ws *websocket.Conn
}

// Dial connects to the given ws:// or wss:// endpoint.
func Dial(ctx context.Context, endpoint string, headers map[string]string) (*Conn, error) {
	reqHeader := http.Header{}
	for k, v := range headers {
		reqHeader.Set(k, v)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, reqHeader)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	return &Conn{ws: conn}, nil
}

// SendText writes a text frame.
func (c *Conn) SendText(text string) error {
	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

// Receive reads the next frame, honoring the context deadline if set.
func (c *Conn) Receive(ctx context.Context) (Message, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetReadDeadline(deadline)
	}

	msgType, data, err := c.ws.ReadMessage()
	if err != nil {
		return Message{}, err
	}

	return Message{Type: msgType, Data: data, At: time.Now()}, nil
}

// Close sends a close frame and tears down the connection.
func (c *Conn) Close() error {
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.ws.Close()
}
