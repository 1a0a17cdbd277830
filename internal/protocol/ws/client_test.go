package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConn_EchoRoundTrip(t *testing.T) {
	server := newEchoWSServer(t)
	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, err := Dial(context.Background(), endpoint, map[string]string{"X-Test": "1"})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SendText("ping"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, err := conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msg.Type)
	assert.Equal(t, "ping", string(msg.Data))
}

func TestDial_Failure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/nope", nil)
	assert.Error(t, err)
}
