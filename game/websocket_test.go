package game

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestWebsocketSession(t *testing.T) {
	t.Parallel()

	newWsServer := func(handler func(*websocket.Conn)) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			upgrader := websocket.Upgrader{
				CheckOrigin: func(*http.Request) bool { return true },
			}
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			handler(conn)
		}))
	}

	dial := func(t *testing.T, server *httptest.Server) *websocket.Conn {
		t.Helper()
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		assert.NoError(t, err)
		return conn
	}

	t.Run("read and write text frames", func(t *testing.T) {
		t.Parallel()

		server := newWsServer(func(conn *websocket.Conn) {
			defer conn.Close()
			session := NewWebsocketSession(conn)

			data, err := session.Read()
			if err != nil {
				return
			}
			session.Write(data)
		})
		defer server.Close()

		conn := dial(t, server)
		defer conn.Close()

		payload := []byte(`{"type":"start_game"}`)
		conn.WriteMessage(websocket.TextMessage, payload)

		kind, echoed, err := conn.ReadMessage()
		assert.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, kind)
		assert.Equal(t, payload, echoed)
	})

	t.Run("ping", func(t *testing.T) {
		t.Parallel()

		done := make(chan struct{})
		server := newWsServer(func(conn *websocket.Conn) {
			defer conn.Close()
			session := NewWebsocketSession(conn)
			session.Ping()
			<-done
		})
		defer server.Close()

		conn := dial(t, server)
		defer conn.Close()

		time.Sleep(50 * time.Millisecond)
		close(done)
	})

	t.Run("close ends the peer's reads", func(t *testing.T) {
		t.Parallel()

		server := newWsServer(func(conn *websocket.Conn) {
			session := NewWebsocketSession(conn)
			time.Sleep(50 * time.Millisecond)
			session.Close("done")
		})
		defer server.Close()

		conn := dial(t, server)
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, _, err := conn.ReadMessage()
		assert.Error(t, err)
	})
}
