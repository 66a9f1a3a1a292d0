package game

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 20 * time.Second
	pongWait     = time.Minute
	readLimit    = 4096
	closeTimeout = 20 * time.Second
)

type websocketSession struct {
	socket *websocket.Conn
}

func NewWebsocketSession(conn *websocket.Conn) *websocketSession {
	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return &websocketSession{socket: conn}
}

func (ws *websocketSession) Write(data []byte) error {
	ws.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.socket.WriteMessage(websocket.TextMessage, data)
}

func (ws *websocketSession) Read() ([]byte, error) {
	_, p, err := ws.socket.ReadMessage()
	return p, err
}

func (ws *websocketSession) Ping() error {
	ws.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.socket.WriteMessage(websocket.PingMessage, nil)
}

func (ws *websocketSession) Close(reason string) {
	ws.socket.SetWriteDeadline(time.Now().Add(closeTimeout))
	ws.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	ws.socket.Close()
}
