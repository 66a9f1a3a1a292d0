package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const subscribeWait = 30 * time.Second

type GameHandler struct {
	lobby    *Lobby
	upgrader websocket.Upgrader
}

func NewGameHandler(lobby *Lobby) *GameHandler {
	return &GameHandler{
		lobby: lobby,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin gating happens in the router's middleware.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *GameHandler) CreateRoomHandler(ctx *gin.Context) {
	var body struct {
		Settings Settings `json:"settings"`
	}
	// An empty body means all-defaults; anything unparseable does too.
	if err := ctx.ShouldBindJSON(&body); err != nil {
		body.Settings = Settings{}
	}

	created, err := h.lobby.CreateRoom(ctx.Request.Context(), body.Settings)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, created)
}

func (h *GameHandler) JoinRoomHandler(ctx *gin.Context) {
	roomID := ctx.Param("id")

	var body struct {
		PlayerName string `json:"playerName"`
		Avatar     string `json:"avatar"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-request"})
		return
	}

	name := strings.TrimSpace(body.PlayerName)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-player-name"})
		return
	}

	joined, err := h.lobby.JoinRoom(ctx.Request.Context(), roomID, name, body.Avatar)
	if err != nil {
		status, message := joinFailure(err)
		ctx.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}
	ctx.JSON(http.StatusOK, joined)
}

func joinFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound, "Room not found"
	case errors.Is(err, ErrRoomFull):
		return http.StatusBadRequest, "Room is full"
	case errors.Is(err, ErrGameInProgress):
		return http.StatusBadRequest, "Game already in progress"
	default:
		return http.StatusInternalServerError, "unknown-error"
	}
}

func (h *GameHandler) RoomInfoHandler(ctx *gin.Context) {
	info, err := h.lobby.RoomInfoByCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	ctx.JSON(http.StatusOK, info)
}

// SocketHandler upgrades the connection and waits for the client's
// join_room subscription before handing the session to the room. After a
// successful attach the room's pumps own the socket.
func (h *GameHandler) SocketHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	session := NewWebsocketSession(conn)
	conn.SetReadDeadline(time.Now().Add(subscribeWait))

	payload, ok := readSubscription(session)
	if !ok {
		session.Close("expected join_room")
		return
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))

	if err := h.lobby.AttachSession(ctx.Request.Context(), payload.RoomID, payload.PlayerID, session); err != nil {
		session.Write(makeEventError("Invalid room or player").marshal())
		session.Close(err.Error())
	}
}

func readSubscription(session NetworkSession) (joinRoomPayload, bool) {
	data, err := session.Read()
	if err != nil {
		return joinRoomPayload{}, false
	}

	var event clientEvent
	if err := json.Unmarshal(data, &event); err != nil || event.Type != EventJoinRoom {
		return joinRoomPayload{}, false
	}

	var payload joinRoomPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil || payload.RoomID == "" || payload.PlayerID == "" {
		return joinRoomPayload{}, false
	}
	return payload, true
}
