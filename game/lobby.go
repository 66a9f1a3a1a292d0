package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Vaibhav1992/Memelord/filter"
	"github.com/Vaibhav1992/Memelord/metrics"
)

const (
	tickInterval  = time.Second
	pingInterval  = 30 * time.Second
	sweepInterval = time.Minute
	idleThreshold = 15 * time.Minute
)

// Lobby is the registry of rooms and players. A single LobbyActor goroutine
// owns every map below; the exported methods talk to it over request
// channels, so no locks are involved anywhere.
type Lobby struct {
	rooms     map[string]*Room
	descs     map[string]roomDescription
	codeIndex map[string]string // CODE -> room id, active rooms only
	registry  map[string]string // player id -> room id

	createReqs     chan createRoomRequest
	joinReqs       chan joinRoomRequest
	infoReqs       chan roomInfoRequest
	attachReqs     chan lobbyAttachRequest
	descUpdates    chan roomDescription
	removeRoomChan chan string
	playerEvents   chan playerEvent

	memeSource    MemeSource
	profanity     *filter.Filter
	tickerCreator PeriodicTickerChannelCreator
}

type CreatedRoom struct {
	RoomID string `json:"roomId"`
	Code   string `json:"roomCode"`
}

type JoinedRoom struct {
	PlayerID string       `json:"playerId"`
	State    RoomSnapshot `json:"roomState"`
}

type createRoomRequest struct {
	settings Settings
	reply    chan CreatedRoom
}

type joinRoomRequest struct {
	roomID string
	name   string
	avatar string
	reply  chan joinReply
}

type roomInfoRequest struct {
	code  string
	reply chan roomInfoReply
}

type roomInfoReply struct {
	info RoomInfo
	err  error
}

type lobbyAttachRequest struct {
	roomID   string
	playerID string
	session  NetworkSession
	reply    chan error
}

type playerEvent struct {
	register bool
	playerID string
	roomID   string
}

func NewLobby(source MemeSource, profanity *filter.Filter, tickerCreator PeriodicTickerChannelCreator) *Lobby {
	return &Lobby{
		rooms:     make(map[string]*Room),
		descs:     make(map[string]roomDescription),
		codeIndex: make(map[string]string),
		registry:  make(map[string]string),

		createReqs:     make(chan createRoomRequest, 32),
		joinReqs:       make(chan joinRoomRequest, 64),
		infoReqs:       make(chan roomInfoRequest, 64),
		attachReqs:     make(chan lobbyAttachRequest, 64),
		descUpdates:    make(chan roomDescription, 256),
		removeRoomChan: make(chan string, 32),
		playerEvents:   make(chan playerEvent, 256),

		memeSource:    source,
		profanity:     profanity,
		tickerCreator: tickerCreator,
	}
}

// roomParent implementation; never blocks the calling room goroutine on
// paths where the lobby could be blocked on that same room.

func (l *Lobby) RequestUpdateDescription(desc roomDescription) {
	select {
	case l.descUpdates <- desc:
	default:
	}
}

func (l *Lobby) RequestRemoveRoom(roomID string) {
	l.removeRoomChan <- roomID
}

func (l *Lobby) RequestRegisterPlayer(playerID, roomID string) {
	l.playerEvents <- playerEvent{register: true, playerID: playerID, roomID: roomID}
}

func (l *Lobby) RequestUnregisterPlayer(playerID string) {
	l.playerEvents <- playerEvent{playerID: playerID}
}

func (l *Lobby) CreateRoom(ctx context.Context, settings Settings) (CreatedRoom, error) {
	req := createRoomRequest{settings: settings, reply: make(chan CreatedRoom, 1)}
	select {
	case l.createReqs <- req:
	case <-ctx.Done():
		return CreatedRoom{}, ctx.Err()
	}
	select {
	case created := <-req.reply:
		return created, nil
	case <-ctx.Done():
		return CreatedRoom{}, ctx.Err()
	}
}

func (l *Lobby) JoinRoom(ctx context.Context, roomID, name, avatar string) (JoinedRoom, error) {
	req := joinRoomRequest{roomID: roomID, name: name, avatar: avatar, reply: make(chan joinReply, 1)}
	select {
	case l.joinReqs <- req:
	case <-ctx.Done():
		return JoinedRoom{}, ctx.Err()
	}
	select {
	case reply := <-req.reply:
		if reply.err != nil {
			return JoinedRoom{}, reply.err
		}
		return JoinedRoom{PlayerID: reply.playerID, State: reply.snapshot}, nil
	case <-ctx.Done():
		return JoinedRoom{}, ctx.Err()
	}
}

func (l *Lobby) RoomInfoByCode(ctx context.Context, code string) (RoomInfo, error) {
	req := roomInfoRequest{code: code, reply: make(chan roomInfoReply, 1)}
	select {
	case l.infoReqs <- req:
	case <-ctx.Done():
		return RoomInfo{}, ctx.Err()
	}
	select {
	case reply := <-req.reply:
		return reply.info, reply.err
	case <-ctx.Done():
		return RoomInfo{}, ctx.Err()
	}
}

// AttachSession validates the claimed (room, player) pair against the
// player registry before the socket is allowed to subscribe; the room
// re-checks membership as the authority.
func (l *Lobby) AttachSession(ctx context.Context, roomID, playerID string, session NetworkSession) error {
	req := lobbyAttachRequest{roomID: roomID, playerID: playerID, session: session, reply: make(chan error, 1)}
	select {
	case l.attachReqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lobby) LobbyActor(started chan struct{}) {
	ticker := l.tickerCreator.Create(tickInterval)
	pingTicker := l.tickerCreator.Create(pingInterval)
	sweepTicker := l.tickerCreator.Create(sweepInterval)

	close(started)

	for {
		select {
		case now := <-ticker:
			for _, r := range l.rooms {
				r.Tick(now)
			}
		case <-pingTicker:
			for _, r := range l.rooms {
				r.PingPlayers()
			}
		case now := <-sweepTicker:
			l.sweepIdleRooms(now)

		case req := <-l.createReqs:
			l.handleCreateRoom(req)
		case req := <-l.joinReqs:
			l.handleJoinRoom(req)
		case req := <-l.infoReqs:
			l.handleRoomInfo(req)
		case req := <-l.attachReqs:
			l.handleAttach(req)

		case desc := <-l.descUpdates:
			l.descs[desc.id] = desc
		case roomID := <-l.removeRoomChan:
			l.handleRemoveRoom(roomID)
		case ev := <-l.playerEvents:
			l.handlePlayerEvent(ev)
		}
	}
}

func (l *Lobby) handleCreateRoom(req createRoomRequest) {
	code := newRoomCode(l.codeIndex)
	room := NewRoom(uuid.NewString(), code, req.settings, l.memeSource, l.profanity)
	room.SetParent(l)

	l.rooms[room.id] = room
	l.codeIndex[code] = room.id
	l.descs[room.id] = room.description()

	go room.GameLoop()
	metrics.RoomsActive.Inc()
	log.Info().Str("room", code).Str("id", room.id).Msg("room created")

	req.reply <- CreatedRoom{RoomID: room.id, Code: code}
}

func (l *Lobby) handleJoinRoom(req joinRoomRequest) {
	room, ok := l.rooms[req.roomID]
	if !ok {
		req.reply <- joinReply{err: ErrRoomNotFound}
		return
	}
	if err := room.RequestJoin(joinRequest{name: req.name, avatar: req.avatar, reply: req.reply}); err != nil {
		req.reply <- joinReply{err: err}
	}
}

func (l *Lobby) handleRoomInfo(req roomInfoRequest) {
	roomID, ok := l.codeIndex[normalizeCode(req.code)]
	if !ok {
		req.reply <- roomInfoReply{err: ErrRoomNotFound}
		return
	}
	desc := l.descs[roomID]
	req.reply <- roomInfoReply{info: RoomInfo{
		RoomID:      desc.id,
		Code:        desc.code,
		PlayerCount: desc.playerCount,
		MaxPlayers:  desc.maxPlayers,
		GamePhase:   desc.phase,
	}}
}

func (l *Lobby) handleAttach(req lobbyAttachRequest) {
	if l.registry[req.playerID] != req.roomID {
		req.reply <- ErrInvalidPlayer
		return
	}
	room, ok := l.rooms[req.roomID]
	if !ok {
		req.reply <- ErrRoomNotFound
		return
	}
	if err := room.RequestAttach(attachRequest{playerID: req.playerID, session: req.session, reply: req.reply}); err != nil {
		req.reply <- err
	}
}

func (l *Lobby) handleRemoveRoom(roomID string) {
	room, ok := l.rooms[roomID]
	if !ok {
		return
	}
	room.Stop()

	delete(l.rooms, roomID)
	delete(l.descs, roomID)
	delete(l.codeIndex, room.code)

	for playerID, id := range l.registry {
		if id == roomID {
			delete(l.registry, playerID)
			metrics.PlayersRegistered.Dec()
		}
	}

	metrics.RoomsActive.Dec()
	log.Info().Str("room", room.code).Msg("room removed")
}

func (l *Lobby) sweepIdleRooms(now time.Time) {
	for roomID, desc := range l.descs {
		if now.Sub(desc.lastActivity) <= idleThreshold {
			continue
		}
		log.Info().Str("room", desc.code).Stringer("phase", desc.phase).Msg("sweeping idle room")
		l.handleRemoveRoom(roomID)
		metrics.RoomsSwept.Inc()
	}
}

func (l *Lobby) handlePlayerEvent(ev playerEvent) {
	if ev.register {
		l.registry[ev.playerID] = ev.roomID
		metrics.PlayersRegistered.Inc()
		return
	}
	if _, ok := l.registry[ev.playerID]; ok {
		delete(l.registry, ev.playerID)
		metrics.PlayersRegistered.Dec()
	}
}
