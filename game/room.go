package game

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Vaibhav1992/Memelord/filter"
)

func NewRoom(id, code string, settings Settings, source MemeSource, profanity *filter.Filter) *Room {
	now := time.Now()
	return &Room{
		id:       id,
		code:     code,
		settings: settings.withDefaults(),

		phase:       PhaseWaiting,
		usedMemeIDs: make(map[string]bool),
		votes:       make(map[string]Vote),
		scores:      make(map[string]int),

		createdAt:    now,
		lastActivity: now,

		memeSource: source,
		profanity:  profanity,

		inbox:          make(chan packetEnvelope, 1024),
		joinRequests:   make(chan joinRequest, 32),
		attachRequests: make(chan attachRequest, 32),
		removals:       make(chan removalRequest, 64),
		ticks:          make(chan time.Time, 24),
		pingPlayers:    make(chan struct{}, 4),
		shutdown:       make(chan struct{}),
	}
}

func newPlayer(name, avatar string) *Player {
	if avatar == "" {
		avatar = defaultAvatar
	}
	return &Player{
		id:       uuid.NewString(),
		name:     name,
		avatar:   avatar,
		joinedAt: time.Now(),
		limiter:  rate.NewLimiter(5, 10),
	}
}

func (r *Room) SetParent(parent roomParent) { r.parent = parent }

func (r *Room) ID() string   { return r.id }
func (r *Room) Code() string { return r.code }

// Stop asks the game loop to exit. Safe to call more than once.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.shutdown) })
}

func (r *Room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *Room) PingPlayers() {
	select {
	case r.pingPlayers <- struct{}{}:
	default:
	}
}

func (r *Room) RequestJoin(req joinRequest) error {
	select {
	case r.joinRequests <- req:
		return nil
	default:
		return ErrLobbyBusy
	}
}

func (r *Room) RequestAttach(req attachRequest) error {
	select {
	case r.attachRequests <- req:
		return nil
	default:
		return ErrLobbyBusy
	}
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (r *Room) captionByID(id string) *Caption {
	for i := range r.captions {
		if r.captions[i].ID == id {
			return &r.captions[i]
		}
	}
	return nil
}

func (r *Room) hasCaptionFrom(playerID string) bool {
	for _, c := range r.captions {
		if c.PlayerID == playerID {
			return true
		}
	}
	return false
}

// eligibleVoters are the present players who authored no caption this round.
func (r *Room) eligibleVoters() []*Player {
	eligible := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if !r.hasCaptionFrom(p.id) {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// tallyRound counts the votes each caption's author earned this round.
func (r *Room) tallyRound() map[string]int {
	roundScores := make(map[string]int, len(r.captions))
	for _, c := range r.captions {
		count := 0
		for _, v := range r.votes {
			if v.CaptionID == c.ID {
				count++
			}
		}
		roundScores[c.PlayerID] = count
	}
	return roundScores
}

// winner scans present players in join order; the first one holding the
// maximum cumulative score wins. Ties are not flagged.
func (r *Room) winner() *PlayerInfo {
	var best *Player
	bestScore := -1
	for _, p := range r.players {
		if score := r.scores[p.id]; score > bestScore {
			bestScore = score
			best = p
		}
	}
	if best == nil {
		return nil
	}
	info := best.info()
	return &info
}

func (p *Player) info() PlayerInfo {
	return PlayerInfo{ID: p.id, Name: p.name, Avatar: p.avatar, JoinedAt: p.joinedAt}
}

func (r *Room) playerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, p.info())
	}
	return infos
}

func (r *Room) snapshot() RoomSnapshot {
	captions := make([]Caption, len(r.captions))
	copy(captions, r.captions)

	votes := make(map[string]Vote, len(r.votes))
	for k, v := range r.votes {
		votes[k] = v
	}
	scores := make(map[string]int, len(r.scores))
	for k, v := range r.scores {
		scores[k] = v
	}

	return RoomSnapshot{
		Room: RoomMeta{
			ID:       r.id,
			Code:     r.code,
			HostID:   r.hostID,
			Settings: r.settings,
		},
		Players: r.playerInfos(),
		Game: GameSnapshot{
			Phase:        r.phase,
			CurrentRound: r.currentRound,
			CurrentMeme:  r.currentMeme,
			Captions:     captions,
			Votes:        votes,
			Scores:       scores,
			Timer:        r.countdown.remaining,
		},
	}
}

func (r *Room) description() roomDescription {
	return roomDescription{
		id:           r.id,
		code:         r.code,
		playerCount:  len(r.players),
		maxPlayers:   r.settings.MaxPlayers,
		phase:        r.phase,
		lastActivity: r.lastActivity,
	}
}

func (r *Room) touch() {
	r.lastActivity = time.Now()
}

func (r *Room) notifyDescription() {
	if r.parent != nil {
		r.parent.RequestUpdateDescription(r.description())
	}
}

func (r *Room) unicast(p *Player, event serverEvent) {
	r.outbox = append(r.outbox, sendTask{to: p, data: event.marshal()})
}

func (r *Room) broadcast(event serverEvent) {
	data := event.marshal()
	for _, p := range r.players {
		r.outbox = append(r.outbox, sendTask{to: p, data: data})
	}
}

func (r *Room) broadcastExcept(except *Player, event serverEvent) {
	data := event.marshal()
	for _, p := range r.players {
		if p == except {
			continue
		}
		r.outbox = append(r.outbox, sendTask{to: p, data: data})
	}
}

func (r *Room) takeOutbox() []sendTask {
	tasks := r.outbox
	r.outbox = nil
	return tasks
}

func (r *Room) flushOutbox() {
	for _, task := range r.takeOutbox() {
		if task.to.send == nil {
			continue
		}
		select {
		case task.to.send <- task.data:
		default:
			// Slow consumer; the frame is dropped rather than the room
			// loop blocked.
		}
	}
}
