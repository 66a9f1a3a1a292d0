package game

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Vaibhav1992/Memelord/memes"
	"github.com/Vaibhav1992/Memelord/metrics"
)

// GameLoop owns all of the room's mutable state. Every mutation — inbound
// actions, joins, removals, timer ticks, the deferred results delay — is
// applied here, so the phase machine needs no locks and event ordering is
// exactly delivery ordering.
func (r *Room) GameLoop() {
	defer r.release()

	for {
		select {
		case env := <-r.inbox:
			r.handleEnvelope(env)
		case req := <-r.joinRequests:
			r.handleJoinRequest(req)
		case req := <-r.attachRequests:
			r.handleAttachRequest(req)
		case req := <-r.removals:
			r.handleRemoveRequest(req)
		case <-r.ticks:
			r.handleTick()
		case <-r.pingPlayers:
			r.queuePings()
		case <-r.shutdown:
			return
		}
		r.flushOutbox()
	}
}

func (r *Room) handleJoinRequest(req joinRequest) {
	if r.phase != PhaseWaiting {
		req.reply <- joinReply{err: ErrGameInProgress}
		return
	}
	if len(r.players) >= r.settings.MaxPlayers {
		req.reply <- joinReply{err: ErrRoomFull}
		return
	}

	p := newPlayer(req.name, req.avatar)
	if len(r.players) == 0 {
		r.hostID = p.id
	}
	r.players = append(r.players, p)
	r.scores[p.id] = 0

	if r.parent != nil {
		r.parent.RequestRegisterPlayer(p.id, r.id)
	}
	r.touch()
	r.notifyDescription()

	log.Info().Str("room", r.code).Str("player", p.name).Int("players", len(r.players)).Msg("player joined room")
	req.reply <- joinReply{playerID: p.id, snapshot: r.snapshot()}
}

// handleAttachRequest binds a websocket session to an already-joined player.
// A reconnecting player's previous session is superseded, not treated as a
// second player.
func (r *Room) handleAttachRequest(req attachRequest) {
	p := r.playerByID(req.playerID)
	if p == nil {
		req.reply <- ErrInvalidPlayer
		return
	}

	r.detachSession(p, "superseded")

	ctx, cancel := context.WithCancel(context.Background())
	p.session = req.session
	p.send = make(chan []byte, 256)
	p.pings = make(chan struct{}, 1)
	p.cancelSession = cancel

	go p.readPump(ctx, req.session, r.inbox, r.removals)
	go p.writePump(ctx, req.session, p.send, p.pings)

	r.touch()
	r.unicast(p, makeEventRoomState(r.snapshot()))
	r.broadcastExcept(p, makeEventPlayerJoined(p.info()))
	r.notifyDescription()

	req.reply <- nil
}

func (r *Room) handleRemoveRequest(req removalRequest) {
	p := req.player
	if p.session != req.session {
		// The pump reporting this removal belongs to a session that was
		// already replaced by a reconnect.
		return
	}

	idx := -1
	for i, other := range r.players {
		if other == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	r.detachSession(p, "")
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	if r.parent != nil {
		r.parent.RequestUnregisterPlayer(p.id)
	}

	// Cumulative scores keep the departed player's entry for end-game
	// display.
	r.broadcast(makeEventPlayerLeft(p.id))
	r.notifyDescription()
	log.Info().Str("room", r.code).Str("player", p.name).Msg("player left room")

	if len(r.players) == 0 {
		r.cancelCountdown()
		if r.parent != nil {
			r.parent.RequestRemoveRoom(r.id)
		}
	}
}

func (r *Room) detachSession(p *Player, reason string) {
	if p.cancelSession == nil {
		return
	}
	p.cancelSession()
	p.session.Close(reason)
	p.session = nil
	p.send = nil
	p.pings = nil
	p.cancelSession = nil
}

func (r *Room) handleEnvelope(env packetEnvelope) {
	switch env.event.Type {
	case EventStartGame:
		r.handleStartGame(env.from)

	case EventSubmitCaption:
		var payload submitCaptionPayload
		if err := json.Unmarshal(env.event.Data, &payload); err != nil {
			return
		}
		r.handleSubmitCaption(env.from, payload.Text)

	case EventSubmitVote:
		var payload submitVotePayload
		if err := json.Unmarshal(env.event.Data, &payload); err != nil {
			return
		}
		r.handleSubmitVote(env.from, payload.CaptionID)

	default:
		log.Debug().Str("room", r.code).Str("type", env.event.Type).Msg("dropping unknown event")
	}
}

func (r *Room) handleStartGame(from *Player) {
	if r.phase != PhaseWaiting {
		return
	}
	if len(r.players) < minPlayersToStart {
		r.unicast(from, makeEventError("Need at least 2 players to start"))
		return
	}
	if r.memeSource.Size() == 0 {
		r.unicast(from, makeEventError(ErrNoMemes.Error()))
		return
	}

	log.Info().Str("room", r.code).Str("player", from.name).Msg("game started")
	r.startRound()
}

func (r *Room) startRound() {
	r.currentRound++
	r.phase = PhaseCaption

	meme := r.pickMeme()
	r.currentMeme = &meme
	r.captions = make([]Caption, 0, len(r.players))
	r.votes = make(map[string]Vote)

	r.broadcast(makeEventRoundStart(r.currentRound, r.currentMeme, r.settings.CaptionTimer))
	r.startCountdown(r.settings.CaptionTimer, false, r.beginVoting)
	r.notifyDescription()

	metrics.RoundsStarted.Inc()
	log.Info().
		Str("room", r.code).
		Int("round", r.currentRound).
		Str("meme", meme.Title).
		Int("players", len(r.players)).
		Msg("round started")
}

// pickMeme draws uniformly from the unused memes; once the catalog is
// exhausted the used set resets and the cycle starts over.
func (r *Room) pickMeme() memes.Meme {
	m, ok := r.memeSource.Pick(r.usedMemeIDs)
	if !ok {
		r.usedMemeIDs = make(map[string]bool)
		m, _ = r.memeSource.Pick(r.usedMemeIDs)
	}
	r.usedMemeIDs[m.ID] = true
	return m
}

func (r *Room) handleSubmitCaption(from *Player, text string) {
	if r.phase != PhaseCaption {
		return
	}
	r.touch()

	if r.hasCaptionFrom(from.id) {
		return
	}

	cleaned := r.profanity.Clean(strings.TrimSpace(text))
	if cleaned == "" || utf8.RuneCountInString(cleaned) > maxCaptionLength {
		return
	}

	caption := Caption{
		ID:          uuid.NewString(),
		PlayerID:    from.id,
		PlayerName:  from.name,
		Text:        cleaned,
		SubmittedAt: time.Now(),
	}
	r.captions = append(r.captions, caption)
	r.broadcast(makeEventCaptionSubmitted(caption))

	if len(r.captions) == len(r.players) {
		r.cancelCountdown()
		r.beginVoting()
	}
}

func (r *Room) beginVoting() {
	r.phase = PhaseVote
	r.broadcast(makeEventVotePhaseStart(r.captions, voteTimerSeconds))
	r.startCountdown(voteTimerSeconds, false, r.endRound)
	r.notifyDescription()
}

func (r *Room) handleSubmitVote(from *Player, captionID string) {
	if r.phase != PhaseVote {
		return
	}
	r.touch()

	caption := r.captionByID(captionID)
	if caption == nil || caption.PlayerID == from.id {
		return
	}

	// Upsert: a later vote replaces the voter's earlier one.
	r.votes[from.id] = Vote{VoterID: from.id, CaptionID: captionID, VotedAt: time.Now()}
	r.broadcast(makeEventVoteSubmitted(captionID, from.id))

	if len(r.votes) == len(r.eligibleVoters()) {
		r.cancelCountdown()
		r.endRound()
	}
}

func (r *Room) endRound() {
	roundScores := r.tallyRound()
	for playerID, count := range roundScores {
		r.scores[playerID] += count
	}

	r.phase = PhaseResults
	r.broadcast(makeEventRoundEnd(roundScores, r.scoresCopy(), r.captions))
	r.notifyDescription()

	r.startCountdown(resultsDelaySeconds, true, func() {
		if r.currentRound >= r.settings.Rounds {
			r.endGame()
		} else {
			r.startRound()
		}
	})
}

func (r *Room) endGame() {
	r.phase = PhaseEnded
	r.cancelCountdown()

	winner := r.winner()
	r.broadcast(makeEventGameEnd(winner, r.scoresCopy(), r.playerInfos()))
	r.notifyDescription()

	metrics.GamesCompleted.Inc()
	event := log.Info().Str("room", r.code).Int("rounds", r.currentRound)
	if winner != nil {
		event = event.Str("winner", winner.Name)
	}
	event.Msg("game ended")
}

func (r *Room) scoresCopy() map[string]int {
	scores := make(map[string]int, len(r.scores))
	for k, v := range r.scores {
		scores[k] = v
	}
	return scores
}

func (r *Room) queuePings() {
	for _, p := range r.players {
		if p.pings == nil {
			continue
		}
		select {
		case p.pings <- struct{}{}:
		default:
		}
	}
}

func (r *Room) release() {
	r.cancelCountdown()
	for _, p := range r.players {
		r.detachSession(p, "room-closed")
	}
}
