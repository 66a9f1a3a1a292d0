package game

import (
	"context"
	"encoding/json"
)

// readPump parses inbound frames and forwards them to the room inbox. It
// exits on read error or session replacement; either way it reports the
// session it was serving so the room can tell a stale pump from a live one.
func (p *Player) readPump(ctx context.Context, session NetworkSession, inbox chan<- packetEnvelope, removeMe chan<- removalRequest) {
	defer func() {
		session.Close("")
		select {
		case removeMe <- removalRequest{player: p, session: session}:
		case <-ctx.Done():
		}
	}()

	for {
		data, err := session.Read()
		if err != nil {
			return
		}

		if !p.limiter.Allow() {
			continue
		}

		var event clientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}

		select {
		case inbox <- packetEnvelope{event: event, from: p}:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Player) writePump(ctx context.Context, session NetworkSession, send <-chan []byte, pings <-chan struct{}) {
	for {
		select {
		case data, ok := <-send:
			if !ok {
				return
			}
			if err := session.Write(data); err != nil {
				return
			}
		case <-pings:
			if err := session.Ping(); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
