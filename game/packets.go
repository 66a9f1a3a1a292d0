package game

import "encoding/json"

// Wire protocol: JSON envelopes {"type": ..., "data": ...} in both
// directions.

const (
	// client -> server
	EventJoinRoom      = "join_room"
	EventStartGame     = "start_game"
	EventSubmitCaption = "submit_caption"
	EventSubmitVote    = "submit_vote"

	// server -> client
	EventRoomState        = "room_state"
	EventPlayerJoined     = "player_joined"
	EventPlayerLeft       = "player_left"
	EventRoundStart       = "round_start"
	EventTimerTick        = "timer_tick"
	EventCaptionSubmitted = "caption_submitted"
	EventVotePhaseStart   = "vote_phase_start"
	EventVoteSubmitted    = "vote_submitted"
	EventRoundEnd         = "round_end"
	EventGameEnd          = "game_end"
	EventError            = "error"
)

type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type serverEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type submitCaptionPayload struct {
	Text string `json:"text"`
}

type submitVotePayload struct {
	CaptionID string `json:"captionId"`
}

func makeEventRoomState(snapshot RoomSnapshot) serverEvent {
	return serverEvent{Type: EventRoomState, Data: snapshot}
}

func makeEventPlayerJoined(info PlayerInfo) serverEvent {
	return serverEvent{Type: EventPlayerJoined, Data: info}
}

func makeEventPlayerLeft(playerID string) serverEvent {
	return serverEvent{Type: EventPlayerLeft, Data: struct {
		PlayerID string `json:"playerId"`
	}{playerID}}
}

func makeEventRoundStart(round int, meme any, timer int) serverEvent {
	return serverEvent{Type: EventRoundStart, Data: struct {
		Round int `json:"round"`
		Meme  any `json:"meme"`
		Timer int `json:"timer"`
	}{round, meme, timer}}
}

func makeEventTimerTick(secondsLeft int) serverEvent {
	return serverEvent{Type: EventTimerTick, Data: struct {
		SecondsLeft int `json:"secondsLeft"`
	}{secondsLeft}}
}

func makeEventCaptionSubmitted(caption Caption) serverEvent {
	return serverEvent{Type: EventCaptionSubmitted, Data: caption}
}

func makeEventVotePhaseStart(captions []Caption, timer int) serverEvent {
	return serverEvent{Type: EventVotePhaseStart, Data: struct {
		Captions []Caption `json:"captions"`
		Timer    int       `json:"timer"`
	}{captions, timer}}
}

// Vote counts are intentionally withheld until round end.
func makeEventVoteSubmitted(captionID, voterID string) serverEvent {
	return serverEvent{Type: EventVoteSubmitted, Data: struct {
		CaptionID string `json:"captionId"`
		VoterID   string `json:"voterId"`
	}{captionID, voterID}}
}

func makeEventRoundEnd(roundScores, totalScores map[string]int, captions []Caption) serverEvent {
	return serverEvent{Type: EventRoundEnd, Data: struct {
		RoundScores map[string]int `json:"roundScores"`
		TotalScores map[string]int `json:"totalScores"`
		Captions    []Caption      `json:"captions"`
	}{roundScores, totalScores, captions}}
}

func makeEventGameEnd(winner *PlayerInfo, finalScores map[string]int, players []PlayerInfo) serverEvent {
	return serverEvent{Type: EventGameEnd, Data: struct {
		Winner      *PlayerInfo    `json:"winner"`
		FinalScores map[string]int `json:"finalScores"`
		Players     []PlayerInfo   `json:"players"`
	}{winner, finalScores, players}}
}

func makeEventError(message string) serverEvent {
	return serverEvent{Type: EventError, Data: struct {
		Message string `json:"message"`
	}{message}}
}

func (e serverEvent) marshal() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		// Payloads are plain structs and maps; this cannot fail for them.
		return []byte(`{"type":"error","data":{"message":"internal-error"}}`)
	}
	return data
}
