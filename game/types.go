package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Vaibhav1992/Memelord/filter"
	"github.com/Vaibhav1992/Memelord/memes"
)

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseCaption
	PhaseVote
	PhaseResults
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseCaption:
		return "caption"
	case PhaseVote:
		return "vote"
	case PhaseResults:
		return "results"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "waiting":
		*p = PhaseWaiting
	case "caption":
		*p = PhaseCaption
	case "vote":
		*p = PhaseVote
	case "results":
		*p = PhaseResults
	case "ended":
		*p = PhaseEnded
	default:
		return fmt.Errorf("unknown phase %q", s)
	}
	return nil
}

const (
	defaultMaxPlayers   = 8
	defaultRounds       = 10
	defaultCaptionTimer = 45

	voteTimerSeconds    = 20
	resultsDelaySeconds = 5
	minPlayersToStart   = 2

	maxCaptionLength = 200
	MaxNameLength    = 20

	defaultAvatar = "😀"
)

// Settings are fixed at room creation; zero fields take the defaults.
type Settings struct {
	MaxPlayers   int `json:"maxPlayers"`
	Rounds       int `json:"rounds"`
	CaptionTimer int `json:"captionTimer"`
}

func (s Settings) withDefaults() Settings {
	if s.MaxPlayers < minPlayersToStart {
		s.MaxPlayers = defaultMaxPlayers
	}
	if s.Rounds < 1 {
		s.Rounds = defaultRounds
	}
	if s.CaptionTimer < 1 {
		s.CaptionTimer = defaultCaptionTimer
	}
	return s
}

type Caption struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"playerId"`
	PlayerName  string    `json:"playerName"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Vote struct {
	VoterID   string    `json:"voterId"`
	CaptionID string    `json:"captionId"`
	VotedAt   time.Time `json:"votedAt"`
}

// Player identity outlives any one socket: the session fields are replaced
// on reconnect and are owned by the room goroutine.
type Player struct {
	id       string
	name     string
	avatar   string
	joinedAt time.Time

	limiter *rate.Limiter

	session       NetworkSession
	send          chan []byte
	pings         chan struct{}
	cancelSession context.CancelFunc
}

func (p *Player) ID() string   { return p.id }
func (p *Player) Name() string { return p.name }

type Room struct {
	id       string
	code     string
	hostID   string
	settings Settings

	phase        Phase
	currentRound int
	currentMeme  *memes.Meme
	usedMemeIDs  map[string]bool
	captions     []Caption
	votes        map[string]Vote
	scores       map[string]int

	players []*Player

	createdAt    time.Time
	lastActivity time.Time

	countdown countdown

	memeSource MemeSource
	profanity  *filter.Filter
	parent     roomParent

	outbox []sendTask

	inbox          chan packetEnvelope
	joinRequests   chan joinRequest
	attachRequests chan attachRequest
	removals       chan removalRequest
	ticks          chan time.Time
	pingPlayers    chan struct{}
	shutdown       chan struct{}
	stopOnce       sync.Once
}

type joinRequest struct {
	name   string
	avatar string
	reply  chan joinReply
}

type joinReply struct {
	playerID string
	snapshot RoomSnapshot
	err      error
}

type attachRequest struct {
	playerID string
	session  NetworkSession
	reply    chan error
}

type removalRequest struct {
	player *Player
	// session identifies which connection is asking; a removal from a
	// superseded connection must not evict the reconnected player.
	session NetworkSession
}

type packetEnvelope struct {
	event clientEvent
	from  *Player
}

// sendTask is one queued outbound frame for one recipient. Handlers append
// tasks and the game loop flushes them, which keeps the transition logic
// testable without a transport.
type sendTask struct {
	to   *Player
	data []byte
}

type roomDescription struct {
	id           string
	code         string
	playerCount  int
	maxPlayers   int
	phase        Phase
	lastActivity time.Time
}

type PlayerInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	JoinedAt time.Time `json:"joinedAt"`
}

type RoomMeta struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	HostID   string   `json:"hostId"`
	Settings Settings `json:"settings"`
}

type GameSnapshot struct {
	Phase        Phase           `json:"phase"`
	CurrentRound int             `json:"currentRound"`
	CurrentMeme  *memes.Meme     `json:"currentMeme"`
	Captions     []Caption       `json:"captions"`
	Votes        map[string]Vote `json:"votes"`
	Scores       map[string]int  `json:"scores"`
	Timer        int             `json:"timer"`
}

type RoomSnapshot struct {
	Room    RoomMeta     `json:"room"`
	Players []PlayerInfo `json:"players"`
	Game    GameSnapshot `json:"gameState"`
}

// RoomInfo is the code-lookup response a client uses before joining.
type RoomInfo struct {
	RoomID      string `json:"roomId"`
	Code        string `json:"code"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	GamePhase   Phase  `json:"gamePhase"`
}
