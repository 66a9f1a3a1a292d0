package game

import (
	"time"

	"github.com/Vaibhav1992/Memelord/memes"
)

type NetworkSession interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// MemeSource is the read-only catalog a room draws memes from.
type MemeSource interface {
	Pick(used map[string]bool) (memes.Meme, bool)
	Size() int
}

type PeriodicTickerChannelCreator interface {
	Create(d time.Duration) <-chan time.Time
}

// roomParent is the slice of the lobby a room is allowed to talk back to.
type roomParent interface {
	RequestUpdateDescription(desc roomDescription)
	RequestRemoveRoom(roomID string)
	RequestRegisterPlayer(playerID, roomID string)
	RequestUnregisterPlayer(playerID string)
}
