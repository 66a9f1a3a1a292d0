package game

import (
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Vaibhav1992/Memelord/memes"
)

type MockMemeSource struct {
	mock.Mock
}

func (m *MockMemeSource) Pick(used map[string]bool) (memes.Meme, bool) {
	args := m.Called(used)
	return args.Get(0).(memes.Meme), args.Bool(1)
}

func (m *MockMemeSource) Size() int {
	return m.Called().Int(0)
}

// recordingParent is a permissive roomParent that remembers what the room
// asked of its lobby.
type recordingParent struct {
	mu           sync.Mutex
	descriptions []roomDescription
	removedRooms []string
	registered   []string
	unregistered []string
}

func (p *recordingParent) RequestUpdateDescription(desc roomDescription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.descriptions = append(p.descriptions, desc)
}

func (p *recordingParent) RequestRemoveRoom(roomID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removedRooms = append(p.removedRooms, roomID)
}

func (p *recordingParent) RequestRegisterPlayer(playerID, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, playerID)
}

func (p *recordingParent) RequestUnregisterPlayer(playerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unregistered = append(p.unregistered, playerID)
}

func (p *recordingParent) removed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.removedRooms...)
}

// fakeSession is an in-memory NetworkSession. Reads block until the test
// feeds a frame or closes the session.
type fakeSession struct {
	reads chan []byte

	mu     sync.Mutex
	writes [][]byte
	pinged int

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		reads:  make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (s *fakeSession) Read() ([]byte, error) {
	select {
	case data := <-s.reads:
		return data, nil
	case <-s.closed:
		return nil, io.EOF
	}
}

func (s *fakeSession) Write(data []byte) error {
	select {
	case <-s.closed:
		return io.ErrClosedPipe
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, data)
	return nil
}

func (s *fakeSession) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinged++
	return nil
}

func (s *fakeSession) Close(string) {
	s.closeOnce.Do(func() { close(s.closed) })
}

type mockTickerCreator struct {
	mu      sync.Mutex
	tickers map[time.Duration]chan time.Time
}

func newMockTickerCreator() *mockTickerCreator {
	return &mockTickerCreator{tickers: make(map[time.Duration]chan time.Time)}
}

func (c *mockTickerCreator) Create(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.tickers[d]; ok {
		return ch
	}
	ch := make(chan time.Time)
	c.tickers[d] = ch
	return ch
}

func (c *mockTickerCreator) channel(d time.Duration) chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tickers[d]; !ok {
		c.tickers[d] = make(chan time.Time)
	}
	return c.tickers[d]
}

// recordedEvent is a decoded outbound frame for assertions; volatile
// payload fields stay accessible through data.
type recordedEvent struct {
	to   *Player
	typ  string
	data map[string]any
}

func decodeOutbox(t *testing.T, tasks []sendTask) []recordedEvent {
	t.Helper()
	events := make([]recordedEvent, 0, len(tasks))
	for _, task := range tasks {
		var envelope struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(task.data, &envelope))

		var data map[string]any
		if len(envelope.Data) > 0 && envelope.Data[0] == '{' {
			require.NoError(t, json.Unmarshal(envelope.Data, &data))
		}
		events = append(events, recordedEvent{to: task.to, typ: envelope.Type, data: data})
	}
	return events
}

func eventsOfType(events []recordedEvent, typ string) []recordedEvent {
	matched := make([]recordedEvent, 0, len(events))
	for _, e := range events {
		if e.typ == typ {
			matched = append(matched, e)
		}
	}
	return matched
}

func eventsTo(events []recordedEvent, p *Player) []recordedEvent {
	matched := make([]recordedEvent, 0, len(events))
	for _, e := range events {
		if e.to == p {
			matched = append(matched, e)
		}
	}
	return matched
}

func clientFrame(t *testing.T, typ string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	frame, err := json.Marshal(clientEvent{Type: typ, Data: raw})
	require.NoError(t, err)
	return frame
}
