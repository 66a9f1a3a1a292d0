package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPump(t *testing.T) {
	t.Parallel()

	t.Run("forwards parsed events to the room inbox", func(t *testing.T) {
		t.Parallel()
		p := newPlayer("alice", "")
		session := newFakeSession()
		inbox := make(chan packetEnvelope, 4)
		removals := make(chan removalRequest, 1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go p.readPump(ctx, session, inbox, removals)

		session.reads <- clientFrame(t, EventSubmitCaption, submitCaptionPayload{Text: "hi"})
		env := <-inbox
		assert.Equal(t, EventSubmitCaption, env.event.Type)
		assert.Same(t, p, env.from)
	})

	t.Run("drops frames that are not valid JSON", func(t *testing.T) {
		t.Parallel()
		p := newPlayer("alice", "")
		session := newFakeSession()
		inbox := make(chan packetEnvelope, 4)
		removals := make(chan removalRequest, 1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go p.readPump(ctx, session, inbox, removals)

		session.reads <- []byte{0x01, 0x05}
		session.reads <- clientFrame(t, EventStartGame, struct{}{})
		env := <-inbox
		assert.Equal(t, EventStartGame, env.event.Type)
	})

	t.Run("read error reports a removal for its own session", func(t *testing.T) {
		t.Parallel()
		p := newPlayer("alice", "")
		session := newFakeSession()
		inbox := make(chan packetEnvelope, 4)
		removals := make(chan removalRequest, 1)

		done := make(chan struct{})
		go func() {
			defer close(done)
			p.readPump(context.Background(), session, inbox, removals)
		}()

		session.Close("")
		// on read error the goroutine must release
		<-done

		req := <-removals
		assert.Same(t, p, req.player)
		assert.Same(t, NetworkSession(session), req.session)
	})

	t.Run("blocked inbox releases on context cancellation", func(t *testing.T) {
		t.Parallel()
		p := newPlayer("alice", "")
		session := newFakeSession()
		inbox := make(chan packetEnvelope) // unbuffered and never drained
		removals := make(chan removalRequest)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			p.readPump(ctx, session, inbox, removals)
		}()

		session.reads <- clientFrame(t, EventStartGame, struct{}{})
		cancel()
		<-done
	})
}

func TestWritePump(t *testing.T) {
	t.Parallel()

	t.Run("writes queued frames and pings", func(t *testing.T) {
		t.Parallel()
		p := newPlayer("alice", "")
		session := newFakeSession()
		send := make(chan []byte, 4)
		pings := make(chan struct{}, 1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.writePump(ctx, session, send, pings)
		}()

		send <- []byte(`{"type":"timer_tick"}`)
		pings <- struct{}{}

		require.Eventually(t, func() bool {
			session.mu.Lock()
			defer session.mu.Unlock()
			return len(session.writes) == 1 && session.pinged == 1
		}, time.Second, 5*time.Millisecond)

		cancel()
		wg.Wait()
	})

	t.Run("write error releases the goroutine", func(t *testing.T) {
		t.Parallel()
		p := newPlayer("alice", "")
		session := newFakeSession()
		session.Close("") // writes fail from the start
		send := make(chan []byte, 1)

		done := make(chan struct{})
		go func() {
			defer close(done)
			p.writePump(context.Background(), session, send, make(chan struct{}))
		}()

		send <- []byte("data")
		<-done
	})
}
