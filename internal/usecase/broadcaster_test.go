package usecase

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotseatgames/tictactoe-service/internal/entity"
)

func newTestBroadcaster() *Broadcaster {
	return NewBroadcaster(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestBroadcaster_Publish(t *testing.T) {
	t.Run("Delivers the snapshot to a subscriber", func(t *testing.T) {
		broadcaster := newTestBroadcaster()

		// Given: a subscriber on session 123
		var received []*entity.Session
		broadcaster.Subscribe("123", func(session *entity.Session) {
			received = append(received, session)
		})

		// When: a snapshot is published to that session
		session := entity.NewSession("123")
		broadcaster.Publish("123", session)

		// Then: the subscriber got it
		require.Len(t, received, 1)
		assert.Same(t, session, received[0])
	})

	t.Run("Delivers to every subscriber of the session", func(t *testing.T) {
		broadcaster := newTestBroadcaster()

		// Given: two subscribers on the same session
		var first, second int
		broadcaster.Subscribe("123", func(*entity.Session) { first++ })
		broadcaster.Subscribe("123", func(*entity.Session) { second++ })

		// When: a snapshot is published
		broadcaster.Publish("123", entity.NewSession("123"))

		// Then: both saw it
		assert.Equal(t, 1, first)
		assert.Equal(t, 1, second)
	})

	t.Run("Does not leak across sessions", func(t *testing.T) {
		broadcaster := newTestBroadcaster()

		// Given: subscribers on two different sessions
		var ours, theirs int
		broadcaster.Subscribe("123", func(*entity.Session) { ours++ })
		broadcaster.Subscribe("456", func(*entity.Session) { theirs++ })

		// When: a snapshot is published to one of them
		broadcaster.Publish("123", entity.NewSession("123"))

		// Then: only that session's subscriber saw it
		assert.Equal(t, 1, ours)
		assert.Equal(t, 0, theirs)
	})

	t.Run("Publish with no subscribers is a no-op", func(t *testing.T) {
		broadcaster := newTestBroadcaster()

		// When: a snapshot is published to a session nobody watches
		broadcaster.Publish("123", entity.NewSession("123"))

		// Then: nothing happens
	})
}

func TestBroadcaster_Subscribe(t *testing.T) {
	t.Run("Cancel stops delivery", func(t *testing.T) {
		broadcaster := newTestBroadcaster()

		// Given: a subscriber that cancels after the first snapshot
		var count int
		cancel := broadcaster.Subscribe("123", func(*entity.Session) { count++ })

		broadcaster.Publish("123", entity.NewSession("123"))
		cancel()

		// When: another snapshot is published
		broadcaster.Publish("123", entity.NewSession("123"))

		// Then: the cancelled subscriber did not see it
		assert.Equal(t, 1, count)
	})

	t.Run("Cancel is safe to call twice", func(t *testing.T) {
		broadcaster := newTestBroadcaster()

		cancel := broadcaster.Subscribe("123", func(*entity.Session) {})

		cancel()
		cancel()
	})

	t.Run("Remaining subscribers keep receiving after one cancels", func(t *testing.T) {
		broadcaster := newTestBroadcaster()

		var kept int
		cancel := broadcaster.Subscribe("123", func(*entity.Session) {})
		broadcaster.Subscribe("123", func(*entity.Session) { kept++ })

		cancel()
		broadcaster.Publish("123", entity.NewSession("123"))

		assert.Equal(t, 1, kept)
	})
}

func TestBroadcaster_Concurrency(t *testing.T) {
	broadcaster := newTestBroadcaster()

	// subscribers, publishers and cancels race on the same session
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cancel := broadcaster.Subscribe("123", func(*entity.Session) {})
			broadcaster.Publish("123", entity.NewSession("123"))
			cancel()
		}()
	}

	wg.Wait()

	// all registrations are gone, so a publish reaches nobody
	broadcaster.Publish("123", entity.NewSession("123"))
}
