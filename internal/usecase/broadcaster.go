package usecase

import (
	"log/slog"
	"sync"

	"github.com/hotseatgames/tictactoe-service/internal/entity"
)

// Broadcaster fans a session's post-mutation snapshots out to its
// subscribers. Subscriptions are per session; a session nobody watches costs
// nothing and a publish to it is a no-op.
type Broadcaster struct {
	logger *slog.Logger

	mu          sync.RWMutex
	nextID      uint64
	subscribers map[string]map[uint64]func(*entity.Session)
}

func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		logger:      logger.With("component", "broadcaster"),
		subscribers: make(map[string]map[uint64]func(*entity.Session)),
	}
}

// Subscribe - registers fn for every snapshot published to the session. The
// returned cancel removes the registration and is safe to call more than once.
func (that *Broadcaster) Subscribe(sessionID string, fn func(*entity.Session)) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID

	if that.subscribers[sessionID] == nil {
		that.subscribers[sessionID] = make(map[uint64]func(*entity.Session))
	}

	that.subscribers[sessionID][id] = fn

	return func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		delete(that.subscribers[sessionID], id)
		if len(that.subscribers[sessionID]) == 0 {
			delete(that.subscribers, sessionID)
		}
	}
}

// Publish - hands the snapshot to every subscriber of the session, in the
// calling goroutine. Subscribers must not block; a slow one delays the
// mutation that triggered the publish.
func (that *Broadcaster) Publish(sessionID string, session *entity.Session) {
	that.mu.RLock()
	fns := make([]func(*entity.Session), 0, len(that.subscribers[sessionID]))
	for _, fn := range that.subscribers[sessionID] {
		fns = append(fns, fn)
	}
	that.mu.RUnlock()

	if len(fns) == 0 {
		return
	}

	that.logger.Debug("publishing snapshot", "session", sessionID, "subscribers", len(fns))

	for _, fn := range fns {
		fn(session)
	}
}
