package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client wraps one socket connection. Snapshot pushes arrive from whatever
// goroutine performed the mutation while the read loop may be answering an
// intent, and gorilla allows a single concurrent writer, so every write takes
// the mutex.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex

	// owned by the read loop
	sessionID   string
	unsubscribe func()
}

func (that *client) send(message *Message) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.conn.WriteJSON(message)
}
