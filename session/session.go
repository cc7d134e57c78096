package session

import (
	"time"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

// Session wraps one live store connection handed out by the manager.
// A session belongs to exactly one caller between Acquire and Release.
type Session struct {
	ID     string
	Conn   store.Conn
	Dialed time.Time
}

func newSession(conn store.Conn) *Session {
	return &Session{
		ID:     data.NewSessionID(),
		Conn:   conn,
		Dialed: time.Now(),
	}
}
