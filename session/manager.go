// Package session maintains the pool of authenticated store
// connections. Slots start empty and dial on first use, so a pool of
// size N costs nothing until N callers actually overlap.
package session

import (
	"context"
	"sync"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/log"
	"github.com/mwantia/gridfs/store"
)

type Manager struct {
	driver store.Driver
	cfg    store.Config
	log    *log.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}

	// Buffered to pool size; a nil entry is an undialed slot.
	slots chan *Session
}

func NewManager(driver store.Driver, cfg store.Config, size int, logger *log.Logger) *Manager {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = log.Discard()
	}

	m := &Manager{
		driver: driver,
		cfg:    cfg,
		log:    logger,
		done:   make(chan struct{}),
		slots:  make(chan *Session, size),
	}
	for i := 0; i < size; i++ {
		m.slots <- nil
	}

	return m
}

// Acquire hands out a session, dialing a fresh connection when the
// slot is empty. It blocks while the pool is exhausted until a slot
// frees up, the context ends, or the manager shuts down. Dial
// failures return the slot, so a bad credential never burns pool
// capacity.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, data.ErrClosed
	}
	m.mu.Unlock()

	select {
	case s := <-m.slots:
		if s != nil {
			m.log.Debug("Session '%s' acquired", s.ID)
			return s, nil
		}

		conn, err := m.driver.Connect(ctx, m.cfg)
		if err != nil {
			m.slots <- nil
			return nil, err
		}

		s = newSession(conn)
		m.log.Debug("Session '%s' dialed", s.ID)
		return s, nil

	case <-m.done:
		return nil, data.ErrClosed

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a healthy session to the pool. After shutdown the
// connection is closed instead.
func (m *Manager) Release(ctx context.Context, s *Session) {
	if s == nil {
		return
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()

	if closed {
		if err := s.Conn.Close(ctx); err != nil {
			m.log.Warn("Failed to close session '%s': %v", s.ID, err)
		}
		return
	}

	m.slots <- s
}

// Discard drops a session presumed dead and frees its slot for a
// fresh dial. The close is best effort.
func (m *Manager) Discard(ctx context.Context, s *Session) {
	if s == nil {
		return
	}

	if err := s.Conn.Close(ctx); err != nil {
		m.log.Debug("Failed to close discarded session '%s': %v", s.ID, err)
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()

	m.log.Debug("Session '%s' discarded", s.ID)
	if !closed {
		m.slots <- nil
	}
}

// Idle reports how many slots currently sit in the pool, dialed or
// not.
func (m *Manager) Idle() int {
	return len(m.slots)
}

// Size reports the pool capacity.
func (m *Manager) Size() int {
	return cap(m.slots)
}

// Shutdown closes every pooled connection and rejects further
// acquires. Sessions still held by callers are closed when released.
// Calling Shutdown twice is harmless.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	m.mu.Unlock()

	errs := data.Errors{}
	for {
		select {
		case s := <-m.slots:
			if s == nil {
				continue
			}
			if err := s.Conn.Close(ctx); err != nil {
				errs.Add(err)
			}

		default:
			return errs.Errors()
		}
	}
}
