package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/l1jgo/entitycore/internal/net/packet"
	"go.uber.org/zap"
)

// Session represents a single observer connection. Reads and writes run in
// dedicated goroutines; Send may be called from any goroutine.
type Session struct {
	ID   uint64
	conn net.Conn

	state  atomic.Int32 // packet.SessionState stored as int32
	mu     sync.Mutex   // protects filter
	filter string       // world name, "" = all worlds

	OutQueue chan []byte // writer goroutine reads from here

	IP string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, outSize int, log *zap.Logger) *Session {
	s := &Session{
		ID:       id,
		conn:     conn,
		OutQueue: make(chan []byte, outSize),
		IP:       conn.RemoteAddr().String(),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Subscribe starts digest delivery for one world, or all when world is "".
func (s *Session) Subscribe(world string) {
	s.mu.Lock()
	s.filter = world
	s.mu.Unlock()
	s.SetState(packet.StateSubscribed)
}

func (s *Session) Unsubscribe() {
	s.SetState(packet.StateConnected)
}

// Wants reports whether a digest for world should be sent to this session.
func (s *Session) Wants(world string) bool {
	if s.State() != packet.StateSubscribed {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter == "" || s.filter == world
}

// Start launches the reader and writer goroutines. onPacket runs on the
// reader goroutine for every inbound payload; onClose runs once when the
// session ends.
func (s *Session) Start(onPacket func(*Session, []byte), onClose func(*Session)) {
	go s.readLoop(onPacket, onClose)
	go s.writeLoop()
}

// Send queues a packet for the writer goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) Send(data []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.OutQueue <- data:
		return true
	default:
		s.log.Warn("output queue full, dropping slow observer")
		s.Close()
		return false
	}
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) readLoop(onPacket func(*Session, []byte), onClose func(*Session)) {
	defer func() {
		s.Close()
		if onClose != nil {
			onClose(s)
		}
	}()

	for {
		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		if onPacket != nil {
			onPacket(s, payload)
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOnePacket(data) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOnePacket(data []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := WriteFrame(s.conn, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
