package net

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/l1jgo/entitycore/internal/net/packet"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Server accepts observer connections and fans world digests out to them.
type Server struct {
	listener net.Listener
	name     string
	nextID   atomic.Uint64
	outSize  int
	registry *packet.Registry
	log      *zap.Logger

	mu       sync.RWMutex
	sessions map[uint64]*Session

	closeCh   chan struct{}
	closeOnce sync.Once
}

func NewServer(bindAddr, name string, outSize int, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if outSize <= 0 {
		outSize = 64
	}
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, eris.Wrapf(err, "listen %s", bindAddr)
	}
	s := &Server{
		listener: ln,
		name:     name,
		outSize:  outSize,
		registry: packet.NewRegistry(log),
		log:      log,
		sessions: make(map[uint64]*Session),
		closeCh:  make(chan struct{}),
	}
	registerHandlers(s.registry)
	return s, nil
}

// AcceptLoop runs in its own goroutine. It accepts connections, creates
// sessions and sends the hello packet.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.outSize, s.log)
		sess.Send(packet.BuildHello(s.name))

		s.mu.Lock()
		s.sessions[id] = sess
		s.mu.Unlock()

		sess.Start(s.dispatch, s.remove)
		s.log.Info("observer connected", zap.Uint64("session", id), zap.String("ip", sess.IP))
	}
}

func (s *Server) dispatch(sess *Session, data []byte) {
	if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
		s.log.Debug("dispatch failed", zap.Uint64("session", sess.ID), zap.Error(err))
	}
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	s.log.Info("observer disconnected", zap.Uint64("session", sess.ID))
}

// Publish sends a digest to every session subscribed to its world and
// returns the number of sessions it was queued for.
func (s *Server) Publish(d packet.WorldDigest) int {
	data := packet.BuildWorldDigest(d)

	s.mu.RLock()
	targets := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.Wants(d.World) {
			targets = append(targets, sess)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, sess := range targets {
		if sess.Send(data) {
			n++
		}
	}
	return n
}

// SessionCount returns the number of connected observers.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown stops accepting new connections and closes all sessions.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.listener.Close()

		s.mu.RLock()
		for _, sess := range s.sessions {
			sess.Close()
		}
		s.mu.RUnlock()
	})
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
