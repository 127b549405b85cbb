// Package session wraps one TCP connection: frame encode/decode, a
// buffered write pump, and a heartbeat emitter. Reads are pulled
// synchronously by the room's game loop rather than pumped into a
// channel, since only the current seat is ever read from at a time.
package session

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"landlord/internal/protocol"
)

// sendBuffer bounds the outgoing queue; a seat that can't keep up with
// its own broadcasts is treated as a dead connection, not throttled.
const sendBuffer = 64

// ErrSendBufferFull is returned by Send when the peer isn't draining
// frames fast enough. The caller should treat this the same as any other
// SocketError: close the session and remove the seat.
var ErrSendBufferFull = fmt.Errorf("session: send buffer full")

// Session owns one client connection for the lifetime of that socket.
type Session struct {
	conn   net.Conn
	reader *protocol.CommandReader
	send   chan protocol.Message
	done   chan struct{}
	once   sync.Once

	logger *log.Logger
	clock  quartz.Clock

	heartbeatInterval time.Duration

	// Name is the player display name sent during the intake handshake.
	// It is set once before the Session is handed to a Room and never
	// mutated afterward.
	Name string
}

// New wraps conn for frame-based I/O. clock drives the heartbeat ticker;
// production callers pass quartz.NewReal(), tests a quartz.Mock.
func New(conn net.Conn, name string, logger *log.Logger, clock quartz.Clock, heartbeatInterval time.Duration) *Session {
	return &Session{
		conn:              conn,
		reader:            protocol.NewCommandReader(conn),
		send:              make(chan protocol.Message, sendBuffer),
		done:              make(chan struct{}),
		logger:            logger.WithPrefix("session").With("player", name),
		clock:             clock,
		heartbeatInterval: heartbeatInterval,
		Name:              name,
	}
}

// Start launches the write pump and heartbeat goroutines under a shared
// errgroup, so a panic or unexpected error in either is observable instead
// of vanishing into a detached goroutine, and either one exiting closes
// the session (a dead write pump means a dead heartbeat and vice versa).
// The caller reads commands directly via ReadCommand on its own goroutine
// (or the room's single game-loop goroutine).
func (s *Session) Start() {
	var eg errgroup.Group
	eg.Go(s.writePump)
	eg.Go(s.heartbeat)
	go func() {
		if err := eg.Wait(); err != nil {
			s.logger.Error("session goroutine exited", "err", err)
		}
		_ = s.Close()
	}()
}

// Send enqueues a frame for the write pump. It never blocks: if the
// buffer is full the session is considered broken and closed.
func (s *Session) Send(msg protocol.Message) error {
	select {
	case <-s.done:
		return net.ErrClosed
	default:
	}
	select {
	case s.send <- msg:
		return nil
	case <-s.done:
		return net.ErrClosed
	default:
		s.logger.Warn("send buffer full, closing session")
		_ = s.Close()
		return ErrSendBufferFull
	}
}

// ReadCommand blocks for the next plain-text client command. Callers
// (the room's game loop) must not call this concurrently with itself.
func (s *Session) ReadCommand() (string, error) {
	return s.reader.ReadCommand()
}

// Close shuts the connection down and stops the write pump and
// heartbeat. Safe to call more than once or concurrently.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// Done reports a channel closed once the session has been shut down,
// for callers that want to select on it alongside other events.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// writePump drains the send channel onto the wire until the session
// closes. A write failure is expected on a dropped connection, so it ends
// the pump quietly (returning nil) rather than surfacing as an errgroup
// failure; only an encode bug would be worth reporting, and Encode on a
// well-formed Message never fails in practice.
func (s *Session) writePump() error {
	for {
		select {
		case msg := <-s.send:
			frame, err := protocol.Encode(msg)
			if err != nil {
				s.logger.Error("encode frame", "err", err)
				continue
			}
			if _, err := s.conn.Write(frame); err != nil {
				s.logger.Debug("write failed, closing", "err", err)
				_ = s.Close()
				return nil
			}
		case <-s.done:
			return nil
		}
	}
}

func (s *Session) heartbeat() error {
	ticker := s.clock.NewTicker(s.heartbeatInterval, "session.heartbeat")
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Send(protocol.Message{Code: protocol.CodeState, Data: protocol.Update{}}); err != nil {
				return nil
			}
		case <-s.done:
			return nil
		}
	}
}
