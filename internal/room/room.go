// Package room implements the three-seat game table: connection intake,
// bidding, turn-based play, and the broadcast of authoritative state. One
// Room is one serial actor: only its own run loop goroutine ever mutates
// game state, so no lock is needed beyond the brief one guarding the
// seats slice itself against concurrent Join calls.
package room

import (
	"math/rand"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"landlord/internal/protocol"
	"landlord/internal/session"
)

// errSeatLost unwinds a round immediately when a broadcast or send
// discovers a dead seat mid-round, matching the Leave policy of SPEC_FULL
// §7: any socket error ends the round for the survivors.
type errSeatLost struct{}

func (errSeatLost) Error() string { return "room: a seat's connection was lost" }

// Room owns up to three seats and drives rounds once all three are
// filled. It is created on first Join for a given name and persists for
// the life of the process.
type Room struct {
	Name string

	mu      sync.Mutex
	seats   []*Seat
	running bool

	logger zerolog.Logger
	rng    *rand.Rand
	clock  quartz.Clock
}

// New constructs an empty Room. rng seeds every round's deck shuffle;
// clock drives the post-win pause before end-of-round (SPEC_FULL §5).
func New(name string, logger zerolog.Logger, rng *rand.Rand, clock quartz.Clock) *Room {
	return &Room{
		Name:   name,
		logger: logger.With().Str("room", name).Logger(),
		rng:    rng,
		clock:  clock,
	}
}

// SeatCount reports how many seats are currently filled.
func (r *Room) SeatCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats)
}

// Join attaches a session to the room as a new seat, rejecting the 4th.
// When the room fills to three it starts (or restarts) its round loop.
func (r *Room) Join(sess *session.Session) error {
	r.mu.Lock()
	if len(r.seats) >= 3 {
		r.mu.Unlock()
		return sess.Send(protocol.Message{Code: protocol.CodeInfo, Data: "每桌最多3位玩家，玩家已经满了"})
	}

	seat := &Seat{Name: sess.Name, Session: sess}
	r.seats = append(r.seats, seat)
	full := len(r.seats) == 3
	startLoop := full && !r.running
	if startLoop {
		r.running = true
	}
	names := r.nameListLocked()
	r.mu.Unlock()

	r.broadcastJoin(names)

	if startLoop {
		r.startRunLoop()
	}
	return nil
}

// startRunLoop supervises the room's game-loop goroutine under a fresh
// errgroup so a fatal error is observable instead of silently vanishing
// into a detached goroutine. A new Group is used per fill since a Group
// cannot be reused after Wait returns, and a room can fill/drain/refill
// repeatedly over its lifetime.
func (r *Room) startRunLoop() {
	eg := &errgroup.Group{}
	eg.Go(r.run)
	go func() {
		if err := eg.Wait(); err != nil {
			r.logger.Error().Err(err).Msg("room run loop exited with error")
		}
	}()
}

// broadcastJoin tells every current seat the updated roster and their own
// index, matching the original's per-seat my_index annotation on Join.
func (r *Room) broadcastJoin(names []string) {
	r.mu.Lock()
	seats := make([]*Seat, len(r.seats))
	copy(seats, r.seats)
	r.mu.Unlock()

	for i, seat := range seats {
		idx := i
		_ = seat.send(protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{
				NameList: names,
				MyIndex:  protocol.IntPtr(idx),
				State:    protocol.IntPtr(protocol.StateWaiting),
			},
		})
	}
}

func (r *Room) nameListLocked() []string {
	names := make([]string, len(r.seats))
	for i, s := range r.seats {
		names[i] = s.Name
	}
	return names
}

// run drives rounds back to back as long as the room stays full, matching
// the original Room.while_play: play a round, and if the seat count
// dropped below three, stop until a fresh Join brings it back up. It
// returns a non-nil error only for a genuinely fatal condition; a seat
// disconnecting mid-round is the expected way a round ends and is not
// reported as an error.
func (r *Room) run() error {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	for {
		r.mu.Lock()
		full := len(r.seats) == 3
		r.mu.Unlock()
		if !full {
			return nil
		}

		if err := playRound(r); err != nil {
			if _, ok := err.(errSeatLost); ok {
				return nil
			}
			var perr *PlayerError
			if pe, ok := err.(*PlayerError); ok {
				perr = pe
			}
			if perr != nil && perr.Kind == KindFatal {
				return perr
			}
			return err
		}
	}
}

// broadcast sends msg to every seat, annotated with each seat's own name.
// A send failure removes that seat and ends the round via errSeatLost.
func (r *Room) broadcast(msg protocol.Message) error {
	r.mu.Lock()
	seats := make([]*Seat, len(r.seats))
	copy(seats, r.seats)
	r.mu.Unlock()

	for _, seat := range seats {
		if err := seat.send(msg); err != nil {
			r.removeSeat(seat, allError("【%s】退出房间", seat.Name))
			return errSeatLost{}
		}
	}
	return nil
}

// broadcastExcept is broadcast but skips one seat (the original's
// send_all_message(message, exclude) used after a private send).
func (r *Room) broadcastExcept(msg protocol.Message, except *Seat) error {
	r.mu.Lock()
	seats := make([]*Seat, len(r.seats))
	copy(seats, r.seats)
	r.mu.Unlock()

	for _, seat := range seats {
		if seat == except {
			continue
		}
		if err := seat.send(msg); err != nil {
			r.removeSeat(seat, allError("【%s】退出房间", seat.Name))
			return errSeatLost{}
		}
	}
	return nil
}

// sendTo delivers msg to one seat only; a failure removes it and reports
// errSeatLost the same way broadcast does.
func (r *Room) sendTo(seat *Seat, msg protocol.Message) error {
	if err := seat.send(msg); err != nil {
		r.removeSeat(seat, allError("【%s】退出房间", seat.Name))
		return errSeatLost{}
	}
	return nil
}

// removeSeat drops a seat from the room and tells the survivors, per the
// Leave policy of SPEC_FULL §7. reason is a KindAll PlayerError carrying
// the departure notice every survivor receives (the original's
// Player.send/receive raising its ALL-typed exception on a dead
// connection) — it is never KindInput/KindFatal here, since removeSeat is
// only ever reached from a broadcast/send failure or a dead read.
func (r *Room) removeSeat(gone *Seat, reason *PlayerError) {
	_ = gone.Session.Close()

	r.mu.Lock()
	for i, s := range r.seats {
		if s == gone {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			break
		}
	}
	names := r.nameListLocked()
	survivors := make([]*Seat, len(r.seats))
	copy(survivors, r.seats)
	r.mu.Unlock()

	for i, seat := range survivors {
		idx := i
		_ = seat.send(protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{TopMessage: reason.Message, NameList: names, MyIndex: protocol.IntPtr(idx)},
		})
		_ = seat.send(protocol.Message{Code: protocol.CodeEnd, Data: nil})
	}
}
