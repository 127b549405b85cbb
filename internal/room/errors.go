package room

import "fmt"

// Kind categorizes a PlayerError for the propagation policy of the room's
// command loop: whether it's reported to one seat, broadcast, or fatal to
// the round.
type Kind int

const (
	// KindInput is a rejected command: illegal token, invalid shape,
	// doesn't beat the last play, pass during free play, bad bid.
	// Reported to the offending seat only; that seat stays on turn.
	KindInput Kind = iota
	// KindAll is an informational message broadcast to every seat.
	KindAll
	// KindFatal is a programmer-error condition (deck underflow, an
	// unreachable classifier branch). Logged, and ends the round.
	KindFatal
)

// PlayerError is the tagged error type the game loop uses to decide how
// to propagate a failure, mirroring the original server's MyException.
type PlayerError struct {
	Kind    Kind
	Message string
}

func (e *PlayerError) Error() string {
	return e.Message
}

// inputError rejects a single seat's command without ending the round.
func inputError(format string, args ...any) *PlayerError {
	return &PlayerError{Kind: KindInput, Message: fmt.Sprintf(format, args...)}
}

// fatalError signals a condition the room loop cannot recover from.
func fatalError(format string, args ...any) *PlayerError {
	return &PlayerError{Kind: KindFatal, Message: fmt.Sprintf(format, args...)}
}

// allError carries a message meant for every remaining seat, not just the
// one that triggered it — e.g. the "left the room" notice raised when a
// seat's connection drops, mirroring the original's Player.send/receive
// catching ConnectionError and raising its ALL-typed exception.
func allError(format string, args ...any) *PlayerError {
	return &PlayerError{Kind: KindAll, Message: fmt.Sprintf(format, args...)}
}
