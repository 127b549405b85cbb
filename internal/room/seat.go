package room

import (
	"landlord/internal/card"
	"landlord/internal/protocol"
	"landlord/internal/session"
)

// Seat is one of the three logical positions at a Room. It is created on
// Join and destroyed on Leave.
type Seat struct {
	Name    string
	Session *session.Session
	Hand    []card.Card
}

// send delivers a frame to this seat only, tagged with its own name.
func (s *Seat) send(msg protocol.Message) error {
	msg.Player = s.Name
	return s.Session.Send(msg)
}
