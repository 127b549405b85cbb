package room

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlord/internal/card"
	"landlord/internal/protocol"
)

// newGameTestRoom wires up a Room and three piped seats without going
// through Join (so no run loop starts), registering the seats directly so
// the room's broadcasts reach them, and tests can drive
// dealAndBid/playTricks directly with controlled hands and a mock clock.
func newGameTestRoom(t *testing.T) (*Room, []*Seat, []*testClient, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	r := New("test", zerolog.Nop(), rand.New(rand.NewSource(1)), clock)

	names := []string{"alice", "bob", "carol"}
	seats := make([]*Seat, len(names))
	clients := make([]*testClient, len(names))
	for i, name := range names {
		sess, tc := newPipedSession(t, name, clock)
		seats[i] = &Seat{Name: name, Session: sess}
		clients[i] = tc
	}
	r.seats = seats
	return r, seats, clients, clock
}

// scriptedBidder answers one State=StateBidding prompt per entry in
// responses, skipping every other frame, then drains anything further so
// the room's broadcasts never block on this seat's write pump.
func scriptedBidder(tc *testClient, responses []string) {
	for _, resp := range responses {
		for {
			msg, err := tc.tryNext()
			if err != nil {
				return
			}
			upd, derr := protocol.DecodeUpdate(msg)
			if derr == nil && upd.State != nil && *upd.State == protocol.StateBidding {
				break
			}
		}
		if _, err := tc.conn.Write([]byte(resp)); err != nil {
			return
		}
	}
	for {
		if _, err := tc.tryNext(); err != nil {
			return
		}
	}
}

func TestDealAndBidRedealsWhenAllBidZero(t *testing.T) {
	r, seats, clients, _ := newGameTestRoom(t)

	go scriptedBidder(clients[0], []string{"0", "0"})
	go scriptedBidder(clients[1], []string{"0", "0"})
	go scriptedBidder(clients[2], []string{"0", "3"})

	landlordIdx, roleNames, err := dealAndBid(r, seats)
	require.NoError(t, err)
	assert.Equal(t, 2, landlordIdx)
	assert.Contains(t, roleNames[2], "地主")
	assert.Contains(t, roleNames[0], "农民")
	assert.Contains(t, roleNames[1], "农民")
}

func TestDealAndBidRejectsNonNumericBid(t *testing.T) {
	r, seats, clients, _ := newGameTestRoom(t)

	go scriptedBidder(clients[0], []string{"abc", "1"})
	go scriptedBidder(clients[1], []string{"0"})
	go scriptedBidder(clients[2], []string{"0"})

	landlordIdx, roleNames, err := dealAndBid(r, seats)
	require.NoError(t, err)
	assert.Equal(t, 0, landlordIdx)
	assert.Contains(t, roleNames[0], "地主")
}

func TestPlayTricksDetectsWinAndEndsRound(t *testing.T) {
	r, seats, clients, clock := newGameTestRoom(t)

	seats[0].Hand = []card.Card{card.MustNew("3", card.Spades)}
	seats[1].Hand = []card.Card{card.MustNew("4", card.Spades)}
	seats[2].Hand = []card.Card{card.MustNew("5", card.Spades)}

	roleNames := []string{"alice:地主", "bob:农民", "carol:农民"}

	go drainForever(clients[1].conn)
	go drainForever(clients[2].conn)

	done := make(chan error, 1)
	go func() {
		done <- playTricks(r, seats, 0, roleNames)
	}()

	clients[0].waitForState(t, protocol.StateFree)
	clients[0].send(t, "♠3")

	var sawWin bool
	for !sawWin {
		msg := clients[0].next(t)
		upd, err := protocol.DecodeUpdate(msg)
		require.NoError(t, err)
		if strings.Contains(upd.TopMessage, "胜利") {
			sawWin = true
		}
	}

	clock.Advance(5 * time.Second).MustWait(context.Background())

	end := clients[0].next(t)
	assert.Equal(t, protocol.CodeEnd, end.Code)
	require.NoError(t, <-done)
}

func TestPlayTricksRejectsPassOnFreePlay(t *testing.T) {
	r, seats, clients, _ := newGameTestRoom(t)

	seats[0].Hand = []card.Card{card.MustNew("3", card.Spades)}
	seats[1].Hand = []card.Card{card.MustNew("4", card.Spades)}
	seats[2].Hand = []card.Card{card.MustNew("5", card.Spades)}

	go func() {
		_, _ = clients[0].conn.Write([]byte("不出"))
	}()
	_, err := playFree(r, seats[0], 0)
	var perr *PlayerError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindInput, perr.Kind)
}
