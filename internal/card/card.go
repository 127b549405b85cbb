// Package card implements the Landlord deck: ranks, suits, power ordering,
// and the 54-card deck lifecycle (create, shuffle, deal, kitty).
package card

import "fmt"

// Suit is one of the four playing-card suits. Jokers carry SuitNone.
type Suit int

const (
	SuitNone Suit = iota
	Hearts
	Diamonds
	Clubs
	Spades
)

// suitOrder fixes the tie-break order used when two cards share a power:
// ♥ < ◆ < ♣ < ♠.
var suitOrder = map[Suit]int{
	Hearts:   0,
	Diamonds: 1,
	Clubs:    2,
	Spades:   3,
	SuitNone: 4,
}

// String renders the suit glyph used on the wire, matching the original
// protocol's Chinese suit characters.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "◆"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return ""
	}
}

// Rank is a card's face value as printed on the wire: "3".."10", "J", "Q",
// "K", "A", "2", or one of the two joker words.
type Rank string

const (
	SmallJoker Rank = "小王"
	BigJoker   Rank = "大王"
)

// Ranks lists the 13 standard ranks in ascending power order.
var Ranks = []Rank{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}

// Suits lists the four suits in their canonical order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// powers maps every legal rank to its comparison power. 2 outranks every
// standard card; the small joker outranks 2; the big joker outranks both.
var powers = map[Rank]int{
	"3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"J": 11, "Q": 12, "K": 13, "A": 14,
	"2":        20,
	SmallJoker: 99,
	BigJoker:   100,
}

// Power returns the comparison power for a rank, or (0, false) if the rank
// is not one of the 15 legal ranks.
func Power(r Rank) (int, bool) {
	p, ok := powers[r]
	return p, ok
}

// Card is an immutable playing card value. Equality and hashing are by
// Name; ordering is by (Power, Suit).
type Card struct {
	Rank  Rank
	Suit  Suit
	Power int
	Name  string
}

// New constructs a Card, validating the rank against the 15 legal ranks.
// Jokers must be constructed with SuitNone.
func New(rank Rank, suit Suit) (Card, error) {
	power, ok := powers[rank]
	if !ok {
		return Card{}, fmt.Errorf("card: invalid rank %q", rank)
	}
	if (rank == SmallJoker || rank == BigJoker) && suit != SuitNone {
		return Card{}, fmt.Errorf("card: joker %q may not carry a suit", rank)
	}
	name := string(rank)
	if suit != SuitNone {
		name = suit.String() + string(rank)
	}
	return Card{Rank: rank, Suit: suit, Power: power, Name: name}, nil
}

// MustNew is New but panics on error; used for the fixed 54-card grid where
// every rank/suit pairing is known to be legal.
func MustNew(rank Rank, suit Suit) Card {
	c, err := New(rank, suit)
	if err != nil {
		panic(err)
	}
	return c
}

// IsJoker reports whether the card is either joker.
func (c Card) IsJoker() bool {
	return c.Rank == SmallJoker || c.Rank == BigJoker
}

// String returns the wire representation of the card: suit glyph + rank,
// or just the joker word for jokers.
func (c Card) String() string {
	return c.Name
}

// Less orders cards ascending by (power, suit) — the same ordering the
// original's Card.__lt__ operator overload implements.
func Less(a, b Card) bool {
	if a.Power != b.Power {
		return a.Power < b.Power
	}
	return suitOrder[a.Suit] < suitOrder[b.Suit]
}
