package card

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// DeckSize is the number of cards in a full Landlord deck: 52 standard
// cards plus two jokers.
const DeckSize = 54

// HandSize is the number of cards dealt to each of the three seats before
// the kitty is set aside.
const HandSize = 17

// KittySize is the number of cards left over after dealing, given to the
// landlord once bidding concludes.
const KittySize = DeckSize - 3*HandSize

// Deck is an ordered, drainable sequence of the 54 distinct cards. A fresh
// Deck is created at the start of every round.
type Deck struct {
	cards []Card
}

// NewDeck builds a fresh, unshuffled 54-card deck.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, MustNew(rank, suit))
		}
	}
	cards = append(cards, MustNew(SmallJoker, SuitNone))
	cards = append(cards, MustNew(BigJoker, SuitNone))
	return &Deck{cards: cards}
}

// Shuffle performs a uniform Fisher-Yates shuffle using the supplied
// random source. Callers own the *rand.Rand so a room can seed it once and
// reuse it for every round.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Remaining returns how many cards are still undealt.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Deal distributes n cards to each of `seats` hands round-robin starting at
// seat 0, draining the deck as it goes. It returns one slice per seat.
func (d *Deck) Deal(seats int, n int) ([][]Card, error) {
	need := seats * n
	if need > len(d.cards) {
		return nil, fmt.Errorf("card: deck underflow dealing %d to %d seats (have %d)", n, seats, len(d.cards))
	}
	hands := make([][]Card, seats)
	for i := range hands {
		hands[i] = make([]Card, 0, n)
	}
	for round := 0; round < n; round++ {
		for seat := 0; seat < seats; seat++ {
			hands[seat] = append(hands[seat], d.cards[0])
			d.cards = d.cards[1:]
		}
	}
	return hands, nil
}

// Kitty returns the remaining cards and empties the deck. It must be
// called after Deal leaves exactly KittySize cards.
func (d *Deck) Kitty() []Card {
	remain := d.cards
	d.cards = nil
	return remain
}

// Sort orders a hand ascending by (power, suit), matching the canonical
// comparison order. Callers typically reverse this for display.
func Sort(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return Less(cards[i], cards[j]) })
}

// SortDescending orders a hand descending by power — the order a seat's
// hand is kept in after any mutation (invariant I2).
func SortDescending(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return Less(cards[j], cards[i]) })
}

// Strings renders a slice of cards as their wire tokens.
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// Parse turns one wire token into a Card. A token is either a suit glyph
// followed by a rank ("♥3", "♠10"), or a bare joker word ("小王", "大王").
func Parse(token string) (Card, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Card{}, fmt.Errorf("card: empty token")
	}
	runes := []rune(token)
	first := string(runes[0])
	for _, s := range Suits {
		if s.String() == first {
			return New(Rank(string(runes[1:])), s)
		}
	}
	return New(Rank(token), SuitNone)
}

// ParseAll parses a space-separated list of wire tokens in order.
func ParseAll(tokens []string) ([]Card, error) {
	cards := make([]Card, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		c, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// RemoveAll removes one occurrence of each of toRemove from hand, by Name,
// and reports whether every card in toRemove was present. On success the
// returned hand is left sorted descending (invariant I2).
func RemoveAll(hand []Card, toRemove []Card) ([]Card, error) {
	remaining := make([]Card, len(hand))
	copy(remaining, hand)
	for _, want := range toRemove {
		idx := -1
		for i, have := range remaining {
			if have.Name == want.Name {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("card: hand does not contain %q", want.Name)
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	SortDescending(remaining)
	return remaining, nil
}
